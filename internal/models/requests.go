package models

// CreateIssueRequest is the payload for reporting a new issue
type CreateIssueRequest struct {
	Title                string `json:"title" binding:"required,min=5,max=200"`
	Description          string `json:"description" binding:"required,min=20"`
	Category             string `json:"category" binding:"required"`
	Location             string `json:"location"`
	AssignedPoliticianID *int   `json:"assigned_politician_id"`
}

// AssignIssueRequest is the payload for routing an issue to a politician
type AssignIssueRequest struct {
	PoliticianID int `json:"politician_id" binding:"required"`
}

// RespondToIssueRequest is the payload for an assigned politician's response
type RespondToIssueRequest struct {
	Response string `json:"response" binding:"required"`
}

// ResolveIssueRequest is the payload for recording a resolution
type ResolveIssueRequest struct {
	ResolutionNotes string `json:"resolution_notes" binding:"required"`
}

// UpdateIssueStatusRequest is the payload for the administrative status override
type UpdateIssueStatusRequest struct {
	Status IssueStatus `json:"status" binding:"required"`
}

// CreateFeedbackRequest is the payload for rating a politician
type CreateFeedbackRequest struct {
	PoliticianID int    `json:"politician_id" binding:"required"`
	Rating       int    `json:"rating" binding:"required,min=1,max=5"`
	Comment      string `json:"comment" binding:"omitempty,max=1000"`
	Category     string `json:"category"`
}

// CreateCommentRequest is the payload for adding a discussion entry
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// FlagCommentRequest is the payload for flagging a comment for moderation
type FlagCommentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateUpdateRequest is the payload for publishing or editing a politician update
type CreateUpdateRequest struct {
	Title     string `json:"title" binding:"required,min=5,max=200"`
	Content   string `json:"content" binding:"required,min=20"`
	Category  string `json:"category"`
	ImageURL  string `json:"image_url"`
	Published *bool  `json:"published"`
}

// LoginRequest is the payload for session login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the payload for admin user creation
type CreateUserRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Phone        string `json:"phone"`
	Constituency string `json:"constituency"`
	Role         Role   `json:"role"`
}

// UpdateUserRoleRequest is the payload for changing a user's role
type UpdateUserRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}
