// Package models defines data structures used throughout the civic issue platform.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Role represents a user role in the system
type Role string

// Roles supported by the system
const (
	// RoleAdmin can manage users, delete issues and feedback, and override issue status
	RoleAdmin Role = "ADMIN"
	// RoleCitizen reports issues and submits feedback on politicians
	RoleCitizen Role = "CITIZEN"
	// RolePolitician responds to and resolves issues assigned to them
	RolePolitician Role = "POLITICIAN"
	// RoleModerator polices discussion threads and can reroute issues
	RoleModerator Role = "MODERATOR"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCitizen, RolePolitician, RoleModerator:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID           int            `json:"id" yaml:"id"`
	FullName     string         `json:"full_name" yaml:"full_name"`
	Email        string         `json:"email" yaml:"email"`
	PasswordHash sql.NullString `json:"-" yaml:"-"` // Omit from JSON responses
	Phone        sql.NullString `json:"phone" yaml:"phone"`
	Constituency sql.NullString `json:"constituency" yaml:"constituency"`
	ProfileImage sql.NullString `json:"profile_image" yaml:"profile_image"`
	Role         Role           `json:"role" yaml:"role"`
	Enabled      bool           `json:"enabled" yaml:"enabled"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" yaml:"updated_at"`
}

// MarshalJSON customizes JSON marshaling for User to handle sql.NullString properly
func (u User) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID           int       `json:"id"`
		FullName     string    `json:"full_name"`
		Email        string    `json:"email"`
		Phone        *string   `json:"phone"`
		Constituency *string   `json:"constituency"`
		ProfileImage *string   `json:"profile_image"`
		Role         Role      `json:"role"`
		Enabled      bool      `json:"enabled"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		Phone:        nullStringToPointer(u.Phone),
		Constituency: nullStringToPointer(u.Constituency),
		ProfileImage: nullStringToPointer(u.ProfileImage),
		Role:         u.Role,
		Enabled:      u.Enabled,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
}

// Helper functions for converting sql.Null types to pointers
func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func nullTimeToPointer(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

func nullInt64ToPointer(ni sql.NullInt64) *int64 {
	if ni.Valid {
		return &ni.Int64
	}
	return nil
}

// IssueStatus represents the lifecycle state of an issue
type IssueStatus string

const (
	// IssueStatusOpen is the initial state of a newly reported issue
	IssueStatusOpen IssueStatus = "OPEN"
	// IssueStatusInProgress means the issue is assigned and being worked
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	// IssueStatusResolved means the assigned politician recorded a resolution
	IssueStatusResolved IssueStatus = "RESOLVED"
	// IssueStatusClosed means the issue is administratively closed
	IssueStatusClosed IssueStatus = "CLOSED"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

// Issue represents a citizen-reported civic problem tracked through a lifecycle
type Issue struct {
	ID                     int            `json:"id" yaml:"id"`
	Title                  string         `json:"title" yaml:"title"`
	Description            string         `json:"description" yaml:"description"`
	Category               string         `json:"category" yaml:"category"`
	Location               sql.NullString `json:"location" yaml:"location"`
	Status                 IssueStatus    `json:"status" yaml:"status"`
	CitizenID              int            `json:"citizen_id" yaml:"citizen_id"`
	AssignedPoliticianID   sql.NullInt64  `json:"assigned_politician_id" yaml:"assigned_politician_id"`
	Response               sql.NullString `json:"response" yaml:"response"`
	ResolutionNotes        sql.NullString `json:"resolution_notes" yaml:"resolution_notes"`
	CreatedAt              time.Time      `json:"created_at" yaml:"created_at"`
	ResolvedAt             sql.NullTime   `json:"resolved_at" yaml:"resolved_at"`
	CitizenName            string         `json:"citizen_name,omitempty" yaml:"citizen_name,omitempty"`
	AssignedPoliticianName sql.NullString `json:"assigned_politician_name,omitempty" yaml:"assigned_politician_name,omitempty"`
	CommentCount           int            `json:"comment_count" yaml:"comment_count"`
}

// MarshalJSON customizes JSON marshaling for Issue to handle sql.Null types properly
func (i Issue) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID                     int         `json:"id"`
		Title                  string      `json:"title"`
		Description            string      `json:"description"`
		Category               string      `json:"category"`
		Location               *string     `json:"location"`
		Status                 IssueStatus `json:"status"`
		CitizenID              int         `json:"citizen_id"`
		AssignedPoliticianID   *int64      `json:"assigned_politician_id"`
		Response               *string     `json:"response"`
		ResolutionNotes        *string     `json:"resolution_notes"`
		CreatedAt              time.Time   `json:"created_at"`
		ResolvedAt             *time.Time  `json:"resolved_at"`
		CitizenName            string      `json:"citizen_name,omitempty"`
		AssignedPoliticianName *string     `json:"assigned_politician_name,omitempty"`
		CommentCount           int         `json:"comment_count"`
	}{
		ID:                     i.ID,
		Title:                  i.Title,
		Description:            i.Description,
		Category:               i.Category,
		Location:               nullStringToPointer(i.Location),
		Status:                 i.Status,
		CitizenID:              i.CitizenID,
		AssignedPoliticianID:   nullInt64ToPointer(i.AssignedPoliticianID),
		Response:               nullStringToPointer(i.Response),
		ResolutionNotes:        nullStringToPointer(i.ResolutionNotes),
		CreatedAt:              i.CreatedAt,
		ResolvedAt:             nullTimeToPointer(i.ResolvedAt),
		CitizenName:            i.CitizenName,
		AssignedPoliticianName: nullStringToPointer(i.AssignedPoliticianName),
		CommentCount:           i.CommentCount,
	})
}

// Feedback represents a citizen's rating of a politician
type Feedback struct {
	ID             int            `json:"id" yaml:"id"`
	Rating         int            `json:"rating" yaml:"rating"`
	Comment        sql.NullString `json:"comment" yaml:"comment"`
	Category       sql.NullString `json:"category" yaml:"category"`
	CitizenID      int            `json:"citizen_id" yaml:"citizen_id"`
	PoliticianID   int            `json:"politician_id" yaml:"politician_id"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
	CitizenName    string         `json:"citizen_name,omitempty" yaml:"citizen_name,omitempty"`
	PoliticianName string         `json:"politician_name,omitempty" yaml:"politician_name,omitempty"`
}

// MarshalJSON customizes JSON marshaling for Feedback to handle sql.NullString properly
func (f Feedback) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID             int       `json:"id"`
		Rating         int       `json:"rating"`
		Comment        *string   `json:"comment"`
		Category       *string   `json:"category"`
		CitizenID      int       `json:"citizen_id"`
		PoliticianID   int       `json:"politician_id"`
		CreatedAt      time.Time `json:"created_at"`
		CitizenName    string    `json:"citizen_name,omitempty"`
		PoliticianName string    `json:"politician_name,omitempty"`
	}{
		ID:             f.ID,
		Rating:         f.Rating,
		Comment:        nullStringToPointer(f.Comment),
		Category:       nullStringToPointer(f.Category),
		CitizenID:      f.CitizenID,
		PoliticianID:   f.PoliticianID,
		CreatedAt:      f.CreatedAt,
		CitizenName:    f.CitizenName,
		PoliticianName: f.PoliticianName,
	})
}

// PoliticianStats aggregates feedback for a single politician
type PoliticianStats struct {
	AverageRating float64 `json:"averageRating"`
	TotalFeedback int     `json:"totalFeedback"`
}

// Comment represents a discussion entry attached to an issue
type Comment struct {
	ID         int            `json:"id" yaml:"id"`
	Content    string         `json:"content" yaml:"content"`
	IssueID    int            `json:"issue_id" yaml:"issue_id"`
	UserID     int            `json:"user_id" yaml:"user_id"`
	Flagged    bool           `json:"flagged" yaml:"flagged"`
	FlagReason sql.NullString `json:"flag_reason" yaml:"flag_reason"`
	CreatedAt  time.Time      `json:"created_at" yaml:"created_at"`
	UserName   string         `json:"user_name,omitempty" yaml:"user_name,omitempty"`
	UserRole   Role           `json:"user_role,omitempty" yaml:"user_role,omitempty"`
}

// MarshalJSON customizes JSON marshaling for Comment to handle sql.NullString properly
func (c Comment) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID         int       `json:"id"`
		Content    string    `json:"content"`
		IssueID    int       `json:"issue_id"`
		UserID     int       `json:"user_id"`
		Flagged    bool      `json:"flagged"`
		FlagReason *string   `json:"flag_reason"`
		CreatedAt  time.Time `json:"created_at"`
		UserName   string    `json:"user_name,omitempty"`
		UserRole   Role      `json:"user_role,omitempty"`
	}{
		ID:         c.ID,
		Content:    c.Content,
		IssueID:    c.IssueID,
		UserID:     c.UserID,
		Flagged:    c.Flagged,
		FlagReason: nullStringToPointer(c.FlagReason),
		CreatedAt:  c.CreatedAt,
		UserName:   c.UserName,
		UserRole:   c.UserRole,
	})
}

// Update represents a news post published by a politician
type Update struct {
	ID             int            `json:"id" yaml:"id"`
	Title          string         `json:"title" yaml:"title"`
	Content        string         `json:"content" yaml:"content"`
	Category       sql.NullString `json:"category" yaml:"category"`
	ImageURL       sql.NullString `json:"image_url" yaml:"image_url"`
	Published      bool           `json:"published" yaml:"published"`
	ViewCount      int            `json:"view_count" yaml:"view_count"`
	PoliticianID   int            `json:"politician_id" yaml:"politician_id"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" yaml:"updated_at"`
	PoliticianName string         `json:"politician_name,omitempty" yaml:"politician_name,omitempty"`
}

// MarshalJSON customizes JSON marshaling for Update to handle sql.NullString properly
func (u Update) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID             int       `json:"id"`
		Title          string    `json:"title"`
		Content        string    `json:"content"`
		Category       *string   `json:"category"`
		ImageURL       *string   `json:"image_url"`
		Published      bool      `json:"published"`
		ViewCount      int       `json:"view_count"`
		PoliticianID   int       `json:"politician_id"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
		PoliticianName string    `json:"politician_name,omitempty"`
	}{
		ID:             u.ID,
		Title:          u.Title,
		Content:        u.Content,
		Category:       nullStringToPointer(u.Category),
		ImageURL:       nullStringToPointer(u.ImageURL),
		Published:      u.Published,
		ViewCount:      u.ViewCount,
		PoliticianID:   u.PoliticianID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
		PoliticianName: u.PoliticianName,
	})
}

// CategoryCount is a per-category issue tally
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// IssueStats summarizes issue volume and resolution speed for dashboards
type IssueStats struct {
	CountByStatus          map[IssueStatus]int `json:"count_by_status"`
	CountByCategory        []CategoryCount     `json:"count_by_category"`
	AverageResolutionHours float64             `json:"average_resolution_hours"`
}
