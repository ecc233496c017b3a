package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"civicapp/internal/config"
	"civicapp/internal/middleware"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	contextutils "civicapp/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func newTestLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			SessionSecret: "test-secret",
			CORSOrigins:   []string{"http://localhost:3000"},
			Debug:         true,
		},
	}
}

// newTestRouter builds a bare engine with session support for handler tests.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("test-session", store))
	return router
}

// loginAs registers a login route and returns a session cookie for the identity.
func loginAs(t *testing.T, router *gin.Engine, userID int, role models.Role) *http.Cookie {
	t.Helper()

	router.POST("/test-login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(middleware.UserIDKey, userID)
		session.Set(middleware.UserRoleKey, string(role))
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("POST", "/test-login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie from login")
	}
	return cookies[0]
}

func jsonRequest(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// fakeIssueService implements the issue service interface with overridable funcs.
type fakeIssueService struct {
	createFn       func(ctx context.Context, citizenID int, req *models.CreateIssueRequest) (*models.Issue, error)
	getByIDFn      func(ctx context.Context, id int) (*models.Issue, error)
	paginatedFn    func(ctx context.Context, page, pageSize int, status, category, search string) ([]models.Issue, int, error)
	byCitizenFn    func(ctx context.Context, citizenID int) ([]models.Issue, error)
	byPoliticianFn func(ctx context.Context, politicianID int) ([]models.Issue, error)
	assignFn       func(ctx context.Context, issueID, politicianID int) (*models.Issue, error)
	respondFn      func(ctx context.Context, issueID, politicianID int, response string) (*models.Issue, error)
	resolveFn      func(ctx context.Context, issueID, politicianID int, notes string) (*models.Issue, error)
	statusFn       func(ctx context.Context, issueID int, status models.IssueStatus) (*models.Issue, error)
	deleteFn       func(ctx context.Context, issueID int) error
	statsFn        func(ctx context.Context) (*models.IssueStats, error)
}

func (f *fakeIssueService) CreateIssue(ctx context.Context, citizenID int, req *models.CreateIssueRequest) (*models.Issue, error) {
	return f.createFn(ctx, citizenID, req)
}

func (f *fakeIssueService) GetIssueByID(ctx context.Context, id int) (*models.Issue, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeIssueService) GetAllIssues(_ context.Context) ([]models.Issue, error) {
	return nil, contextutils.ErrInternalError
}

func (f *fakeIssueService) GetIssuesPaginated(ctx context.Context, page, pageSize int, status, category, search string) ([]models.Issue, int, error) {
	return f.paginatedFn(ctx, page, pageSize, status, category, search)
}

func (f *fakeIssueService) GetIssuesByCitizen(ctx context.Context, citizenID int) ([]models.Issue, error) {
	return f.byCitizenFn(ctx, citizenID)
}

func (f *fakeIssueService) GetIssuesByAssignedPolitician(ctx context.Context, politicianID int) ([]models.Issue, error) {
	return f.byPoliticianFn(ctx, politicianID)
}

func (f *fakeIssueService) GetIssuesByStatus(_ context.Context, _ models.IssueStatus) ([]models.Issue, error) {
	return nil, contextutils.ErrInternalError
}

func (f *fakeIssueService) AssignIssue(ctx context.Context, issueID, politicianID int) (*models.Issue, error) {
	return f.assignFn(ctx, issueID, politicianID)
}

func (f *fakeIssueService) RespondToIssue(ctx context.Context, issueID, politicianID int, response string) (*models.Issue, error) {
	return f.respondFn(ctx, issueID, politicianID, response)
}

func (f *fakeIssueService) ResolveIssue(ctx context.Context, issueID, politicianID int, notes string) (*models.Issue, error) {
	return f.resolveFn(ctx, issueID, politicianID, notes)
}

func (f *fakeIssueService) UpdateIssueStatus(ctx context.Context, issueID int, status models.IssueStatus) (*models.Issue, error) {
	return f.statusFn(ctx, issueID, status)
}

func (f *fakeIssueService) DeleteIssue(ctx context.Context, issueID int) error {
	return f.deleteFn(ctx, issueID)
}

func (f *fakeIssueService) CountIssuesByCategory(_ context.Context) ([]models.CategoryCount, error) {
	return []models.CategoryCount{}, nil
}

func (f *fakeIssueService) GetIssueStats(ctx context.Context) (*models.IssueStats, error) {
	return f.statsFn(ctx)
}

// fakeUserService implements the user service interface with overridable funcs.
type fakeUserService struct {
	createFn       func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	getByIDFn      func(ctx context.Context, id int) (*models.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*models.User, error)
	updateRoleFn   func(ctx context.Context, userID int, role models.Role) error
	setEnabledFn   func(ctx context.Context, userID int, enabled bool) error
	deleteFn       func(ctx context.Context, userID int) error
	allFn          func(ctx context.Context) ([]models.User, error)
	byRoleFn       func(ctx context.Context, role models.Role) ([]models.User, error)
}

func (f *fakeUserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	return f.createFn(ctx, req)
}

func (f *fakeUserService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeUserService) GetUserByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, contextutils.ErrRecordNotFound
}

func (f *fakeUserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return f.allFn(ctx)
}

func (f *fakeUserService) GetUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return f.byRoleFn(ctx, role)
}

func (f *fakeUserService) GetPoliticiansByConstituency(_ context.Context, _ string) ([]models.User, error) {
	return []models.User{}, nil
}

func (f *fakeUserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	return f.authenticateFn(ctx, email, password)
}

func (f *fakeUserService) UpdateUserRole(ctx context.Context, userID int, role models.Role) error {
	return f.updateRoleFn(ctx, userID, role)
}

func (f *fakeUserService) SetUserEnabled(ctx context.Context, userID int, enabled bool) error {
	return f.setEnabledFn(ctx, userID, enabled)
}

func (f *fakeUserService) DeleteUser(ctx context.Context, userID int) error {
	return f.deleteFn(ctx, userID)
}

func (f *fakeUserService) EnsureAdminUserExists(_ context.Context, _, _ string) error {
	return nil
}

// fakeCommentService implements the comment service interface with overridable funcs.
type fakeCommentService struct {
	addFn     func(ctx context.Context, issueID, userID int, content string) (*models.Comment, error)
	byIssueFn func(ctx context.Context, issueID int) ([]models.Comment, error)
	flagFn    func(ctx context.Context, commentID int, reason string) (*models.Comment, error)
	unflagFn  func(ctx context.Context, commentID int) (*models.Comment, error)
	flaggedFn func(ctx context.Context) ([]models.Comment, error)
	deleteFn  func(ctx context.Context, commentID, requesterID int, requesterRole models.Role) error
}

func (f *fakeCommentService) AddComment(ctx context.Context, issueID, userID int, content string) (*models.Comment, error) {
	return f.addFn(ctx, issueID, userID, content)
}

func (f *fakeCommentService) GetCommentByID(_ context.Context, _ int) (*models.Comment, error) {
	return nil, contextutils.ErrRecordNotFound
}

func (f *fakeCommentService) GetCommentsByIssue(ctx context.Context, issueID int) ([]models.Comment, error) {
	return f.byIssueFn(ctx, issueID)
}

func (f *fakeCommentService) FlagComment(ctx context.Context, commentID int, reason string) (*models.Comment, error) {
	return f.flagFn(ctx, commentID, reason)
}

func (f *fakeCommentService) UnflagComment(ctx context.Context, commentID int) (*models.Comment, error) {
	return f.unflagFn(ctx, commentID)
}

func (f *fakeCommentService) GetFlaggedComments(ctx context.Context) ([]models.Comment, error) {
	return f.flaggedFn(ctx)
}

func (f *fakeCommentService) DeleteComment(ctx context.Context, commentID, requesterID int, requesterRole models.Role) error {
	return f.deleteFn(ctx, commentID, requesterID, requesterRole)
}

// fakeFeedbackService implements the feedback service interface with overridable funcs.
type fakeFeedbackService struct {
	submitFn       func(ctx context.Context, citizenID int, req *models.CreateFeedbackRequest) (*models.Feedback, error)
	forPoliticianFn func(ctx context.Context, politicianID int) ([]models.Feedback, error)
	byCitizenFn    func(ctx context.Context, citizenID int) ([]models.Feedback, error)
	averageFn      func(ctx context.Context, politicianID int) (float64, error)
	statsFn        func(ctx context.Context, politicianID int) (*models.PoliticianStats, error)
	deleteFn       func(ctx context.Context, id int) error
}

func (f *fakeFeedbackService) SubmitFeedback(ctx context.Context, citizenID int, req *models.CreateFeedbackRequest) (*models.Feedback, error) {
	return f.submitFn(ctx, citizenID, req)
}

func (f *fakeFeedbackService) GetFeedbackByID(_ context.Context, _ int) (*models.Feedback, error) {
	return nil, contextutils.ErrRecordNotFound
}

func (f *fakeFeedbackService) GetFeedbackForPolitician(ctx context.Context, politicianID int) ([]models.Feedback, error) {
	return f.forPoliticianFn(ctx, politicianID)
}

func (f *fakeFeedbackService) GetFeedbackByCitizen(ctx context.Context, citizenID int) ([]models.Feedback, error) {
	return f.byCitizenFn(ctx, citizenID)
}

func (f *fakeFeedbackService) GetAverageRating(ctx context.Context, politicianID int) (float64, error) {
	return f.averageFn(ctx, politicianID)
}

func (f *fakeFeedbackService) GetPoliticianStats(ctx context.Context, politicianID int) (*models.PoliticianStats, error) {
	return f.statsFn(ctx, politicianID)
}

func (f *fakeFeedbackService) DeleteFeedback(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

// fakeUpdateService implements the update service interface with overridable funcs.
type fakeUpdateService struct {
	createFn       func(ctx context.Context, politicianID int, req *models.CreateUpdateRequest) (*models.Update, error)
	viewFn         func(ctx context.Context, id int) (*models.Update, error)
	publishedFn    func(ctx context.Context) ([]models.Update, error)
	byPoliticianFn func(ctx context.Context, politicianID int) ([]models.Update, error)
	editFn         func(ctx context.Context, updateID, politicianID int, req *models.CreateUpdateRequest) (*models.Update, error)
	deleteFn       func(ctx context.Context, updateID, requesterID int, requesterRole models.Role) error
}

func (f *fakeUpdateService) CreateUpdate(ctx context.Context, politicianID int, req *models.CreateUpdateRequest) (*models.Update, error) {
	return f.createFn(ctx, politicianID, req)
}

func (f *fakeUpdateService) ViewUpdate(ctx context.Context, id int) (*models.Update, error) {
	return f.viewFn(ctx, id)
}

func (f *fakeUpdateService) GetUpdateByID(_ context.Context, _ int) (*models.Update, error) {
	return nil, contextutils.ErrRecordNotFound
}

func (f *fakeUpdateService) GetPublishedUpdates(ctx context.Context) ([]models.Update, error) {
	return f.publishedFn(ctx)
}

func (f *fakeUpdateService) GetUpdatesByPolitician(ctx context.Context, politicianID int) ([]models.Update, error) {
	return f.byPoliticianFn(ctx, politicianID)
}

func (f *fakeUpdateService) EditUpdate(ctx context.Context, updateID, politicianID int, req *models.CreateUpdateRequest) (*models.Update, error) {
	return f.editFn(ctx, updateID, politicianID, req)
}

func (f *fakeUpdateService) DeleteUpdate(ctx context.Context, updateID, requesterID int, requesterRole models.Role) error {
	return f.deleteFn(ctx, updateID, requesterID, requesterRole)
}

// fakeEmailService records welcome emails for auth handler tests.
type fakeEmailService struct {
	enabled  bool
	welcomes []int
}

func (f *fakeEmailService) SendIssueAssignmentNotification(_ context.Context, _ *models.User, _ *models.Issue) error {
	return nil
}

func (f *fakeEmailService) SendIssueResponseNotification(_ context.Context, _ *models.User, _ *models.Issue) error {
	return nil
}

func (f *fakeEmailService) SendIssueResolvedNotification(_ context.Context, _ *models.User, _ *models.Issue) error {
	return nil
}

func (f *fakeEmailService) SendWelcomeEmail(_ context.Context, user *models.User) error {
	f.welcomes = append(f.welcomes, user.ID)
	return nil
}

func (f *fakeEmailService) SendEmail(_ context.Context, _, _, _ string) error {
	return nil
}

func (f *fakeEmailService) IsEnabled() bool {
	return f.enabled
}
