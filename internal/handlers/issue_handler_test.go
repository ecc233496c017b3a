package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"civicapp/internal/middleware"
	"civicapp/internal/models"
	contextutils "civicapp/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssueTestRouter(svc *fakeIssueService) *gin.Engine {
	router := newTestRouter()
	h := NewIssueHandler(svc, newTestConfig(), newTestLogger())

	issues := router.Group("/v1/issues")
	{
		issues.GET("", h.ListIssues)
		issues.GET("/stats", h.GetIssueStats)
		issues.GET("/mine", middleware.RequireAuth(), h.ListMyIssues)
		issues.GET("/:id", h.GetIssue)
		issues.POST("", middleware.RequireRole(models.RoleCitizen), h.CreateIssue)
		issues.POST("/:id/assign", middleware.RequireAnyRole(models.RoleAdmin, models.RoleModerator), h.AssignIssue)
		issues.POST("/:id/respond", middleware.RequireRole(models.RolePolitician), h.RespondToIssue)
		issues.POST("/:id/resolve", middleware.RequireRole(models.RolePolitician), h.ResolveIssue)
		issues.PUT("/:id/status", middleware.RequireAnyRole(models.RoleAdmin, models.RoleModerator), h.UpdateIssueStatus)
		issues.DELETE("/:id", middleware.RequireAdmin(), h.DeleteIssue)
	}
	return router
}

func TestCreateIssue(t *testing.T) {
	var gotCitizenID int
	svc := &fakeIssueService{
		createFn: func(_ context.Context, citizenID int, req *models.CreateIssueRequest) (*models.Issue, error) {
			gotCitizenID = citizenID
			return &models.Issue{
				ID:          1,
				Title:       req.Title,
				Description: req.Description,
				Category:    req.Category,
				Status:      models.IssueStatusOpen,
				CitizenID:   citizenID,
			}, nil
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 42, models.RoleCitizen)

	body := models.CreateIssueRequest{
		Title:       "Pothole on Main Street",
		Description: "There is a large pothole near the intersection that damages vehicles.",
		Category:    "ROADS",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/issues", body, cookie))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 42, gotCitizenID)

	var issue map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Equal(t, "Pothole on Main Street", issue["title"])
	assert.Equal(t, "OPEN", issue["status"])
}

func TestCreateIssue_RequiresCitizenRole(t *testing.T) {
	router := newIssueTestRouter(&fakeIssueService{})
	cookie := loginAs(t, router, 9, models.RolePolitician)

	body := models.CreateIssueRequest{
		Title:       "Pothole on Main Street",
		Description: "There is a large pothole near the intersection that damages vehicles.",
		Category:    "ROADS",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/issues", body, cookie))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateIssue_InvalidBody(t *testing.T) {
	router := newIssueTestRouter(&fakeIssueService{})
	cookie := loginAs(t, router, 42, models.RoleCitizen)

	// Title below the minimum length fails binding validation
	body := map[string]string{"title": "Hi", "description": "short", "category": "ROADS"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/issues", body, cookie))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetIssue_NotFound(t *testing.T) {
	svc := &fakeIssueService{
		getByIDFn: func(_ context.Context, id int) (*models.Issue, error) {
			return nil, contextutils.NewNotFoundError("issue", id)
		},
	}
	router := newIssueTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/issues/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetIssue_InvalidID(t *testing.T) {
	router := newIssueTestRouter(&fakeIssueService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/issues/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListIssues_Paginated(t *testing.T) {
	var gotPage, gotSize int
	var gotStatus string
	svc := &fakeIssueService{
		paginatedFn: func(_ context.Context, page, pageSize int, status, _, _ string) ([]models.Issue, int, error) {
			gotPage, gotSize, gotStatus = page, pageSize, status
			return []models.Issue{{ID: 1, Title: "Pothole on Main Street", Status: models.IssueStatusOpen}}, 1, nil
		},
	}
	router := newIssueTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/issues?page=2&page_size=10&status=OPEN", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 10, gotSize)
	assert.Equal(t, "OPEN", gotStatus)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["issues"], 1)
	pagination := resp["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
}

func TestListIssues_UnknownStatus(t *testing.T) {
	router := newIssueTestRouter(&fakeIssueService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/issues?status=BOGUS", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMyIssues_RequiresAuth(t *testing.T) {
	router := newIssueTestRouter(&fakeIssueService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/issues/mine", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssignIssue(t *testing.T) {
	var gotIssueID, gotPoliticianID int
	svc := &fakeIssueService{
		assignFn: func(_ context.Context, issueID, politicianID int) (*models.Issue, error) {
			gotIssueID, gotPoliticianID = issueID, politicianID
			return &models.Issue{ID: issueID, Status: models.IssueStatusInProgress}, nil
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 1, models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/issues/5/assign", models.AssignIssueRequest{PoliticianID: 7}, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotIssueID)
	assert.Equal(t, 7, gotPoliticianID)
}

func TestRespondToIssue_UsesSessionIdentity(t *testing.T) {
	var gotPoliticianID int
	svc := &fakeIssueService{
		respondFn: func(_ context.Context, issueID, politicianID int, response string) (*models.Issue, error) {
			gotPoliticianID = politicianID
			return &models.Issue{ID: issueID, Status: models.IssueStatusInProgress}, nil
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 7, models.RolePolitician)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/issues/5/respond", models.RespondToIssueRequest{Response: "We are on it"}, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, gotPoliticianID)
}

func TestRespondToIssue_NotAssignee(t *testing.T) {
	svc := &fakeIssueService{
		respondFn: func(_ context.Context, _, _ int, _ string) (*models.Issue, error) {
			return nil, contextutils.NewUnauthorizedError("only the assigned politician may respond")
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 8, models.RolePolitician)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/issues/5/respond", models.RespondToIssueRequest{Response: "We are on it"}, cookie))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveIssue(t *testing.T) {
	var gotNotes string
	svc := &fakeIssueService{
		resolveFn: func(_ context.Context, issueID, _ int, notes string) (*models.Issue, error) {
			gotNotes = notes
			return &models.Issue{ID: issueID, Status: models.IssueStatusResolved}, nil
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 7, models.RolePolitician)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/issues/5/resolve", models.ResolveIssueRequest{ResolutionNotes: "Fixed the pothole"}, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fixed the pothole", gotNotes)
}

func TestUpdateIssueStatus_AdminOrModeratorOnly(t *testing.T) {
	router := newIssueTestRouter(&fakeIssueService{})
	cookie := loginAs(t, router, 42, models.RoleCitizen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "PUT", "/v1/issues/5/status", models.UpdateIssueStatusRequest{Status: models.IssueStatusClosed}, cookie))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateIssueStatus_Moderator(t *testing.T) {
	var gotStatus models.IssueStatus
	svc := &fakeIssueService{
		statusFn: func(_ context.Context, issueID int, status models.IssueStatus) (*models.Issue, error) {
			gotStatus = status
			return &models.Issue{ID: issueID, Status: status}, nil
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 3, models.RoleModerator)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "PUT", "/v1/issues/7/status", models.UpdateIssueStatusRequest{Status: models.IssueStatusInProgress}, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.IssueStatusInProgress, gotStatus)
}

func TestUpdateIssueStatus(t *testing.T) {
	var gotStatus models.IssueStatus
	svc := &fakeIssueService{
		statusFn: func(_ context.Context, issueID int, status models.IssueStatus) (*models.Issue, error) {
			gotStatus = status
			return &models.Issue{ID: issueID, Status: status}, nil
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 1, models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "PUT", "/v1/issues/5/status", models.UpdateIssueStatusRequest{Status: models.IssueStatusClosed}, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.IssueStatusClosed, gotStatus)
}

func TestDeleteIssue(t *testing.T) {
	var deleted int
	svc := &fakeIssueService{
		deleteFn: func(_ context.Context, issueID int) error {
			deleted = issueID
			return nil
		},
	}
	router := newIssueTestRouter(svc)
	cookie := loginAs(t, router, 1, models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "DELETE", "/v1/issues/5", nil, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, deleted)
}

func TestGetIssueStats(t *testing.T) {
	svc := &fakeIssueService{
		statsFn: func(_ context.Context) (*models.IssueStats, error) {
			return &models.IssueStats{
				CountByStatus:          map[models.IssueStatus]int{models.IssueStatusOpen: 3},
				CountByCategory:        []models.CategoryCount{{Category: "ROADS", Count: 3}},
				AverageResolutionHours: 12.5,
			}, nil
		},
	}
	router := newIssueTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/issues/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 12.5, stats["average_resolution_hours"])
}
