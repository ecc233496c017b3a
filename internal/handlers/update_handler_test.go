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

func newUpdateTestRouter(svc *fakeUpdateService) *gin.Engine {
	router := newTestRouter()
	h := NewUpdateHandler(svc, newTestConfig(), newTestLogger())

	updates := router.Group("/v1/updates")
	{
		updates.GET("", h.ListPublishedUpdates)
		updates.GET("/mine", middleware.RequireRole(models.RolePolitician), h.ListMyUpdates)
		updates.GET("/:id", h.ViewUpdate)
		updates.POST("", middleware.RequireRole(models.RolePolitician), h.CreateUpdate)
		updates.PUT("/:id", middleware.RequireRole(models.RolePolitician), h.EditUpdate)
		updates.DELETE("/:id", middleware.RequireAuth(), h.DeleteUpdate)
	}
	router.GET("/v1/politicians/:id/updates", h.ListUpdatesByPolitician)
	return router
}

func TestCreateUpdate(t *testing.T) {
	var gotPoliticianID int
	svc := &fakeUpdateService{
		createFn: func(_ context.Context, politicianID int, req *models.CreateUpdateRequest) (*models.Update, error) {
			gotPoliticianID = politicianID
			return &models.Update{ID: 1, Title: req.Title, Content: req.Content, PoliticianID: politicianID, Published: true}, nil
		},
	}
	router := newUpdateTestRouter(svc)
	cookie := loginAs(t, router, 7, models.RolePolitician)

	body := models.CreateUpdateRequest{
		Title:   "Road repair schedule",
		Content: "Resurfacing work begins next Monday on the north corridor.",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/updates", body, cookie))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 7, gotPoliticianID)
}

func TestCreateUpdate_PoliticianOnly(t *testing.T) {
	router := newUpdateTestRouter(&fakeUpdateService{})
	cookie := loginAs(t, router, 42, models.RoleCitizen)

	body := models.CreateUpdateRequest{
		Title:   "Road repair schedule",
		Content: "Resurfacing work begins next Monday on the north corridor.",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/updates", body, cookie))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestViewUpdate(t *testing.T) {
	svc := &fakeUpdateService{
		viewFn: func(_ context.Context, id int) (*models.Update, error) {
			return &models.Update{ID: id, Title: "Road repair schedule", ViewCount: 11, Published: true}, nil
		},
	}
	router := newUpdateTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/updates/3", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(11), resp["view_count"])
}

func TestViewUpdate_NotFound(t *testing.T) {
	svc := &fakeUpdateService{
		viewFn: func(_ context.Context, id int) (*models.Update, error) {
			return nil, contextutils.NewNotFoundError("update", id)
		},
	}
	router := newUpdateTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/updates/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPublishedUpdates(t *testing.T) {
	svc := &fakeUpdateService{
		publishedFn: func(_ context.Context) ([]models.Update, error) {
			return []models.Update{{ID: 1, Published: true}, {ID: 2, Published: true}}, nil
		},
	}
	router := newUpdateTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/updates", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["updates"], 2)
}

func TestEditUpdate_NotOwner(t *testing.T) {
	svc := &fakeUpdateService{
		editFn: func(_ context.Context, _, _ int, _ *models.CreateUpdateRequest) (*models.Update, error) {
			return nil, contextutils.NewUnauthorizedError("only the author may edit an update")
		},
	}
	router := newUpdateTestRouter(svc)
	cookie := loginAs(t, router, 8, models.RolePolitician)

	body := models.CreateUpdateRequest{
		Title:   "Hijacked title",
		Content: "Attempting to edit an update that belongs to somebody else.",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "PUT", "/v1/updates/3", body, cookie))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteUpdate_PassesIdentityToService(t *testing.T) {
	var gotRequesterID int
	var gotRole models.Role
	svc := &fakeUpdateService{
		deleteFn: func(_ context.Context, _, requesterID int, requesterRole models.Role) error {
			gotRequesterID = requesterID
			gotRole = requesterRole
			return nil
		},
	}
	router := newUpdateTestRouter(svc)
	cookie := loginAs(t, router, 1, models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "DELETE", "/v1/updates/3", nil, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gotRequesterID)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestListMyUpdates_UsesSessionIdentity(t *testing.T) {
	var gotPoliticianID int
	svc := &fakeUpdateService{
		byPoliticianFn: func(_ context.Context, politicianID int) ([]models.Update, error) {
			gotPoliticianID = politicianID
			return []models.Update{{ID: 1, PoliticianID: politicianID, Published: false}}, nil
		},
	}
	router := newUpdateTestRouter(svc)
	cookie := loginAs(t, router, 7, models.RolePolitician)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/updates/mine", nil, cookie))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, gotPoliticianID)
}

func TestListUpdatesByPolitician(t *testing.T) {
	svc := &fakeUpdateService{
		byPoliticianFn: func(_ context.Context, politicianID int) ([]models.Update, error) {
			return []models.Update{{ID: 1, PoliticianID: politicianID}}, nil
		},
	}
	router := newUpdateTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/politicians/7/updates", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["updates"], 1)
}
