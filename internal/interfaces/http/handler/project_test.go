package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/domain/entity"
)

type fakeStore struct {
	urls map[string][]byte
	err  error
}

func (f *fakeStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.urls == nil {
		f.urls = map[string][]byte{}
	}
	f.urls[key] = body
	return "https://docs.example.com/" + key, nil
}

func newProjectEngine(h *ProjectHandler, userID string) *gin.Engine {
	r := gin.New()
	r.Use(withUser(userID))
	r.GET("/v1/projects", h.ListProjects)
	r.GET("/v1/projects/:pid", h.GetProject)
	r.DELETE("/v1/projects/:pid", h.DeleteProject)
	r.GET("/v1/projects/:pid/export", h.ExportProject)
	r.POST("/v1/projects/:pid/publish", h.PublishProject)
	return r
}

func seedProject(t *testing.T, env *testEnv, owner string) string {
	t.Helper()
	res, err := env.gen.GenerateAll(context.Background(), validQuestionnaire(), docgen.WithOwner(owner))
	require.NoError(t, err)
	require.NotEmpty(t, res.ProjectID)
	return res.ProjectID
}

func TestProject_GetAndList(t *testing.T) {
	env := newTestEnv(t, nil)
	id := seedProject(t, env, "user-1")
	seedProject(t, env, "user-2")
	r := newProjectEngine(NewProjectHandler(env.storage, nil), "user-1")

	w := serve(r, http.MethodGet, "/v1/projects/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Data struct {
			ID        string            `json:"id"`
			Name      string            `json:"name"`
			Documents map[string]string `json:"documents"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, id, detail.Data.ID)
	assert.Equal(t, "Acme Inventory", detail.Data.Name)
	assert.Len(t, detail.Data.Documents, entity.TotalDocuments)

	w = serve(r, http.MethodGet, "/v1/projects?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data struct {
			Projects []struct {
				ID string `json:"id"`
			} `json:"projects"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Meta.Total)
	require.Len(t, list.Data.Projects, 1)
	assert.Equal(t, id, list.Data.Projects[0].ID)
}

func TestProject_OtherUsersProjectIsHidden(t *testing.T) {
	env := newTestEnv(t, nil)
	id := seedProject(t, env, "user-2")
	r := newProjectEngine(NewProjectHandler(env.storage, nil), "user-1")

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/v1/projects/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/v1/projects/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/v1/projects/missing", nil).Code)
}

func TestProject_Delete(t *testing.T) {
	env := newTestEnv(t, nil)
	id := seedProject(t, env, "user-1")
	r := newProjectEngine(NewProjectHandler(env.storage, nil), "user-1")

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/v1/projects/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/v1/projects/"+id, nil).Code)
}

func TestProject_Export(t *testing.T) {
	env := newTestEnv(t, nil)
	id := seedProject(t, env, "")
	r := newProjectEngine(NewProjectHandler(env.storage, nil), "")

	w := serve(r, http.MethodGet, "/v1/projects/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="acme-inventory-documentation.md"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Project Requirements\n\n")
	assert.Contains(t, w.Body.String(), "# System Prompts\n\n")
}

func TestProject_Publish(t *testing.T) {
	env := newTestEnv(t, nil)
	id := seedProject(t, env, "")

	r := newProjectEngine(NewProjectHandler(env.storage, nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodPost, "/v1/projects/"+id+"/publish", nil).Code)

	store := &fakeStore{}
	r = newProjectEngine(NewProjectHandler(env.storage, docgen.NewPublisher(env.storage, store)), "")
	w := serve(r, http.MethodPost, "/v1/projects/"+id+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://docs.example.com/"+id+"/acme-inventory-documentation.md")
	assert.Contains(t, store.urls, id+"/acme-inventory-documentation.md")

	r = newProjectEngine(NewProjectHandler(env.storage, docgen.NewPublisher(env.storage, &fakeStore{err: errors.New("denied")})), "")
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodPost, "/v1/projects/"+id+"/publish", nil).Code)
}
