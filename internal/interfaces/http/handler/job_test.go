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

	"docgen-ai-api/internal/domain/entity"
	apperrors "docgen-ai-api/pkg/errors"
)

type fakeJobs struct {
	jobs      map[string]*entity.GenerationJob
	submitErr error
}

func (f *fakeJobs) Submit(_ context.Context, userID, projectID string, _ entity.QuestionnaireResponse) (*entity.GenerationJob, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	job := entity.NewGenerationJob("job-1", userID)
	job.ProjectID = projectID
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobs) Get(_ context.Context, id string) (*entity.GenerationJob, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, apperrors.ErrJobNotFound
}

func newJobEngine(h *JobHandler, userID string) *gin.Engine {
	r := gin.New()
	r.Use(withUser(userID))
	r.POST("/v1/jobs", h.SubmitJob)
	r.GET("/v1/jobs/:jid", h.GetJob)
	return r
}

func TestJob_SubmitAndGet(t *testing.T) {
	jobs := &fakeJobs{jobs: map[string]*entity.GenerationJob{}}
	r := newJobEngine(NewJobHandler(jobs), "user-1")

	w := serve(r, http.MethodPost, "/v1/jobs", jsonBody(t, map[string]any{"questionnaireData": validQuestionnaire()}))
	require.Equal(t, http.StatusAccepted, w.Code)
	var submitted struct {
		Data struct {
			JobID  string `json:"jobId"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.Equal(t, "job-1", submitted.Data.JobID)
	assert.Equal(t, "pending", submitted.Data.Status)

	w = serve(r, http.MethodGet, "/v1/jobs/job-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"jobId":"job-1"`)

	other := newJobEngine(NewJobHandler(jobs), "user-2")
	assert.Equal(t, http.StatusNotFound, serve(other, http.MethodGet, "/v1/jobs/job-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/v1/jobs/nope", nil).Code)
}

func TestJob_SubmitErrors(t *testing.T) {
	jobs := &fakeJobs{jobs: map[string]*entity.GenerationJob{}}
	r := newJobEngine(NewJobHandler(jobs), "")
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/v1/jobs", jsonBody(t, map[string]any{})).Code)

	jobs.submitErr = apperrors.Wrap(errors.New("redis down"), apperrors.CodeMessagingError, "failed to enqueue job")
	w := serve(r, http.MethodPost, "/v1/jobs", jsonBody(t, map[string]any{"questionnaireData": validQuestionnaire()}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to enqueue job")

	jobs.submitErr = apperrors.ErrProjectNotFound
	w = serve(r, http.MethodPost, "/v1/jobs", jsonBody(t, map[string]any{
		"questionnaireData": validQuestionnaire(),
		"projectId":         "someone-elses",
	}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
