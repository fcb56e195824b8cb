package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixhub/estimator-cli/internal/estimator"
	"github.com/fixhub/estimator-cli/internal/extraction"
	"github.com/fixhub/estimator-cli/internal/model"
	"github.com/fixhub/estimator-cli/internal/store"
	"github.com/fixhub/estimator-cli/internal/template"
)

// stubExtractor serves a fixed Result so handler tests never hit the network.
type stubExtractor struct {
	result *extraction.Result
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, req model.ExtractionRequest) (*extraction.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubExtractor) Model() string { return "test-model" }

func newTestServer(t *testing.T, ex estimator.Extractor) *httptest.Server {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	templates := template.NewService(st)
	_, err = templates.SeedDefaults(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(estimator.New(st, ex, templates), []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func workingExtractor() *stubExtractor {
	return &stubExtractor{
		result: &extraction.Result{
			Materials: []model.ExtractedMaterial{
				{
					Category:       model.CategoryPlumbing,
					Name:           "copper pipe",
					Quantity:       2,
					Unit:           "ft",
					Specifications: []string{"1/2 inch"},
					EstimatedSize:  model.SizeMedium,
					Quality:        model.QualityMidGrade,
				},
			},
			Confidence: 85,
			Mode:       extraction.ParseModeStructured,
		},
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, workingExtractor())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPostEstimate(t *testing.T) {
	srv := newTestServer(t, workingExtractor())

	resp := postJSON(t, srv.URL+"/estimates", estimateRequest{
		JobID:          "job-1",
		JobDescription: "Fix a leaking copper pipe under the sink",
		ServiceType:    "plumbing",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var est model.MaterialEstimate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&est))
	assert.Equal(t, "job-1", est.JobID)
	assert.NotEmpty(t, est.ID)
	assert.Len(t, est.Materials, 1)
	assert.Greater(t, est.TotalEstimatedCost, 0.0)
	assert.GreaterOrEqual(t, est.Confidence, 70)
}

func TestPostEstimateValidation(t *testing.T) {
	srv := newTestServer(t, workingExtractor())

	// Missing job_id.
	resp := postJSON(t, srv.URL+"/estimates", estimateRequest{
		JobDescription: "fix it",
		ServiceType:    "plumbing",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing description.
	resp = postJSON(t, srv.URL+"/estimates", estimateRequest{
		JobID:       "job-2",
		ServiceType: "plumbing",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostEstimateExtractionUnavailable(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{err: extraction.ErrExtraction})

	resp := postJSON(t, srv.URL+"/estimates", estimateRequest{
		JobID:          "job-3",
		JobDescription: "rewire the panel",
		ServiceType:    "electrical",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "extraction service unavailable", body["error"])
}

func TestGetEstimate(t *testing.T) {
	srv := newTestServer(t, workingExtractor())

	resp := postJSON(t, srv.URL+"/estimates", estimateRequest{
		JobID:          "job-4",
		JobDescription: "fix the pipe",
		ServiceType:    "plumbing",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/estimates/job-4")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var est model.MaterialEstimate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&est))
	assert.Equal(t, "job-4", est.JobID)
}

func TestGetEstimateNotFound(t *testing.T) {
	srv := newTestServer(t, workingExtractor())

	resp, err := http.Get(srv.URL + "/estimates/never-seen")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTemplateEndpoints(t *testing.T) {
	srv := newTestServer(t, workingExtractor())

	resp, err := http.Post(srv.URL+"/templates/init", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/templates")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var templates []model.MaterialTemplate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&templates))
	assert.Len(t, templates, 3)
}
