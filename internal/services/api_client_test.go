package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akash-aiml/resume-score-analyzer/internal/config"
	"akash-aiml/resume-score-analyzer/internal/models"
)

const sampleResponse = `{
	"score": 72,
	"breakdown": {"skills": 80, "experience": 60, "education": 90, "projects": 50},
	"overall_assessment": "Solid match",
	"matched_skills": ["Go"],
	"missing_skills": ["Kubernetes"],
	"strengths": ["Clear formatting"],
	"improvement_suggestions": ["Add metrics"]
}`

type capturedRequest struct {
	method      string
	path        string
	contentType string
	fields      map[string][]string
	files       map[string]string
	fileBytes   map[string][]byte
}

func newScoringServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.contentType = r.Header.Get("Content-Type")

		if strings.HasPrefix(captured.contentType, "multipart/form-data") {
			if err := r.ParseMultipartForm(10 << 20); err == nil {
				captured.fields = r.MultipartForm.Value
				captured.files = map[string]string{}
				captured.fileBytes = map[string][]byte{}
				for field, headers := range r.MultipartForm.File {
					captured.files[field] = headers[0].Filename
					f, _ := headers[0].Open()
					captured.fileBytes[field], _ = io.ReadAll(f)
					f.Close()
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, captured
}

func TestNewHTTPClientFallsBackToDefaultURL(t *testing.T) {
	client := NewHTTPClient(config.APIConfig{})
	assert.Equal(t, config.DefaultAPIURL, client.BaseURL())

	client = NewHTTPClient(config.APIConfig{BaseURL: "http://localhost:8000/"})
	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}

func TestAnalyzeResumeTextMode(t *testing.T) {
	srv, captured := newScoringServer(t, http.StatusOK, sampleResponse)
	analyzer := NewResumeAnalyzer(NewHTTPClient(config.APIConfig{BaseURL: srv.URL}))

	result, err := analyzer.AnalyzeResume(context.Background(), AnalyzeRequest{
		Resume:             models.UploadFile{Name: "resume.pdf", Content: []byte("%PDF-1.4 resume")},
		JobDescriptionText: "Senior engineer role requiring Go and Kubernetes",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, AnalyzeResumePath, captured.path)
	assert.True(t, strings.HasPrefix(captured.contentType, "multipart/form-data; boundary="), captured.contentType)
	assert.Equal(t, []string{"Senior engineer role requiring Go and Kubernetes"}, captured.fields["job_description_text"])
	assert.Equal(t, map[string]string{"resume": "resume.pdf"}, captured.files)
	assert.Equal(t, []byte("%PDF-1.4 resume"), captured.fileBytes["resume"])

	assert.Equal(t, sampleResult(), result)
}

func TestAnalyzeResumeFileMode(t *testing.T) {
	srv, captured := newScoringServer(t, http.StatusOK, sampleResponse)
	analyzer := NewResumeAnalyzer(NewHTTPClient(config.APIConfig{BaseURL: srv.URL}))

	_, err := analyzer.AnalyzeResume(context.Background(), AnalyzeRequest{
		Resume:             models.UploadFile{Name: "resume.pdf", Content: []byte("resume")},
		JobDescriptionFile: &models.UploadFile{Name: "job.pdf", Content: []byte("job")},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"resume": "resume.pdf", "job_description_file": "job.pdf"}, captured.files)
	_, hasText := captured.fields["job_description_text"]
	assert.False(t, hasText)
}

func TestPostPropagatesResponseError(t *testing.T) {
	srv, _ := newScoringServer(t, http.StatusBadRequest, `{"detail":"Unsupported file encoding"}`)
	analyzer := NewResumeAnalyzer(NewHTTPClient(config.APIConfig{BaseURL: srv.URL}))

	_, err := analyzer.AnalyzeResume(context.Background(), AnalyzeRequest{
		Resume:             models.UploadFile{Name: "resume.pdf"},
		JobDescriptionText: "role",
	})

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
	assert.Equal(t, "Unsupported file encoding", respErr.Detail())
	assert.JSONEq(t, `{"detail":"Unsupported file encoding"}`, string(respErr.Body))
}

func TestPostSendsDefaultJSONContentType(t *testing.T) {
	var gotContentType string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHTTPClient(config.APIConfig{BaseURL: srv.URL})
	err := client.Post(context.Background(), "echo", JSONBody{Value: map[string]string{"hello": "world"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"hello": "world"}, gotBody)
}

func TestPostTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewHTTPClient(config.APIConfig{BaseURL: url, Timeout: 2 * time.Second})
	err := client.Post(context.Background(), AnalyzeResumePath, nil, nil)

	require.Error(t, err)
	var respErr *ResponseError
	assert.NotErrorAs(t, err, &respErr)
}

func TestPostCancelledContext(t *testing.T) {
	srv, captured := newScoringServer(t, http.StatusOK, sampleResponse)
	client := NewHTTPClient(config.APIConfig{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Post(ctx, AnalyzeResumePath, nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, captured.method)
}

func newSlowServer(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, sampleResponse)
	}))
	// Cleanups run last-in first-out, so handlers are released before Close waits on them.
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	return srv
}

func TestPostHonorsDeadlines(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.APIConfig
		timeout time.Duration
	}{
		{name: "configured timeout", cfg: config.APIConfig{Timeout: 100 * time.Millisecond}},
		{name: "context deadline", timeout: 100 * time.Millisecond},
		{name: "context deadline shorter than configured", cfg: config.APIConfig{Timeout: 10 * time.Second}, timeout: 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newSlowServer(t)
			tt.cfg.BaseURL = srv.URL
			client := NewHTTPClient(tt.cfg)

			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}

			start := time.Now()
			err := client.Post(ctx, AnalyzeResumePath, nil, nil)

			require.Error(t, err)
			assert.Less(t, time.Since(start), time.Second)
			var respErr *ResponseError
			assert.NotErrorAs(t, err, &respErr)
		})
	}
}

func TestPostExpiredDeadline(t *testing.T) {
	srv, captured := newScoringServer(t, http.StatusOK, sampleResponse)
	client := NewHTTPClient(config.APIConfig{BaseURL: srv.URL})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := client.Post(ctx, AnalyzeResumePath, nil, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, captured.method)
}

func TestResponseErrorDetailIsVerbatim(t *testing.T) {
	srv, _ := newScoringServer(t, http.StatusBadRequest, `{"detail":"  Unsupported file encoding "}`)
	client := NewHTTPClient(config.APIConfig{BaseURL: srv.URL})

	err := client.Post(context.Background(), AnalyzeResumePath, nil, nil)

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "  Unsupported file encoding ", respErr.Detail())
}
