package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/session"
)

type stubAnalyzer struct {
	rec   *analysis.VerdictRecord
	calls atomic.Int64
}

func (s *stubAnalyzer) Run(ctx context.Context, req analysis.Request) *analysis.VerdictRecord {
	s.calls.Add(1)
	if s.rec != nil {
		return s.rec
	}
	return analysis.ErrorRecord("stub failure")
}

func newTestHandler(a Analyzer) *Handler {
	log := zap.NewNop().Sugar()
	return &Handler{
		Analyzer: a,
		Sessions: session.NewStore(log),
		Log:      log,
	}
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRootAndHealth(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{})

	w := serve(h, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), Version)

	w = serve(h, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAnalyzeRejectsEmptyBody(t *testing.T) {
	a := &stubAnalyzer{}
	h := newTestHandler(a)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{}`))
	w := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, a.calls.Load(), "no oracle call on validation failure")
}

func TestAnalyzeReturnsRecord(t *testing.T) {
	a := &stubAnalyzer{rec: &analysis.VerdictRecord{
		Verdict:          analysis.VerdictFake,
		Confidence:       0.9,
		Reason:           "because",
		Sources:          analysis.SourceList{{Title: "NASA", Ref: "https://nasa.gov"}},
		DetectedLanguage: "en",
	}}
	h := newTestHandler(a)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{"text":"The Earth is flat"}`))
	w := serve(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"verdict":"Fake"`)
	assert.Contains(t, body, `"confidence":0.9`)
	assert.Contains(t, body, `"NASA":"https://nasa.gov"`)
	assert.Contains(t, body, `"detected_language":"en"`)
	assert.Equal(t, int64(1), a.calls.Load())
}

func TestAnalyzeExtractionFailureIs500(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}) // stub returns Error record
	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{"text":"The Earth is flat"}`))
	w := serve(h, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"verdict":"Error"`)
}

func TestAnalyzeUploadRequiresInput(t *testing.T) {
	a := &stubAnalyzer{}
	h := newTestHandler(a)

	req := httptest.NewRequest("POST", "/api/analyze/upload", strings.NewReader("--x--\r\n"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, a.calls.Load())
}
