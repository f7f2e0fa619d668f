package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/cache"
)

type analyzeRequest struct {
	Text           string `json:"text,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// handleAnalyze is the synchronous analysis path: the caller waits out the
// oracle latency and gets the full verdict back in the response body.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req := analysis.Request{
		Text:           in.Text,
		ImageSource:    in.ImageURL,
		TargetLanguage: in.TargetLanguage,
	}
	if err := req.Validate(); err != nil {
		Error(w, http.StatusBadRequest, "Either text or image URL must be provided")
		return
	}

	key := cache.Key(req)
	if rec, ok := h.Cache.Get(r.Context(), key); ok {
		JSON(w, http.StatusOK, rec)
		return
	}

	rec := h.Analyzer.Run(r.Context(), req)
	if rec.Verdict == analysis.VerdictError {
		JSON(w, http.StatusInternalServerError, rec)
		return
	}
	h.Cache.Put(r.Context(), key, rec, cache.DefaultTTL)
	JSON(w, http.StatusOK, rec)
}

// handleAnalyzeUpload accepts a multipart form with an optional text field
// and an optional image file. The upload is spooled to a temp file that is
// removed no matter how the analysis ends.
func (h *Handler) handleAnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	text := r.FormValue("text")

	var imagePath string
	file, _, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		tmp, err := os.CreateTemp("", "upload-*.jpg")
		if err != nil {
			Error(w, http.StatusInternalServerError, "could not store upload")
			return
		}
		imagePath = tmp.Name()
		defer os.Remove(imagePath)
		if _, err := io.Copy(tmp, file); err != nil {
			tmp.Close()
			Error(w, http.StatusInternalServerError, "could not store upload")
			return
		}
		tmp.Close()
	}

	req := analysis.Request{
		Text:           text,
		ImageSource:    imagePath,
		TargetLanguage: r.FormValue("target_language"),
	}
	if err := req.Validate(); err != nil {
		Error(w, http.StatusBadRequest, "Either text or image must be provided")
		return
	}

	rec := h.Analyzer.Run(r.Context(), req)
	if rec.Verdict == analysis.VerdictError {
		JSON(w, http.StatusInternalServerError, rec)
		return
	}
	JSON(w, http.StatusOK, rec)
}
