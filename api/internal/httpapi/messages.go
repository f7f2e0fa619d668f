package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/store"
)

type createMessageRequest struct {
	Text           string `json:"text,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	Sender         string `json:"sender"`
	Recipient      string `json:"recipient,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// handleCreateMessage stores an inbound message record and, when it
// carries analyzable content, runs the analysis synchronously and persists
// the verdict alongside.
func (h *Handler) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var in createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Sender == "" {
		Error(w, http.StatusBadRequest, "sender is required")
		return
	}

	m := &store.Message{
		Text:      in.Text,
		ImageURL:  in.ImageURL,
		Sender:    in.Sender,
		Recipient: in.Recipient,
		Status:    "received",
	}
	if in.Text != "" || in.ImageURL != "" {
		rec := h.Analyzer.Run(r.Context(), analysis.Request{
			Text:           in.Text,
			ImageSource:    in.ImageURL,
			TargetLanguage: in.TargetLanguage,
		})
		m.Analysis = rec
		m.DetectedLanguage = rec.DetectedLanguage
		m.Status = "analyzed"
	}

	if err := h.Messages.Create(r.Context(), m); err != nil {
		h.Log.Errorw("message insert failed", "err", err)
		Error(w, http.StatusInternalServerError, "could not store message")
		return
	}
	JSON(w, http.StatusCreated, m)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Messages.List(r.Context(), 100)
	if err != nil {
		h.Log.Errorw("message list failed", "err", err)
		Error(w, http.StatusInternalServerError, "could not list messages")
		return
	}
	if msgs == nil {
		msgs = []*store.Message{}
	}
	JSON(w, http.StatusOK, msgs)
}

func (h *Handler) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.Messages.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "Message not found")
			return
		}
		h.Log.Errorw("message get failed", "id", id, "err", err)
		Error(w, http.StatusInternalServerError, "could not load message")
		return
	}
	JSON(w, http.StatusOK, m)
}

func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Messages.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "Message not found")
			return
		}
		h.Log.Errorw("message delete failed", "id", id, "err", err)
		Error(w, http.StatusInternalServerError, "could not delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
