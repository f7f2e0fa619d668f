// Package translate wraps the Sarvam language APIs: language identification
// and text translation. Both calls are advisory: every failure degrades to
// the baseline language or the untranslated input, never to an error.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
)

const defaultBaseURL = "https://api.sarvam.ai"

type Client struct {
	APIKey  string
	BaseURL string // overridable in tests
	Log     *zap.SugaredLogger
	httpc   *http.Client
}

func New(apiKey string, log *zap.SugaredLogger) *Client {
	return &Client{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: defaultBaseURL,
		Log:     log,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Detect returns the language code of text, or the baseline code for
// trivial input (under 5 characters) and on any API failure. Skipping
// short input avoids spurious calls on "ok", "hi" and the like.
func (c *Client) Detect(ctx context.Context, text string) string {
	if len(strings.TrimSpace(text)) < 5 {
		return analysis.DefaultLanguage
	}
	var out struct {
		LanguageCode string `json:"language_code"`
	}
	if err := c.post(ctx, "/text-lid", map[string]any{"input": text}, &out); err != nil {
		c.Log.Warnw("language detection failed", "err", err)
		return analysis.DefaultLanguage
	}
	if out.LanguageCode == "" {
		return analysis.DefaultLanguage
	}
	return out.LanguageCode
}

// Translate converts text into targetLang with the source language left to
// auto-detection. No-op when the target is the baseline or the text is
// empty; returns the input unchanged on any failure or a malformed reply.
func (c *Client) Translate(ctx context.Context, text, targetLang string) string {
	if text == "" || targetLang == analysis.DefaultLanguage {
		return text
	}
	payload := map[string]any{
		"source_language_code": "auto",
		"target_language_code": targetLang,
		"speaker_gender":       "Male",
		"mode":                 "classic-colloquial",
		"model":                "mayura:v1",
		"enable_preprocessing": false,
		"input":                text,
	}
	var out map[string]any
	if err := c.post(ctx, "/translate", payload, &out); err != nil {
		c.Log.Warnw("translation failed", "target", targetLang, "err", err)
		return text
	}
	if t, ok := out["translated_text"].(string); ok && t != "" {
		return t
	}
	c.Log.Warnw("translation reply missing translated_text", "target", targetLang)
	return text
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c.APIKey == "" {
		return fmt.Errorf("SARVAM_API_KEY is empty")
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", c.APIKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sarvam %s %d: %s", path, resp.StatusCode, string(x))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
