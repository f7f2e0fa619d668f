// Package gemini is the reasoning-oracle client. It sends a claim (text
// and/or image) to the Gemini API and returns the model's raw reply;
// turning that reply into a structured verdict is the caller's job.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/util"
)

const systemPrompt = `You are a fake news detector. You will be given a news article, claim, or screenshot, and you need to determine if it is real or fake.
Cross-reference the core claims with credible, dated and verifiable information. Account for satire, opinion pieces, partial truths and manipulated media.
Provide a JSON object with exactly these fields:
  "verdict": "Real" | "Fake" | "Uncertain",
  "confidence": float 0.0-1.0,
  "reason": clear explanation using evidence and logical deduction,
  "sources": object mapping source title to its URL or name.
Example: {"verdict": "Fake", "confidence": 0.85, "reason": "The article contains misleading information.", "sources": {"Reuters": "https://www.reuters.com/fact-check"}}
Do not output anything outside the JSON. Recheck the links before responding.`

type Engine struct {
	APIKey string
	Model  string
	httpc  *http.Client
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		httpc:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "gemini" }

// Analyze sends the claim to Gemini and returns the raw reply text.
// Transient failures are retried a few times with a short backoff.
func (e *Engine) Analyze(ctx context.Context, req analysis.Request) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	parts, err := e.buildParts(ctx, req)
	if err != nil {
		return "", err
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return "", fmt.Errorf("gemini: empty response")
		}
		return txt, nil
	}
	return "", lastErr
}

// buildParts assembles the model input: an optional image (inline bytes,
// URL or local path) plus the claim text.
func (e *Engine) buildParts(ctx context.Context, req analysis.Request) ([]genai.Part, error) {
	img := req.ImageData
	if img == nil && req.ImageSource != "" {
		b, err := e.loadImage(ctx, req.ImageSource)
		if err != nil {
			return nil, err
		}
		img = b
	}

	text := strings.TrimSpace(req.Text)
	if img != nil {
		if text == "" {
			text = "Analyze this news image"
		}
		return []genai.Part{
			&genai.Blob{MIMEType: util.SniffImageMIME(img), Data: img},
			genai.Text(text),
		}, nil
	}
	if text == "" {
		return nil, analysis.ErrNoInput
	}
	return []genai.Part{genai.Text(text)}, nil
}

func (e *Engine) loadImage(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, "GET", src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := e.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("image fetch %d: %s", resp.StatusCode, string(b))
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(src)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func ptrFloat32(f float32) *float32 { return &f }
