package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultLanguage is the baseline language code used when detection is
// inapplicable or fails.
const DefaultLanguage = "en"

// Oracle is the external reasoning service: takes the claim (text and/or
// image), returns its free-form reply. The reply is parsed here, not there.
type Oracle interface {
	Analyze(ctx context.Context, req Request) (string, error)
}

// LanguageBridge detects the language of a text and translates text into a
// target language. Implementations absorb their own failures: Detect falls
// back to DefaultLanguage, Translate to the input text. Neither ever
// aborts the pipeline.
type LanguageBridge interface {
	Detect(ctx context.Context, text string) string
	Translate(ctx context.Context, text, targetLang string) string
}

// Orchestrator composes extraction, source resolution and translation into
// one end-to-end run shared by the HTTP API, the WhatsApp webhook and the
// Telegram bot.
type Orchestrator struct {
	Oracle Oracle
	Lang   LanguageBridge
	Log    *zap.SugaredLogger

	// OracleTimeout bounds a single reasoning call. Zero means 2 minutes.
	OracleTimeout time.Duration
}

func NewOrchestrator(oracle Oracle, lang LanguageBridge, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{Oracle: oracle, Lang: lang, Log: log}
}

// Run analyzes one request end to end. It never returns an error: every
// failure path downgrades to a VerdictError record so that callers need no
// separate error branches.
func (o *Orchestrator) Run(ctx context.Context, req Request) *VerdictRecord {
	target := req.TargetLanguage
	detected := DefaultLanguage
	if req.Text != "" {
		detected = o.Lang.Detect(ctx, req.Text)
	}
	if target == "" {
		target = detected
	}

	callCtx, cancel := context.WithTimeout(ctx, o.oracleTimeout())
	defer cancel()
	raw, err := o.Oracle.Analyze(callCtx, req)
	if err != nil {
		o.Log.Errorw("reasoning call failed", "err", err)
		rec := ErrorRecord(fmt.Sprintf("Analysis failed: %v", err))
		rec.DetectedLanguage = detected
		return rec
	}

	rec, err := Extract(raw)
	if err != nil {
		o.Log.Errorw("could not extract verdict", "err", err, "raw_len", len(raw))
		rec = ErrorRecord("Sorry, I couldn't analyze this content. Please try again with a clearer claim or news article.")
		rec.DetectedLanguage = detected
		return rec
	}

	ResolveSources(rec, req.Text)

	if target != DefaultLanguage {
		o.translateFields(ctx, rec, target)
	}
	rec.DetectedLanguage = detected
	return rec
}

// translateFields batches verdict, confidence line and reason into one
// translation round trip, then splices the segments back. Sources stay
// untouched, proper nouns and URLs must survive as-is. If the translator
// reflows the text and the blank-line shape is lost, the originals are kept
// rather than risking field misalignment.
func (o *Orchestrator) translateFields(ctx context.Context, rec *VerdictRecord, target string) {
	combined := fmt.Sprintf("Verdict: %s\n\nConfidence: %d%%\n\nReason: %s",
		rec.Verdict, int(rec.Confidence*100), rec.Reason)

	translated := o.Lang.Translate(ctx, combined, target)
	if translated == combined {
		return
	}
	parts := strings.Split(translated, "\n\n")
	if len(parts) < 3 {
		o.Log.Warnw("translation lost segment shape, keeping originals",
			"target", target, "segments", len(parts))
		return
	}
	rec.Verdict = strings.TrimSpace(strings.TrimPrefix(parts[0], "Verdict:"))
	rec.Reason = strings.TrimSpace(strings.TrimPrefix(parts[2], "Reason:"))
}

func (o *Orchestrator) oracleTimeout() time.Duration {
	if o.OracleTimeout > 0 {
		return o.OracleTimeout
	}
	return 2 * time.Minute
}
