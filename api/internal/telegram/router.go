// Package telegram is the Telegram front end: it accepts claims as text or
// photos, acknowledges immediately and pushes the verdict once the
// background analysis finishes.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/session"
)

// Analyzer runs one claim end to end.
type Analyzer interface {
	Run(ctx context.Context, req analysis.Request) *analysis.VerdictRecord
}

type Router struct {
	Bot      *tgbotapi.BotAPI
	Analyzer Analyzer
	Sessions *session.Store
	Log      *zap.SugaredLogger

	wg sync.WaitGroup
}

const startText = "Hello! Send me a news article or claim, and I'll analyze it for you."

const helpText = `Send me a news article, claim, or photo and I'll check if it's real or fake.

Commands:
/start - intro
/help - this message`

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID
	r.Sessions.Touch(strconv.FormatInt(cid, 10), upd.Message.Text)

	if upd.Message.IsCommand() {
		switch upd.Message.Command() {
		case "start":
			r.send(cid, startText)
		case "help":
			r.send(cid, helpText)
		default:
			r.send(cid, "Unknown command. Try /help.")
		}
		return
	}

	text := upd.Message.Text
	if text == "" {
		text = upd.Message.Caption
	}

	var imageURL string
	if len(upd.Message.Photo) > 0 {
		// largest preview
		ph := upd.Message.Photo[len(upd.Message.Photo)-1]
		tf, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
		if err != nil {
			r.Log.Errorw("telegram GetFile failed", "chat", cid, "err", err)
			r.send(cid, "Sorry, I couldn't download that photo. Please try again.")
			return
		}
		imageURL = fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, tf.FilePath)
	}

	if text == "" && imageURL == "" {
		r.send(cid, "Sorry, I couldn't process your message. Please send either text or an image.")
		return
	}

	r.send(cid, "🔍 Analyzing your content... I'll send the results shortly.")

	req := analysis.Request{Text: text, ImageSource: imageURL}
	r.wg.Add(1)
	go r.analyzeAndReply(cid, req)
}

// analyzeAndReply does the slow part off the update loop so one long
// oracle call does not stall every other chat.
func (r *Router) analyzeAndReply(cid int64, req analysis.Request) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			r.Log.Errorw("telegram delivery panicked", "chat", cid, "panic", p)
			r.send(cid, "An error occurred while processing your request. Please try again later.")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rec := r.Analyzer.Run(ctx, req)
	msg := tgbotapi.NewMessage(cid, "Analysis Result:\n\n"+FormatRecord(rec))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Errorw("telegram send failed", "chat", cid, "err", err)
		// retry once without markdown; bad model output can break entities
		plain := tgbotapi.NewMessage(cid, "Analysis Result:\n\n"+FormatRecord(rec))
		_, _ = r.Bot.Send(plain)
	}
}

func (r *Router) send(chatID int64, text string) {
	_, _ = r.Bot.Send(tgbotapi.NewMessage(chatID, text))
}

// Wait blocks until in-flight replies are done. Test hook.
func (r *Router) Wait() { r.wg.Wait() }
