package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/cache"
	"factcheck-bot/api/internal/session"
	"factcheck-bot/api/internal/whatsapp"
)

// webhookEvent is one inbound WhatsApp message, copied out of the request
// form before the handler returns. The background delivery owns this copy;
// nothing borrows from the finished request.
type webhookEvent struct {
	From     string
	Body     string
	MediaURL string
}

// Dispatcher ties the WhatsApp webhook to the analysis pipeline. The
// webhook answers immediately with a TwiML acknowledgment; the real
// analysis runs detached and the verdict is pushed through the Twilio
// client afterwards. Twilio only gives a webhook ~15 seconds, the oracle
// can take far longer.
type Dispatcher struct {
	Analyzer Analyzer
	Sender   whatsapp.Sender
	Sessions *session.Store
	Cache    *cache.Cache
	Log      *zap.SugaredLogger

	// DeliverTimeout bounds one background delivery. Zero means 5 minutes.
	DeliverTimeout time.Duration

	wg sync.WaitGroup
}

// HandleWebhook validates the inbound form, refreshes the sender's
// session, replies with an acknowledgment and schedules the delivery. Help
// commands get their answer inline and schedule nothing. Internal problems
// still produce a generic TwiML reply, never an error page.
func (d *Dispatcher) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		d.Log.Warnw("webhook form parse failed", "err", err)
		writeTwiML(w, whatsapp.AckText)
		return
	}

	ev := webhookEvent{
		Body: strings.TrimSpace(r.FormValue("Body")),
		From: strings.TrimPrefix(r.FormValue("From"), "whatsapp:"),
	}
	numMedia, _ := strconv.Atoi(r.FormValue("NumMedia"))
	if numMedia > 0 {
		ev.MediaURL = r.FormValue("MediaUrl0")
	}

	d.Sessions.Touch(ev.From, ev.Body)

	if whatsapp.IsHelpCommand(ev.Body) {
		writeTwiML(w, whatsapp.HelpText)
		return
	}

	if ev.From != "" && (ev.Body != "" || ev.MediaURL != "") {
		d.wg.Add(1)
		go d.deliver(ev)
	}

	if ev.MediaURL != "" {
		writeTwiML(w, whatsapp.AckMediaText)
		return
	}
	writeTwiML(w, whatsapp.AckText)
}

// deliver runs the analysis out of band and pushes the result to the user.
// It runs to completion or failure; no cancellation is propagated from the
// long-gone webhook request. A failed push gets a single best-effort
// generic retry, after which the event is dropped with a log record.
func (d *Dispatcher) deliver(ev webhookEvent) {
	defer d.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			d.Log.Errorw("delivery panicked", "from", ev.From, "panic", p)
			d.pushFailure(ev.From)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.deliverTimeout())
	defer cancel()

	req := analysis.Request{Text: ev.Body, ImageSource: ev.MediaURL}
	key := cache.Key(req)

	rec, ok := d.Cache.Get(ctx, key)
	if !ok {
		rec = d.Analyzer.Run(ctx, req)
		d.Cache.Put(ctx, key, rec, cache.DefaultTTL)
	}

	body := whatsapp.FormatRecord(rec)
	sid, err := d.Sender.Send(ctx, ev.From, body)
	if err != nil {
		d.Log.Errorw("result push failed", "from", ev.From, "err", err)
		d.pushFailure(ev.From)
		return
	}
	d.Log.Infow("result delivered", "from", ev.From, "sid", sid, "verdict", rec.Verdict)
}

func (d *Dispatcher) pushFailure(to string) {
	if to == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := d.Sender.Send(ctx, to, whatsapp.FailureText); err != nil {
		// no retry queue; drop the event
		d.Log.Errorw("failure push also failed, dropping event", "to", to, "err", err)
	}
}

// Wait blocks until every scheduled delivery has finished. Used by tests
// and graceful shutdown.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) deliverTimeout() time.Duration {
	if d.DeliverTimeout > 0 {
		return d.DeliverTimeout
	}
	return 5 * time.Minute
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(whatsapp.TwiML(message)))
}
