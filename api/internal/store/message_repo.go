// Package store persists message records: every analysis request that came
// through the message API, together with its verdict.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"factcheck-bot/api/internal/analysis"
)

var ErrNotFound = sql.ErrNoRows

// Message is one stored inbound message plus its analysis outcome.
type Message struct {
	ID               string                  `json:"id"`
	Text             string                  `json:"text,omitempty"`
	ImageURL         string                  `json:"image_url,omitempty"`
	Sender           string                  `json:"sender"`
	Recipient        string                  `json:"recipient,omitempty"`
	Timestamp        time.Time               `json:"timestamp"`
	Analysis         *analysis.VerdictRecord `json:"analysis,omitempty"`
	Status           string                  `json:"status"`
	DetectedLanguage string                  `json:"detected_language,omitempty"`
}

type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

// EnsureSchema creates the messages table when it does not exist yet.
// Single-table schema, no migration tooling.
func (r *MessageRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists messages (
  id text primary key,
  created_at timestamptz not null default now(),
  sender text not null,
  recipient text not null default '',
  body text not null default '',
  image_url text not null default '',
  analysis_json jsonb,
  status text not null default 'received',
  detected_language text not null default ''
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// Create stores a new message. A missing ID or timestamp is filled in.
func (r *MessageRepo) Create(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.Status == "" {
		m.Status = "received"
	}
	var js []byte
	if m.Analysis != nil {
		js, _ = json.Marshal(m.Analysis)
	}
	const q = `
insert into messages (id, created_at, sender, recipient, body, image_url, analysis_json, status, detected_language)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.DB.ExecContext(ctx, q,
		m.ID, m.Timestamp, m.Sender, m.Recipient, m.Text, m.ImageURL, nullableJSON(js), m.Status, m.DetectedLanguage)
	return err
}

// Get loads one message by id.
func (r *MessageRepo) Get(ctx context.Context, id string) (*Message, error) {
	const q = `
select id, created_at, sender, recipient, body, image_url, analysis_json, status, detected_language
from messages where id = $1`
	return scanMessage(r.DB.QueryRowContext(ctx, q, id))
}

// List returns the most recent messages, newest first.
func (r *MessageRepo) List(ctx context.Context, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
select id, created_at, sender, recipient, body, image_url, analysis_json, status, detected_language
from messages order by created_at desc limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes one message; ErrNotFound when the id is unknown.
func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `delete from messages where id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeOlderThan drops old records so the table does not grow unbounded.
func (r *MessageRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	res, err := r.DB.ExecContext(ctx, `delete from messages where created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	var (
		m  Message
		js sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Timestamp, &m.Sender, &m.Recipient, &m.Text, &m.ImageURL,
		&js, &m.Status, &m.DetectedLanguage); err != nil {
		return nil, err
	}
	if js.Valid && js.String != "" {
		var rec analysis.VerdictRecord
		if err := json.Unmarshal([]byte(js.String), &rec); err == nil {
			m.Analysis = &rec
		}
	}
	return &m, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
