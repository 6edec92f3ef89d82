// Package store persists reconstruction runs.
//
// Every solve served by the CLI or the HTTP API can be recorded as a
// [Record]: the source name, image hash, options, the chosen solution and
// (optionally) the full candidate trace. Records are addressed by UUID.
//
// Backends:
//   - [FileStore]: one JSON file per run, for the CLI
//   - [MemoryStore]: in-process, for tests and ephemeral servers
//   - [MongoStore]: MongoDB, for the HTTP server in production
//
// # Usage
//
//	st, err := store.NewFileStore("")  // ~/.local/share/unshred/runs
//	rec := store.NewRecord("shredded.png", hash)
//	rec.Solution = sol
//	err = st.Save(ctx, rec)
//
//	runs, err := st.List(ctx, 20)
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/unshred/pkg/core/sequence"
	"github.com/matzehuels/unshred/pkg/errors"
)

// Record is one stored reconstruction run.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Source    string    `json:"source" bson:"source"`
	ImageHash string    `json:"image_hash" bson:"image_hash"`

	Width       int `json:"width" bson:"width"`
	Height      int `json:"height" bson:"height"`
	StripeWidth int `json:"stripe_width" bson:"stripe_width"`
	Stripes     int `json:"stripes" bson:"stripes"`

	Metric       string `json:"metric" bson:"metric"`
	IncludeAlpha bool   `json:"include_alpha" bson:"include_alpha"`

	Solution   sequence.Solution    `json:"solution" bson:"solution"`
	Candidates []sequence.Candidate `json:"candidates,omitempty" bson:"candidates,omitempty"`

	// ElapsedMS is the wall-clock solve time in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms" bson:"elapsed_ms"`
}

// NewRecord creates a record with a fresh id and the current time.
func NewRecord(source, imageHash string) *Record {
	return &Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		ImageHash: imageHash,
	}
}

// Summary returns the record without its candidate trace.
func (r *Record) Summary() Summary {
	return Summary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Source:    r.Source,
		Stripes:   r.Stripes,
		Policy:    r.Solution.Policy,
		Cost:      r.Solution.Cost,
		Complete:  r.Solution.IsPermutation(),
	}
}

// Summary is the list view of a record.
type Summary struct {
	ID        string          `json:"id" bson:"_id"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Source    string          `json:"source" bson:"source"`
	Stripes   int             `json:"stripes" bson:"stripes"`
	Policy    sequence.Policy `json:"policy" bson:"policy"`
	Cost      float64         `json:"cost" bson:"cost"`
	Complete  bool            `json:"complete" bson:"complete"`
}

// Store is the interface for run storage backends.
type Store interface {
	// Save stores a record, replacing any record with the same id.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by id.
	// Returns a NOT_FOUND error if no such record exists.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit summaries, newest first.
	// A limit of zero or less returns every record.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// DefaultListLimit is the page size used by the CLI and the API.
const DefaultListLimit = 20

func validateRecord(rec *Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record is nil")
	}
	if err := errors.ValidateRunID(rec.ID); err != nil {
		return err
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "run %s not found", id)
}
