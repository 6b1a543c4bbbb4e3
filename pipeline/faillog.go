package pipeline

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/scene"
)

// FailLog appends one NDJSON record per failed scene so a batch can be
// retried from its failures alone.
type FailLog struct {
	runID string

	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

type failRecord struct {
	RunID  string      `json:"run_id"`
	Date   string      `json:"date"`
	Scene  string      `json:"scene"`
	Errors []failCause `json:"errors"`
}

type failCause struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// OpenFailLog opens the log for appending. Each run gets a fresh id so
// records from successive runs stay distinguishable in one file.
func OpenFailLog(path string) (*FailLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return &FailLog{runID: uuid.NewString(), f: f, enc: json.NewEncoder(f)}, nil
}

// RunID identifies this processing run in the log.
func (l *FailLog) RunID() string { return l.runID }

func (l *FailLog) Write(sc scene.Scene, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(failRecord{
		RunID:  l.runID,
		Date:   time.Now().UTC().Format(time.RFC3339),
		Scene:  sc.String(),
		Errors: []failCause{{Type: errors.Class(err), Message: err.Error()}},
	})
}

func (l *FailLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
