// Package trace appends one redacted JSONL record per processed utterance.
// The file is the audit trail for a run of the service; secrets never reach
// it.
package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"heyq/internal/domain/entity"
)

var sensitiveKeys = map[string]bool{
	"password":    true,
	"passcode":    true,
	"secret":      true,
	"token":       true,
	"card_number": true,
	"cvv":         true,
}

type record struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"run_id"`
	SessionID string         `json:"session_id"`
	Utterance string         `json:"utterance"`
	Intent    string         `json:"intent"`
	Entities  map[string]any `json:"entities,omitempty"`
	Status    string         `json:"status"`
}

// Recorder serializes writes; concurrent runs share one file.
type Recorder struct {
	mu   sync.Mutex
	path string
}

func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Recorder{path: path}, nil
}

func (r *Recorder) Record(runID, sessionID, utterance string, intent entity.IntentKind, entities map[string]any, status string) {
	rec := record{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RunID:     runID,
		SessionID: sessionID,
		Utterance: utterance,
		Intent:    string(intent),
		Entities:  Redact(entities),
		Status:    status,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(append(line, '\n'))
}

// SaveScreenshot stores failure evidence next to the trace file and returns
// the written path.
func (r *Recorder) SaveScreenshot(runID string, data []byte) (string, error) {
	dir := filepath.Join(filepath.Dir(r.path), "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, runID+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Redact replaces values under sensitive keys and any value that looks like
// a credential assignment. Returns a copy, never mutates the input.
func Redact(entities map[string]any) map[string]any {
	if len(entities) == 0 {
		return nil
	}
	out := make(map[string]any, len(entities))
	for k, v := range entities {
		if sensitiveKeys[strings.ToLower(k)] {
			out[k] = entity.Redacted
			continue
		}
		if s, ok := v.(string); ok && looksSecret(s) {
			out[k] = entity.Redacted
			continue
		}
		out[k] = v
	}
	return out
}

func looksSecret(s string) bool {
	lower := strings.ToLower(s)
	for k := range sensitiveKeys {
		if strings.Contains(lower, k+"=") || strings.Contains(lower, k+":") {
			return true
		}
	}
	return false
}
