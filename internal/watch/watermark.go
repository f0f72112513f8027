package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Watermark persists the single "last processed" timestamp bounding
// incremental queries. It only ever moves forward.
type Watermark struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

type watermarkFile struct {
	LastCheck time.Time `json:"last_check"`
}

func OpenWatermark(path string) *Watermark {
	return &Watermark{
		path: path,
		now:  time.Now,
	}
}

// Load returns the persisted timestamp. On first run (no file yet) the
// current time is returned, so nothing published before the watcher
// existed is ever surfaced.
func (w *Watermark) Load() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, err := os.ReadFile(w.path)
	if os.IsNotExist(err) {
		return w.now().UTC(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read watermark: %w", err)
	}

	var data watermarkFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return time.Time{}, fmt.Errorf("parse watermark %s: %w", w.path, err)
	}
	return data.LastCheck.UTC(), nil
}

// Advance persists t as the new watermark. Moving backward is refused
// silently so the watermark stays monotonically non-decreasing no
// matter what the caller computed.
func (w *Watermark) Advance(t time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if raw, err := os.ReadFile(w.path); err == nil {
		var current watermarkFile
		if err := json.Unmarshal(raw, &current); err == nil && t.Before(current.LastCheck) {
			return nil
		}
	}

	raw, err := json.MarshalIndent(watermarkFile{LastCheck: t.UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode watermark: %w", err)
	}
	return atomicWrite(w.path, raw)
}
