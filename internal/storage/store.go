// Package storage persists sampling runs: one metadata record and the
// per-(material, group) rows of each run.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/mgxs/internal/sample"
)

var ErrRunNotFound = errors.New("storage: run not found")

type RunMetadata struct {
	ID        string             `json:"id"`
	Library   string             `json:"library"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Particles int                `json:"particles"`
	Workers   int                `json:"workers"`
	Duration  float64            `json:"duration_seconds"`
	Materials []string           `json:"materials"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewRunMetadata describes a finished sampling run.
func NewRunMetadata(library string, res *sample.Result) RunMetadata {
	meta := RunMetadata{
		Library:   library,
		Seed:      res.Seed,
		Particles: res.Particles,
		Workers:   res.Workers,
		Duration:  res.Duration.Seconds(),
		Materials: append([]string(nil), res.Materials...),
		Metrics:   map[string]float64{},
	}
	if s := res.Duration.Seconds(); s > 0 {
		meta.Metrics["lookups_per_second"] = float64(res.Particles) / s
	}
	return meta
}

type Store interface {
	Init() error
	// Save stores a run and returns its ID. A missing ID or timestamp is filled in.
	Save(meta RunMetadata, rows []sample.Row) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadRows(runID string) ([]sample.Row, error)
	Close() error
}

// Open returns the store for driver ("fs" or "sqlite") rooted at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "fs", "":
		return New(path), nil
	case "sqlite":
		return NewSQLite(path)
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

func stamp(meta *RunMetadata) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}
}
