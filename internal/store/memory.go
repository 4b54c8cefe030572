package store

import (
	"sync"
	"time"

	"github.com/AngelCh415/marketing-etl/internal/models"
	"github.com/AngelCh415/marketing-etl/internal/pipeline"
)

type Granularity string

const (
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly"
)

// Snapshot is the output of one completed run.
type Snapshot struct {
	RunID      string             `json:"run_id"`
	FinishedAt time.Time          `json:"finished_at"`
	Daily      []models.ReportRow `json:"-"`
	Weekly     []models.ReportRow `json:"-"`
	Report     pipeline.RunReport `json:"report"`
}

// MemoryStore holds the reports of the latest successful run.
type MemoryStore struct {
	mu   sync.RWMutex
	last *Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &snap
}

func (s *MemoryStore) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

// Query returns the rows of g whose date lies in [from, to] and that pass f.
// A zero bound is open; rows without a date only match when both bounds are
// open. The stored order is kept.
func (s *MemoryStore) Query(g Granularity, from, to time.Time, f func(models.ReportRow) bool) []models.ReportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	rows := s.last.Daily
	if g == Weekly {
		rows = s.last.Weekly
	}
	var out []models.ReportRow
	for _, r := range rows {
		if !r.HasDate() && (!from.IsZero() || !to.IsZero()) {
			continue
		}
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		if f == nil || f(r) {
			out = append(out, r)
		}
	}
	return out
}
