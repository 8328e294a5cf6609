package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jseaddons/sleevecut/internal/model"
)

// GeometryProvider hands the engine everything it reads from the model:
// the document set with link transforms, and each document's runs and
// hosts in that document's local frame.
type GeometryProvider interface {
	Documents() ([]model.Document, error)
	Runs(docID string) ([]model.LinearRun, error)
	Hosts(docID string) ([]model.StructuralHost, error)
	// Region returns the common-frame region of interest, nil meaning no
	// restriction.
	Region() (*model.BoundingBox, error)
}

// OpeningReader returns previously placed openings, optionally scoped to
// a region.
type OpeningReader interface {
	Openings(region *model.BoundingBox) ([]model.ExistingOpening, error)
}

// Batch is one atomic set of placement-sink requests.
type Batch struct {
	Creates  []model.PlacementCandidate
	Removals []model.ExistingOpening
}

// BatchResult reports per-item success. CreateErrors and RemoveErrors are
// parallel to the batch slices; a nil entry is a success.
type BatchResult struct {
	CreatedIDs   []string
	CreateErrors []error
	RemoveErrors []error
}

// PlacementSink commits a batch of create/remove requests. Item failures
// are reported per item; the sink never rolls back unrelated successes.
type PlacementSink interface {
	Commit(batch Batch) BatchResult
}

// InsulationOracle reports whether a run carries thermal or acoustic
// insulation, which halves the clearance allowance.
type InsulationOracle interface {
	Insulated(runID string) bool
}

// MapOracle is an InsulationOracle backed by a run-ID set.
type MapOracle map[string]bool

func (m MapOracle) Insulated(runID string) bool { return m[runID] }

// MemorySink is an in-memory placement sink. Committed openings are
// readable back through its OpeningReader side, which makes re-running a
// pipeline against its own output straightforward.
type MemorySink struct {
	mu       sync.Mutex
	openings []model.ExistingOpening

	// FailCreates marks run IDs whose create requests should be rejected,
	// for exercising per-item failure handling.
	FailCreates map[string]bool
}

// NewMemorySink starts with the given pre-existing openings.
func NewMemorySink(existing []model.ExistingOpening) *MemorySink {
	return &MemorySink{openings: append([]model.ExistingOpening(nil), existing...)}
}

// Openings implements OpeningReader over the committed state.
func (s *MemorySink) Openings(region *model.BoundingBox) ([]model.ExistingOpening, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ExistingOpening
	for _, o := range s.openings {
		if region != nil && !region.Contains(o.Center) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// Commit applies creates and removals, reporting per-item outcomes.
func (s *MemorySink) Commit(batch Batch) BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := BatchResult{
		CreateErrors: make([]error, len(batch.Creates)),
		RemoveErrors: make([]error, len(batch.Removals)),
	}

	for i, r := range batch.Removals {
		removed := false
		for j, o := range s.openings {
			if o.ID == r.ID {
				s.openings = append(s.openings[:j], s.openings[j+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			result.RemoveErrors[i] = fmt.Errorf("opening %s not found", r.ID)
		}
	}

	for i, c := range batch.Creates {
		if s.FailCreates[c.RunID] {
			result.CreateErrors[i] = fmt.Errorf("create rejected for run %s", c.RunID)
			continue
		}
		id := uuid.New().String()[:8]
		s.openings = append(s.openings, model.ExistingOpening{
			ID:          id,
			Kind:        c.Kind,
			HostID:      c.HostID,
			HostKind:    c.HostKind,
			Orientation: c.Orientation,
			Center:      c.Point,
			Box:         c.BoundingBox(),
			Width:       c.Width,
			Height:      c.Height,
			Depth:       c.Depth,
		})
		result.CreatedIDs = append(result.CreatedIDs, id)
	}
	return result
}

// All returns a copy of the committed openings.
func (s *MemorySink) All() []model.ExistingOpening {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ExistingOpening, len(s.openings))
	copy(out, s.openings)
	return out
}
