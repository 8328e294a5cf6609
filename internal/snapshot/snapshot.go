// Package snapshot persists a fully materialized model state (documents,
// runs, hosts, existing openings, region of interest) as a single JSON
// file, and adapts it to the engine's collaborator interfaces. It is the
// offline stand-in for the host application's geometry provider, opening
// reader, and placement sink.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jseaddons/sleevecut/internal/engine"
	"github.com/jseaddons/sleevecut/internal/model"
)

// Snapshot is one model state: every entity the engine reads, plus the
// openings it writes back.
type Snapshot struct {
	Version   string                  `json:"version"`
	Name      string                  `json:"name"`
	CreatedAt string                  `json:"created_at,omitempty"`
	Documents []model.Document        `json:"documents"`
	Runs      []model.LinearRun       `json:"runs"`
	Hosts     []model.StructuralHost  `json:"hosts"`
	Openings  []model.ExistingOpening `json:"openings,omitempty"`
	Region    *model.BoundingBox      `json:"region,omitempty"`
	Insulated []string                `json:"insulated,omitempty"` // run IDs carrying insulation
	Settings  *model.Settings         `json:"settings,omitempty"`
}

const currentVersion = "1.0.0"

// New creates an empty snapshot with a single host document.
func New(name string) *Snapshot {
	return &Snapshot{
		Version:   currentVersion,
		Name:      name,
		Documents: []model.Document{{ID: "host", Label: name, IsHostDoc: true}},
	}
}

// Load reads a snapshot from the given path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if s.Version == "" {
		return nil, fmt.Errorf("invalid snapshot file: missing version field")
	}
	if len(s.Documents) == 0 {
		return nil, fmt.Errorf("invalid snapshot file: no documents")
	}
	return &s, nil
}

// Save writes the snapshot to the given path, creating any missing parent
// directories and stamping the creation time.
func (s *Snapshot) Save(path string) error {
	if s.Version == "" {
		s.Version = currentVersion
	}
	s.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// EffectiveSettings returns the snapshot's embedded settings, or the
// engine defaults when it carries none.
func (s *Snapshot) EffectiveSettings() model.Settings {
	if s.Settings != nil {
		return *s.Settings
	}
	return model.DefaultSettings()
}

// Oracle returns the insulation oracle for this snapshot.
func (s *Snapshot) Oracle() engine.MapOracle {
	m := make(engine.MapOracle, len(s.Insulated))
	for _, id := range s.Insulated {
		m[id] = true
	}
	return m
}

// Provider adapts a snapshot to the engine's GeometryProvider,
// OpeningReader, and PlacementSink interfaces. Sink writes mutate the
// snapshot's opening list, so a saved snapshot carries its placements.
type Provider struct {
	mu sync.Mutex
	s  *Snapshot
}

// NewProvider wraps a snapshot.
func NewProvider(s *Snapshot) *Provider {
	return &Provider{s: s}
}

func (p *Provider) Documents() ([]model.Document, error) {
	return p.s.Documents, nil
}

func (p *Provider) Runs(docID string) ([]model.LinearRun, error) {
	var out []model.LinearRun
	for _, r := range p.s.Runs {
		if ownerDoc(r.DocID, p.s) == docID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *Provider) Hosts(docID string) ([]model.StructuralHost, error) {
	var out []model.StructuralHost
	for _, h := range p.s.Hosts {
		if ownerDoc(h.DocID, p.s) == docID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (p *Provider) Region() (*model.BoundingBox, error) {
	return p.s.Region, nil
}

// Openings implements engine.OpeningReader.
func (p *Provider) Openings(region *model.BoundingBox) ([]model.ExistingOpening, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.ExistingOpening
	for _, o := range p.s.Openings {
		if region != nil && !region.Contains(o.Center) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// Commit implements engine.PlacementSink against the snapshot.
func (p *Provider) Commit(batch engine.Batch) engine.BatchResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := engine.BatchResult{
		CreateErrors: make([]error, len(batch.Creates)),
		RemoveErrors: make([]error, len(batch.Removals)),
	}

	for i, r := range batch.Removals {
		removed := false
		for j, o := range p.s.Openings {
			if o.ID == r.ID {
				p.s.Openings = append(p.s.Openings[:j], p.s.Openings[j+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			result.RemoveErrors[i] = fmt.Errorf("opening %s not found", r.ID)
		}
	}

	for _, c := range batch.Creates {
		id := uuid.New().String()[:8]
		p.s.Openings = append(p.s.Openings, model.ExistingOpening{
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

// ownerDoc maps an element's document field to the owning document ID;
// elements without one belong to the host document.
func ownerDoc(docID string, s *Snapshot) string {
	if docID != "" {
		return docID
	}
	for _, d := range s.Documents {
		if d.IsHostDoc {
			return d.ID
		}
	}
	return ""
}
