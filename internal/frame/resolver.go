// Package frame resolves cross-document coordinate transforms into the
// common (host document) frame.
//
// The one rule this package exists to enforce: geometry is transformed into
// the common frame exactly once, on the way in. Every point a downstream
// computation produces from frame-resolved inputs is already a common-frame
// point and must never have a link transform applied to it again. A doubly
// transformed point is displaced by the full magnitude of the link offset,
// typically tens of thousands of mm, which is how that defect class is
// recognized in tests.
package frame

import (
	"fmt"

	"github.com/jseaddons/sleevecut/internal/model"
)

// Resolver maps document identities to their frame-to-common transforms.
// Built once per invocation from the document set and treated as read-only.
type Resolver struct {
	hostDocID string
	links     map[string]model.Transform
}

// NewResolver builds a resolver from the document set. Exactly one document
// must be marked as the host document; its transform is forced to identity
// regardless of what the snapshot carries.
func NewResolver(docs []model.Document) (*Resolver, error) {
	r := &Resolver{links: make(map[string]model.Transform, len(docs))}
	for _, d := range docs {
		if d.IsHostDoc {
			if r.hostDocID != "" {
				return nil, fmt.Errorf("frame: two host documents (%q and %q)", r.hostDocID, d.ID)
			}
			r.hostDocID = d.ID
			r.links[d.ID] = model.IdentityTransform()
			continue
		}
		r.links[d.ID] = d.Link
	}
	if r.hostDocID == "" {
		return nil, fmt.Errorf("frame: no host document in set of %d", len(docs))
	}
	return r, nil
}

// HostDocID returns the identity of the common-frame document.
func (r *Resolver) HostDocID() string { return r.hostDocID }

// ToCommon returns the transform taking docID's local frame into the
// common frame. Elements with an empty document identity are treated as
// already being in the common frame.
func (r *Resolver) ToCommon(docID string) (model.Transform, error) {
	if docID == "" || docID == r.hostDocID {
		return model.IdentityTransform(), nil
	}
	t, ok := r.links[docID]
	if !ok {
		return model.Transform{}, fmt.Errorf("frame: unknown document %q", docID)
	}
	return t, nil
}

// ResolveRun returns a copy of the run with its centerline in the common
// frame. The copy's DocID is cleared so a second resolution is a no-op.
func (r *Resolver) ResolveRun(run model.LinearRun) (model.LinearRun, error) {
	t, err := r.ToCommon(run.DocID)
	if err != nil {
		return model.LinearRun{}, err
	}
	out := run.Transformed(t)
	out.DocID = ""
	return out, nil
}

// ResolveHost returns a copy of the host with all geometry in the common
// frame. The copy's DocID is cleared so a second resolution is a no-op.
func (r *Resolver) ResolveHost(host model.StructuralHost) (model.StructuralHost, error) {
	t, err := r.ToCommon(host.DocID)
	if err != nil {
		return model.StructuralHost{}, err
	}
	out := host.Transformed(t)
	out.DocID = ""
	return out, nil
}
