// Package engine orchestrates one full placement invocation: prefilter,
// intersection solving, placement derivation, sizing, duplicate
// suppression, and the final placement-sink commit.
//
// The engine is single-threaded and synchronous. Every invocation works
// over a fully materialized snapshot of model state fetched up front;
// nothing is cached across invocations. Failures are isolated per
// run/host pair: one bad candidate never aborts the rest, and the result
// is always a complete summary.
package engine

import (
	"context"
	"fmt"

	"github.com/jseaddons/sleevecut/internal/dedupe"
	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/frame"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/jseaddons/sleevecut/internal/placement"
	"github.com/jseaddons/sleevecut/internal/prefilter"
	"github.com/jseaddons/sleevecut/internal/solver"
)

const subsystem = "engine"

// Engine wires the collaborators for one or more invocations. All
// collaborators are constructor-injected; none are reached through
// ambient state.
type Engine struct {
	geometry   GeometryProvider
	openings   OpeningReader
	sink       PlacementSink
	insulation InsulationOracle
	diag       diag.Sink
	settings   model.Settings
}

// New builds an engine. Every collaborator is required; a missing one is
// an invocation-level precondition failure, so it fails fast here.
func New(geometry GeometryProvider, openings OpeningReader, sink PlacementSink, insulation InsulationOracle, diagSink diag.Sink, settings model.Settings) (*Engine, error) {
	if geometry == nil {
		return nil, fmt.Errorf("engine: geometry provider is required")
	}
	if openings == nil {
		return nil, fmt.Errorf("engine: existing-opening reader is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("engine: placement sink is required")
	}
	if insulation == nil {
		insulation = MapOracle(nil)
	}
	if diagSink == nil {
		diagSink = diag.Nop{}
	}
	return &Engine{
		geometry:   geometry,
		openings:   openings,
		sink:       sink,
		insulation: insulation,
		diag:       diagSink,
		settings:   settings,
	}, nil
}

// Run performs one full placement invocation and returns the summary.
// Cancellation is coarse-grained: a canceled context aborts between
// pairs, returning the outcomes accumulated so far alongside ctx.Err().
func (e *Engine) Run(ctx context.Context) (model.Summary, error) {
	var summary model.Summary

	docs, err := e.geometry.Documents()
	if err != nil {
		return summary, fmt.Errorf("engine: reading documents: %w", err)
	}
	resolver, err := frame.NewResolver(docs)
	if err != nil {
		return summary, fmt.Errorf("engine: %w", err)
	}

	region, err := e.geometry.Region()
	if err != nil {
		return summary, fmt.Errorf("engine: resolving region of interest: %w", err)
	}

	runs, hosts, err := e.collectResolved(docs, resolver)
	if err != nil {
		return summary, err
	}

	filtered := prefilter.Filter(runs, hosts, region, e.diag)
	e.diag.Trace(subsystem, "prefilter complete",
		"runs", len(filtered.Runs), "hosts", len(filtered.Hosts), "pairs", len(filtered.Pairs))

	existing, err := e.openings.Openings(region)
	if err != nil {
		return summary, fmt.Errorf("engine: reading existing openings: %w", err)
	}
	existing = prefilter.FilterOpenings(existing, region)

	calc := placement.NewCalculator(e.settings, e.diag)
	var candidates []model.PlacementCandidate

	for _, pair := range filtered.Pairs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		run := filtered.Runs[pair.Run]
		host := filtered.Hosts[pair.Host]
		outcome, candidate := e.processPair(calc, run, host)
		if candidate != nil {
			candidates = append(candidates, *candidate)
			continue
		}
		summary.Add(outcome)
	}

	kept, suppressed := dedupe.Suppress(candidates, existing, e.settings, e.diag)
	for _, o := range suppressed {
		summary.Add(o)
	}

	e.commit(Batch{Creates: kept}, &summary)

	e.diag.Trace(subsystem, "invocation complete", "summary", summary.String())
	return summary, nil
}

// collectResolved reads every document's runs and hosts and resolves them
// into the common frame exactly once.
func (e *Engine) collectResolved(docs []model.Document, resolver *frame.Resolver) ([]model.LinearRun, []model.StructuralHost, error) {
	var runs []model.LinearRun
	var hosts []model.StructuralHost
	for _, doc := range docs {
		docRuns, err := e.geometry.Runs(doc.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: reading runs of %s: %w", doc.ID, err)
		}
		for _, r := range docRuns {
			if r.DocID == "" {
				r.DocID = doc.ID
			}
			resolved, err := resolver.ResolveRun(r)
			if err != nil {
				e.diag.Error(subsystem, "cannot frame-resolve run", "run", r.ID, "err", err.Error())
				continue
			}
			runs = append(runs, resolved)
		}

		docHosts, err := e.geometry.Hosts(doc.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: reading hosts of %s: %w", doc.ID, err)
		}
		for _, h := range docHosts {
			if h.DocID == "" {
				h.DocID = doc.ID
			}
			resolved, err := resolver.ResolveHost(h)
			if err != nil {
				e.diag.Error(subsystem, "cannot frame-resolve host", "host", h.ID, "err", err.Error())
				continue
			}
			hosts = append(hosts, resolved)
		}
	}
	return runs, hosts, nil
}

// processPair runs one run/host pair through solve and derive. It returns
// either a candidate or the outcome explaining why there is none.
func (e *Engine) processPair(calc *placement.Calculator, run model.LinearRun, host model.StructuralHost) (model.Outcome, *model.PlacementCandidate) {
	base := model.Outcome{RunID: run.ID, HostID: host.ID}

	if host.Kind == model.HostUnknown {
		e.diag.Trace(subsystem, "skipping unsupported host kind", "host", host.ID)
		base.Reason = model.ReasonUnsupportedHostKind
		return base, nil
	}
	if !solver.HasUsableGeometry(host, e.settings) {
		e.diag.Trace(subsystem, "skipping host without usable geometry", "host", host.ID)
		base.Reason = model.ReasonNoUsableGeometry
		return base, nil
	}

	x := solver.Solve(run, host)
	if x.IsEmpty() {
		base.Reason = model.ReasonNoIntersection
		return base, nil
	}

	candidate, err := calc.Derive(run, host, x, e.insulation.Insulated(run.ID))
	if err != nil {
		if reason, ok := placement.ReasonOf(err); ok {
			base.Reason = reason
		} else {
			base.Reason = model.ReasonImplausibleDimension
		}
		base.Detail = err.Error()
		if base.Reason == model.ReasonMissingDepthParameter {
			e.diag.Error(subsystem, "candidate failed", "run", run.ID, "host", host.ID, "err", err.Error())
		}
		return base, nil
	}
	return base, &candidate
}

// commit pushes the batch to the placement sink and folds per-item
// results into the summary. Item failures never abort the batch.
func (e *Engine) commit(batch Batch, summary *model.Summary) {
	if len(batch.Creates) == 0 && len(batch.Removals) == 0 {
		return
	}
	result := e.sink.Commit(batch)
	for i, c := range batch.Creates {
		o := model.Outcome{RunID: c.RunID, HostID: c.HostID}
		cand := c
		o.Candidate = &cand
		if err := result.CreateErrors[i]; err != nil {
			o.Reason = model.ReasonSinkFailure
			o.Detail = err.Error()
			e.diag.Error(subsystem, "placement sink rejected create",
				"run", c.RunID, "host", c.HostID, "err", err.Error())
		} else {
			o.Reason = model.ReasonPlaced
		}
		summary.Add(o)
	}
	for i, r := range batch.Removals {
		if err := result.RemoveErrors[i]; err != nil {
			summary.Add(model.Outcome{
				HostID: r.HostID,
				Reason: model.ReasonSinkFailure,
				Detail: fmt.Sprintf("removing %s: %s", r.ID, err.Error()),
			})
			e.diag.Error(subsystem, "placement sink rejected removal", "opening", r.ID, "err", err.Error())
		}
	}
}
