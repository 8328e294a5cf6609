package engine

import (
	"context"
	"fmt"

	"github.com/jseaddons/sleevecut/internal/dedupe"
	"github.com/jseaddons/sleevecut/internal/frame"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/jseaddons/sleevecut/internal/prefilter"
)

// Cluster performs the batch merge pass over existing openings: maximal
// groups of individual openings within the edge-to-edge tolerance are
// replaced by single rectangular openings. Re-running against its own
// output finds nothing further to merge.
func (e *Engine) Cluster(ctx context.Context) (model.Summary, error) {
	var summary model.Summary

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	region, err := e.geometry.Region()
	if err != nil {
		return summary, fmt.Errorf("engine: resolving region of interest: %w", err)
	}
	existing, err := e.openings.Openings(region)
	if err != nil {
		return summary, fmt.Errorf("engine: reading existing openings: %w", err)
	}
	existing = prefilter.FilterOpenings(existing, region)

	clusters := dedupe.BuildClusters(existing, e.settings.ClusterTolerance)
	e.diag.Trace(subsystem, "clustering complete",
		"openings", len(existing), "clusters", len(clusters))
	if len(clusters) == 0 {
		return summary, nil
	}

	hosts, err := e.hostIndex()
	if err != nil {
		// The sanity check is advisory; clustering proceeds without it.
		e.diag.Warn(subsystem, "host geometry unavailable for envelope check", "err", err.Error())
		hosts = nil
	}

	plans, suppressed := dedupe.PlanReplacements(clusters, existing, hosts, e.settings, e.diag)
	for _, o := range suppressed {
		summary.Add(o)
	}

	var batch Batch
	for _, p := range plans {
		batch.Creates = append(batch.Creates, p.Candidate)
		batch.Removals = append(batch.Removals, p.Removals...)
	}
	e.commit(batch, &summary)

	e.diag.Trace(subsystem, "cluster pass complete", "summary", summary.String())
	return summary, nil
}

// hostIndex resolves all hosts into the common frame, keyed by ID.
func (e *Engine) hostIndex() (map[string]model.StructuralHost, error) {
	docs, err := e.geometry.Documents()
	if err != nil {
		return nil, err
	}
	resolver, err := frame.NewResolver(docs)
	if err != nil {
		return nil, err
	}
	_, hosts, err := e.collectResolved(docs, resolver)
	if err != nil {
		return nil, err
	}
	index := make(map[string]model.StructuralHost, len(hosts))
	for _, h := range hosts {
		index[h.ID] = h
	}
	return index, nil
}
