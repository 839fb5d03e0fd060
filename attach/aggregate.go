package attach

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/clarigo/clarigo/logger"
)

// Aggregator orchestrates resolution and matching over all units of a
// step and folds the outcomes into per-owner bundles.
type Aggregator struct {
	resolver *Resolver
	reporter StageReporter
	workers  int
}

// NewAggregator creates an aggregator. workers bounds the number of
// concurrent ownership resolutions; matching itself is pure and cheap.
func NewAggregator(resolver *Resolver, reporter StageReporter, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Aggregator{resolver: resolver, reporter: reporter, workers: workers}
}

// resolveOutcome collects one unit's resolution for the fold pass.
type resolveOutcome struct {
	resolution Resolution
	err        error
}

// Aggregate resolves and matches every unit, then folds contributing
// matches into bundles keyed by owner.
//
// Resolution fans out across a bounded errgroup because per-unit lookups
// are independent; outcomes land in a per-unit slice so the fold below
// runs single-threaded in step order, keeping bundle contents and error
// ordering deterministic regardless of lookup completion order. A
// resolution failure never aborts the run: it is recorded and the unit is
// excluded from bundling.
//
// When the step archives produced no file groups at all, units are not
// reported as unmatched - there was nothing to match against and the run
// counts as nothing-to-do.
func (a *Aggregator) Aggregate(ctx context.Context, units []UnitOfWork, groups *GroupSet) ([]Bundle, []Match, *ProcessingResult) {
	result := &ProcessingResult{
		RunID:           uuid.NewString(),
		UnitsConsidered: len(units),
		GroupsTotal:     groups.Len(),
	}

	outcomes := make([]resolveOutcome, len(units))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.workers)
	for i, unit := range units {
		i, unit := i, unit
		eg.Go(func() error {
			resolution, err := a.resolver.Resolve(egCtx, unit)
			outcomes[i] = resolveOutcome{resolution: resolution, err: err}
			return nil // per-unit failures are data, not group failure
		})
	}
	// Workers only report through the outcomes slice
	_ = eg.Wait()

	identifiers := groups.Identifiers()
	matches := make([]Match, 0, len(units))

	bundleIndex := make(map[string]int) // owner LIMS id -> index in bundles
	var bundles []Bundle

	for i, unit := range units {
		match := Match{Unit: unit}
		outcome := outcomes[i]

		switch {
		case outcome.err != nil:
			match.ResolveErr = outcome.err
			result.AddError("resolution failed for %s: %v", unit.Name, outcome.err)
			a.reporter.Failure("resolve", outcome.err)
		case outcome.resolution.Owner != nil:
			match.Owner = outcome.resolution.Owner
		default:
			match.NotFoundReason = outcome.resolution.NotFoundReason
			result.AddError("no owner for %s: %s", unit.Name, outcome.resolution.NotFoundReason)
		}

		if id, ok := MatchName(unit.Name, identifiers); ok {
			group, _ := groups.Get(id)
			match.Group = group
			a.reporter.Matched(unit.Name, group.ID, len(group.Files))
		} else if groups.Len() > 0 {
			result.AddError("no file group matches %s", unit.Name)
			a.reporter.Unmatched(unit.Name)
		}

		matches = append(matches, match)

		if !match.Contributes() {
			logger.Debugw("unit excluded from bundling",
				"unit", unit.Name,
				"has_group", match.Group != nil,
				"has_owner", match.Owner != nil)
			continue
		}

		result.GroupsMatched++
		idx, ok := bundleIndex[match.Owner.LIMSID]
		if !ok {
			idx = len(bundles)
			bundleIndex[match.Owner.LIMSID] = idx
			bundles = append(bundles, Bundle{Owner: *match.Owner})
		}
		bundles[idx].Files = append(bundles[idx].Files, match.Group.Files...)
		bundles[idx].Units = append(bundles[idx].Units, unit.Name)
	}

	logger.Infow("aggregation complete",
		"run_id", result.RunID,
		"units", result.UnitsConsidered,
		"matched", result.GroupsMatched,
		"bundles", len(bundles))

	return bundles, matches, result
}
