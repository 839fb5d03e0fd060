package attach

import (
	"context"

	"github.com/clarigo/clarigo/errors"
	"github.com/clarigo/clarigo/lims"
	"github.com/clarigo/clarigo/logger"
)

// OwnershipAPI is the slice of the LIMS client the resolver needs.
type OwnershipAPI interface {
	Sample(ctx context.Context, sampleURI string) (*lims.Sample, error)
	Project(ctx context.Context, projectURI string) (*lims.Project, error)
}

// Resolution is the outcome of walking one unit's ownership chain.
// Exactly one of Owner or NotFoundReason is set.
type Resolution struct {
	Owner          *Owner
	NotFoundReason string
}

// Resolver walks the artifact -> sample -> project chain.
type Resolver struct {
	api OwnershipAPI
}

// NewResolver creates a resolver over the given API.
func NewResolver(api OwnershipAPI) *Resolver {
	return &Resolver{api: api}
}

// Resolve determines the owning project for a unit of work. A chain that
// ends cleanly without a project (artifact without sample, sample without
// project, or a dangling reference the server reports as not found)
// yields a NotFound resolution. Any other lookup failure - auth, network,
// server error - returns an error wrapping ErrResolution so callers can
// tell "nothing to resolve" from "resolution failed".
//
// Resolution performs no mutation and is safe to repeat or run
// concurrently across units.
func (r *Resolver) Resolve(ctx context.Context, unit UnitOfWork) (Resolution, error) {
	if unit.SampleURI == "" {
		logger.Debugw("unit has no sample reference", "unit", unit.Name, "limsid", unit.LIMSID)
		return Resolution{NotFoundReason: "no sample"}, nil
	}

	sample, err := r.api.Sample(ctx, unit.SampleURI)
	if err != nil {
		if errors.IsNotFound(err) {
			return Resolution{NotFoundReason: "sample record absent"}, nil
		}
		return Resolution{}, errors.Wrapf(errors.ErrResolution, "sample lookup for %s: %v", unit.Name, err)
	}

	if sample.ProjectURI == "" {
		logger.Debugw("sample has no project reference", "unit", unit.Name, "sample", sample.LIMSID)
		return Resolution{NotFoundReason: "no project"}, nil
	}

	project, err := r.api.Project(ctx, sample.ProjectURI)
	if err != nil {
		if errors.IsNotFound(err) {
			return Resolution{NotFoundReason: "project record absent"}, nil
		}
		return Resolution{}, errors.Wrapf(errors.ErrResolution, "project lookup for %s: %v", unit.Name, err)
	}

	return Resolution{Owner: &Owner{
		LIMSID:        project.LIMSID,
		URI:           project.URI,
		Name:          project.Name,
		ResearcherURI: project.ResearcherURI,
	}}, nil
}
