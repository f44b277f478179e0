// Package publish ships finished edge lists to object storage and to the
// edge list database.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-pdbgraph/pkg/contact"
	"github.com/dd0wney/cluso-pdbgraph/pkg/logging"
	"github.com/dd0wney/cluso-pdbgraph/pkg/metrics"
)

var (
	ErrEdgelistExists   = errors.New("edge list already exists")
	ErrEdgelistNotFound = errors.New("edge list not found")
	ErrInvalidArtifact  = errors.New("invalid artifact")
)

// Artifact is one finished edge list and the key it is stored under.
type Artifact struct {
	PDBRef         string
	Type           contact.Type
	HydrogenStatus string
	Scaling        float32
	Path           string // local file holding the serialised list
	Compressed     bool
	Edges          []contact.Edge
}

func (a *Artifact) validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil", ErrInvalidArtifact)
	}
	if a.PDBRef == "" {
		return fmt.Errorf("%w: empty pdb reference", ErrInvalidArtifact)
	}
	if a.Type != contact.Atomic && a.Type != contact.Residue {
		return fmt.Errorf("%w: edge list type %q", ErrInvalidArtifact, a.Type)
	}
	if a.HydrogenStatus == "" {
		return fmt.Errorf("%w: empty hydrogen status", ErrInvalidArtifact)
	}
	if err := contact.ValidateScale(a.Scaling); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return nil
}

// Publisher delivers an artifact somewhere.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, a *Artifact) error
}

// All runs every publisher in order and returns the joined errors. A failing
// publisher does not stop the rest.
func All(ctx context.Context, a *Artifact, reg *metrics.Registry, logger logging.Logger, pubs ...Publisher) error {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}

	var errs []error
	for _, p := range pubs {
		start := time.Now()
		err := p.Publish(ctx, a)
		reg.RecordPublish(p.Name(), err, time.Since(start))

		if err != nil {
			logger.Error("publish failed",
				logging.String("target", p.Name()),
				logging.String("pdbref", a.PDBRef),
				logging.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		logger.Info("published edge list",
			logging.String("target", p.Name()),
			logging.String("pdbref", a.PDBRef),
			logging.Latency(time.Since(start)),
		)
	}
	return errors.Join(errs...)
}
