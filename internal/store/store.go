// Package store persists material estimates and service templates. Two
// backends implement the same interface: SQLite (default, single binary
// deployments) and Postgres (shared deployments).
package store

import (
	"context"

	"github.com/fixhub/estimator-cli/internal/model"
)

// Store defines the persistence interface for the estimation pipeline.
// Reads return (nil, nil) when the document is absent; absence is an
// expected outcome, not an error. Upserts replace the whole document keyed
// by job_id or service_type and are atomic per call.
type Store interface {
	// Estimates (one live estimate per job id)
	GetEstimate(ctx context.Context, jobID string) (*model.MaterialEstimate, error)
	UpsertEstimate(ctx context.Context, est *model.MaterialEstimate) (*model.MaterialEstimate, error)

	// Templates (keyed by service type)
	GetTemplate(ctx context.Context, serviceType string) (*model.MaterialTemplate, error)
	ListTemplates(ctx context.Context) ([]model.MaterialTemplate, error)
	UpsertTemplate(ctx context.Context, tpl *model.MaterialTemplate) error
	IncrementTemplateUsage(ctx context.Context, serviceType string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
