// Package fill produces field values for a template run. Three provider
// variants exist: a synchronous mock, an external shell command, and an
// agent invocation. The scheduler holds a Runner and does not care which.
package fill

import (
	"context"

	"github.com/jhytabest/plashboard/internal/models"
)

// Runner is a pluggable source of field values.
type Runner interface {
	// Name identifies the provider in logs and parse errors.
	Name() string

	// Run produces a fill response for the given context.
	Run(ctx context.Context, fc models.FillContext) (*models.FillResponse, error)
}
