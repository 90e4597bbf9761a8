// Package workflows holds the Temporal workflows for the ration service.
package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
)

const (
	// TaskQueue is the Temporal task queue for ration workflows.
	TaskQueue = "ration"

	// PlannedGenerationWorkflowID keys the recurring planned-generation
	// workflow so repeated starts are deduplicated by Temporal.
	PlannedGenerationWorkflowID = "ration-planned-generation"

	// PlannedGenerationCron runs every Friday at 04:00 UTC, generating the
	// plan for the following week before the weekend supply run.
	PlannedGenerationCron = "0 4 * * 5"
)

// PlannedGenerationResult reports one planned-generation run.
type PlannedGenerationResult struct {
	Week     int      `json:"week"`
	Year     int      `json:"year"`
	Created  int      `json:"created"`
	Warnings []string `json:"warnings"`
}

// Activities bundles the activity implementations behind the ration workflows.
type Activities struct {
	svc *appsvcs.Services
}

// NewActivities wires workflow activities to the application services.
func NewActivities(svc *appsvcs.Services) *Activities {
	return &Activities{svc: svc}
}

// GeneratePlanned creates planned withdrawal records for one ISO week.
// Generation skips existing (date, unit, product) keys, so retries are safe.
func (a *Activities) GeneratePlanned(ctx context.Context, week, year int) (*PlannedGenerationResult, error) {
	created, warnings, err := a.svc.Reconciler.GeneratePlanned(ctx, week, year, false)
	if err != nil {
		return nil, err
	}
	return &PlannedGenerationResult{
		Week:     week,
		Year:     year,
		Created:  created,
		Warnings: warnings,
	}, nil
}

// PlannedGenerationWorkflow generates the planned withdrawals for the ISO
// week after the one the workflow runs in.
func PlannedGenerationWorkflow(ctx workflow.Context) (*PlannedGenerationResult, error) {
	year, week := workflow.Now(ctx).AddDate(0, 0, 7).ISOWeek()

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	})

	var a *Activities
	var result PlannedGenerationResult
	if err := workflow.ExecuteActivity(ctx, a.GeneratePlanned, week, year).Get(ctx, &result); err != nil {
		return nil, err
	}

	workflow.GetLogger(ctx).Info("planned generation complete",
		"week", result.Week, "year", result.Year, "created", result.Created)
	return &result, nil
}
