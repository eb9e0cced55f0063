package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bayneri/bunk/internal/planner"
)

// Publish hands the projection to the chart sink: descriptors first, then
// the points, then the dashboard that draws them.
func Publish(ctx context.Context, client Client, plan planner.Plan) error {
	if strings.TrimSpace(plan.Project) == "" {
		return errors.New("project is required")
	}
	if err := client.EnsureMetricDescriptors(ctx, EnsureDescriptorsRequest{
		Project: plan.Project,
		Metrics: plan.Metrics,
	}); err != nil {
		return fmt.Errorf("ensure metric descriptors: %w", err)
	}
	if err := client.WriteProjection(ctx, WriteProjectionRequest{
		Project: plan.Project,
		Plan:    plan,
	}); err != nil {
		return fmt.Errorf("write projection: %w", err)
	}
	if err := client.ApplyDashboard(ctx, ApplyDashboardRequest{
		Project: plan.Project,
		Plan:    plan,
	}); err != nil {
		return fmt.Errorf("apply dashboard: %w", err)
	}
	return nil
}

func DeletePlan(ctx context.Context, client Client, plan planner.Plan) error {
	if strings.TrimSpace(plan.Project) == "" {
		return errors.New("project is required")
	}
	return client.DeleteManagedDashboards(ctx, DeleteRequest{
		Project: plan.Project,
		Labels: map[string]string{
			planner.ManagedByLabel: planner.ManagedByValue,
			"course":               plan.CourseID,
		},
	})
}
