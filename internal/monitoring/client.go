package monitoring

import (
	"context"

	"github.com/bayneri/bunk/internal/planner"
)

type Client interface {
	EnsureMetricDescriptors(ctx context.Context, req EnsureDescriptorsRequest) error
	WriteProjection(ctx context.Context, req WriteProjectionRequest) error
	ApplyDashboard(ctx context.Context, req ApplyDashboardRequest) error
	DeleteManagedDashboards(ctx context.Context, req DeleteRequest) error
}

type EnsureDescriptorsRequest struct {
	Project string
	Metrics []planner.MetricPlan
}

type WriteProjectionRequest struct {
	Project string
	Plan    planner.Plan
}

type ApplyDashboardRequest struct {
	Project string
	Plan    planner.Plan
}

type DeleteRequest struct {
	Project string
	Labels  map[string]string
}
