package monitoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	dashboard "cloud.google.com/go/monitoring/dashboard/apiv1"
	"cloud.google.com/go/monitoring/dashboard/apiv1/dashboardpb"
	"github.com/bayneri/bunk/internal/planner"
	"google.golang.org/api/iterator"
	labelpb "google.golang.org/genproto/googleapis/api/label"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	monitoredres "google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const resourceType = "global"

type GCPClient struct {
	metricClient *monitoring.MetricClient
	dashClient   *dashboard.DashboardsClient
}

func NewGCPClient(ctx context.Context) (*GCPClient, error) {
	metricClient, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create metric client: %w", err)
	}
	dashClient, err := dashboard.NewDashboardsClient(ctx)
	if err != nil {
		metricClient.Close()
		return nil, fmt.Errorf("create dashboards client: %w", err)
	}
	return &GCPClient{
		metricClient: metricClient,
		dashClient:   dashClient,
	}, nil
}

func (c *GCPClient) Close() error {
	var errs []string
	if err := c.metricClient.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.dashClient.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("close clients: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *GCPClient) EnsureMetricDescriptors(ctx context.Context, req EnsureDescriptorsRequest) error {
	for _, metric := range req.Metrics {
		desired := BuildMetricDescriptor(req.Project, metric)
		_, err := c.metricClient.GetMetricDescriptor(ctx, &monitoringpb.GetMetricDescriptorRequest{Name: desired.Name})
		if err == nil {
			continue
		}
		if status.Code(err) != codes.NotFound {
			return fmt.Errorf("get descriptor %s: %w", metric.Type, err)
		}
		if _, err := c.metricClient.CreateMetricDescriptor(ctx, &monitoringpb.CreateMetricDescriptorRequest{
			Name:             fmt.Sprintf("projects/%s", req.Project),
			MetricDescriptor: desired,
		}); err != nil {
			return fmt.Errorf("create descriptor %s: %w", metric.Type, err)
		}
	}
	return nil
}

func (c *GCPClient) WriteProjection(ctx context.Context, req WriteProjectionRequest) error {
	series := BuildTimeSeries(req.Plan)
	if len(series) == 0 {
		return nil
	}
	return c.metricClient.CreateTimeSeries(ctx, &monitoringpb.CreateTimeSeriesRequest{
		Name:       fmt.Sprintf("projects/%s", req.Project),
		TimeSeries: series,
	})
}

func (c *GCPClient) ApplyDashboard(ctx context.Context, req ApplyDashboardRequest) error {
	desired := BuildDashboard(req.Plan)

	existing, err := c.findDashboard(ctx, req.Project, desired.DisplayName)
	if err != nil {
		return err
	}
	if existing != nil {
		desired.Name = existing.Name
		desired.Etag = existing.Etag
		_, err = c.dashClient.UpdateDashboard(ctx, &dashboardpb.UpdateDashboardRequest{
			Dashboard: desired,
		})
		return err
	}

	_, err = c.dashClient.CreateDashboard(ctx, &dashboardpb.CreateDashboardRequest{
		Parent:    fmt.Sprintf("projects/%s", req.Project),
		Dashboard: desired,
	})
	return err
}

func (c *GCPClient) DeleteManagedDashboards(ctx context.Context, req DeleteRequest) error {
	iter := c.dashClient.ListDashboards(ctx, &dashboardpb.ListDashboardsRequest{Parent: fmt.Sprintf("projects/%s", req.Project)})
	for {
		d, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		if !hasManagedLabel(d.Labels, req.Labels) {
			continue
		}
		if err := c.dashClient.DeleteDashboard(ctx, &dashboardpb.DeleteDashboardRequest{Name: d.Name}); err != nil {
			return err
		}
	}
	return nil
}

func (c *GCPClient) findDashboard(ctx context.Context, project, displayName string) (*dashboardpb.Dashboard, error) {
	iter := c.dashClient.ListDashboards(ctx, &dashboardpb.ListDashboardsRequest{Parent: fmt.Sprintf("projects/%s", project)})
	for {
		d, err := iter.Next()
		if err == iterator.Done {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if d.DisplayName == displayName {
			return d, nil
		}
	}
}

func BuildMetricDescriptor(project string, metric planner.MetricPlan) *metricpb.MetricDescriptor {
	return &metricpb.MetricDescriptor{
		Name:        fmt.Sprintf("projects/%s/metricDescriptors/%s", project, metric.Type),
		Type:        metric.Type,
		MetricKind:  metricpb.MetricDescriptor_GAUGE,
		ValueType:   valueTypeFor(metric.ValueType),
		Unit:        metric.Unit,
		Description: metric.Description,
		DisplayName: metric.DisplayName,
		Labels: []*labelpb.LabelDescriptor{
			{Key: "course", ValueType: labelpb.LabelDescriptor_STRING, Description: "Course the attendance belongs to"},
			{Key: "student", ValueType: labelpb.LabelDescriptor_STRING, Description: "Student the attendance belongs to"},
		},
	}
}

// BuildTimeSeries emits one gauge point per metric that has a value; the
// needed and bunkable counts are mutually exclusive.
func BuildTimeSeries(plan planner.Plan) []*monitoringpb.TimeSeries {
	end := timestamppb.New(plan.GeneratedAt)
	var out []*monitoringpb.TimeSeries
	for _, metric := range plan.Metrics {
		if !metric.HasValue {
			continue
		}
		out = append(out, &monitoringpb.TimeSeries{
			Metric: &metricpb.Metric{
				Type:   metric.Type,
				Labels: copyLabels(plan.SeriesLabels),
			},
			Resource: &monitoredres.MonitoredResource{
				Type:   resourceType,
				Labels: map[string]string{"project_id": plan.Project},
			},
			MetricKind: metricpb.MetricDescriptor_GAUGE,
			ValueType:  valueTypeFor(metric.ValueType),
			Points: []*monitoringpb.Point{{
				Interval: &monitoringpb.TimeInterval{EndTime: end},
				Value:    typedValue(metric),
			}},
		})
	}
	return out
}

func BuildDashboard(plan planner.Plan) *dashboardpb.Dashboard {
	columns := int32(12)
	tiles := []*dashboardpb.MosaicLayout_Tile{
		tile(0, 0, columns, 2, dashboardIntro(plan)),
		tile(0, 2, columns/2, 4, attendanceGauge(plan)),
		tile(columns/2, 2, columns/2, 4, comparisonChart(plan)),
		tile(0, 6, columns/2, 3, countScorecard(plan, "needed_classes", "Classes needed")),
		tile(columns/2, 6, columns/2, 3, countScorecard(plan, "bunkable_classes", "Bunkable classes")),
	}
	return &dashboardpb.Dashboard{
		DisplayName: plan.Dashboard.DisplayName,
		Labels:      plan.Dashboard.Labels,
		Layout: &dashboardpb.Dashboard_MosaicLayout{
			MosaicLayout: &dashboardpb.MosaicLayout{
				Columns: columns,
				Tiles:   tiles,
			},
		},
	}
}

func BuildDashboardJSON(plan planner.Plan) (string, error) {
	data, err := protojson.Marshal(BuildDashboard(plan))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func tile(x, y, width, height int32, widget *dashboardpb.Widget) *dashboardpb.MosaicLayout_Tile {
	return &dashboardpb.MosaicLayout_Tile{
		XPos:   x,
		YPos:   y,
		Width:  width,
		Height: height,
		Widget: widget,
	}
}

func dashboardIntro(plan planner.Plan) *dashboardpb.Widget {
	content := fmt.Sprintf("# %s\nCurrent attendance against the %.2f%% requirement. Points are written by `bunk publish`.", plan.Dashboard.DisplayName, plan.Required)
	return &dashboardpb.Widget{
		Content: &dashboardpb.Widget_Text{
			Text: &dashboardpb.Text{
				Content: content,
				Format:  dashboardpb.Text_MARKDOWN,
			},
		},
	}
}

func attendanceGauge(plan planner.Plan) *dashboardpb.Widget {
	return &dashboardpb.Widget{
		Title: "Current attendance",
		Content: &dashboardpb.Widget_Scorecard{
			Scorecard: &dashboardpb.Scorecard{
				TimeSeriesQuery: latestQuery(plan, "current_percentage"),
				DataView: &dashboardpb.Scorecard_GaugeView_{
					GaugeView: &dashboardpb.Scorecard_GaugeView{LowerBound: 0, UpperBound: 100},
				},
				Thresholds: []*dashboardpb.Threshold{requiredThreshold(plan)},
			},
		},
	}
}

func comparisonChart(plan planner.Plan) *dashboardpb.Widget {
	return &dashboardpb.Widget{
		Title: "Current vs required attendance",
		Content: &dashboardpb.Widget_XyChart{
			XyChart: &dashboardpb.XyChart{
				DataSets: []*dashboardpb.XyChart_DataSet{
					{
						TimeSeriesQuery: latestQuery(plan, "current_percentage"),
						PlotType:        dashboardpb.XyChart_DataSet_STACKED_BAR,
						LegendTemplate:  "Current",
					},
					{
						TimeSeriesQuery: latestQuery(plan, "required_percentage"),
						PlotType:        dashboardpb.XyChart_DataSet_LINE,
						LegendTemplate:  "Required",
					},
				},
				Thresholds: []*dashboardpb.Threshold{requiredThreshold(plan)},
				YAxis: &dashboardpb.XyChart_Axis{
					Label: "percent",
					Scale: dashboardpb.XyChart_Axis_LINEAR,
				},
			},
		},
	}
}

func countScorecard(plan planner.Plan, metricID, title string) *dashboardpb.Widget {
	return &dashboardpb.Widget{
		Title: title,
		Content: &dashboardpb.Widget_Scorecard{
			Scorecard: &dashboardpb.Scorecard{
				TimeSeriesQuery: latestQuery(plan, metricID),
			},
		},
	}
}

func requiredThreshold(plan planner.Plan) *dashboardpb.Threshold {
	return &dashboardpb.Threshold{
		Label:     "below requirement",
		Value:     plan.Required,
		Color:     dashboardpb.Threshold_RED,
		Direction: dashboardpb.Threshold_BELOW,
	}
}

// latestQuery carries the most recent point forward, since attendance is
// published far less often than the chart refreshes.
func latestQuery(plan planner.Plan, metricID string) *dashboardpb.TimeSeriesQuery {
	return &dashboardpb.TimeSeriesQuery{
		Source: &dashboardpb.TimeSeriesQuery_TimeSeriesFilter{
			TimeSeriesFilter: &dashboardpb.TimeSeriesFilter{
				Filter: buildFilter(planner.MetricPrefix+metricID, plan.CourseID),
				Aggregation: &dashboardpb.Aggregation{
					AlignmentPeriod:  durationpb.New(24 * time.Hour),
					PerSeriesAligner: dashboardpb.Aggregation_ALIGN_NEXT_OLDER,
				},
			},
		},
	}
}

func buildFilter(metricType, courseID string) string {
	return fmt.Sprintf("metric.type=%q AND resource.type=%q AND metric.label.course=%q", metricType, resourceType, courseID)
}

func valueTypeFor(value string) metricpb.MetricDescriptor_ValueType {
	switch value {
	case planner.ValueInt64:
		return metricpb.MetricDescriptor_INT64
	case planner.ValueDouble:
		return metricpb.MetricDescriptor_DOUBLE
	default:
		return metricpb.MetricDescriptor_VALUE_TYPE_UNSPECIFIED
	}
}

func typedValue(metric planner.MetricPlan) *monitoringpb.TypedValue {
	if metric.ValueType == planner.ValueInt64 {
		return &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_Int64Value{Int64Value: int64(metric.Value)}}
	}
	return &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: metric.Value}}
}

func copyLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func hasManagedLabel(labels map[string]string, filter map[string]string) bool {
	if len(labels) == 0 {
		return false
	}
	for key, value := range filter {
		if labels[key] != value {
			return false
		}
	}
	return true
}
