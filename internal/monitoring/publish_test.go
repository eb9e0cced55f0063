package monitoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bayneri/bunk/internal/attendance"
	"github.com/bayneri/bunk/internal/planner"
)

type fakeClient struct {
	calls      []string
	failOn     string
	descriptor EnsureDescriptorsRequest
	deleted    DeleteRequest
}

func (f *fakeClient) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeClient) EnsureMetricDescriptors(_ context.Context, req EnsureDescriptorsRequest) error {
	f.descriptor = req
	return f.step("descriptors")
}

func (f *fakeClient) WriteProjection(context.Context, WriteProjectionRequest) error {
	return f.step("write")
}

func (f *fakeClient) ApplyDashboard(context.Context, ApplyDashboardRequest) error {
	return f.step("dashboard")
}

func (f *fakeClient) DeleteManagedDashboards(_ context.Context, req DeleteRequest) error {
	f.deleted = req
	return f.step("delete")
}

func TestPublishOrder(t *testing.T) {
	client := &fakeClient{}
	plan := testPlan(t, attendance.Query{Present: 35, Total: 40, RequiredPercentage: 75})
	if err := Publish(context.Background(), client, plan); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if strings.Join(client.calls, ",") != "descriptors,write,dashboard" {
		t.Fatalf("unexpected call order %v", client.calls)
	}
	if len(client.descriptor.Metrics) != 4 {
		t.Fatalf("expected all four descriptors, got %d", len(client.descriptor.Metrics))
	}
}

func TestPublishStopsOnError(t *testing.T) {
	client := &fakeClient{failOn: "write"}
	plan := testPlan(t, attendance.Query{Present: 35, Total: 40, RequiredPercentage: 75})
	err := Publish(context.Background(), client, plan)
	if err == nil || !strings.Contains(err.Error(), "write projection") {
		t.Fatalf("expected write projection error, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected dashboard to be skipped, got %v", client.calls)
	}
}

func TestPublishRequiresProject(t *testing.T) {
	plan := testPlan(t, attendance.Query{Present: 35, Total: 40, RequiredPercentage: 75})
	plan.Project = ""
	if err := Publish(context.Background(), &fakeClient{}, plan); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDeletePlan(t *testing.T) {
	client := &fakeClient{}
	plan := testPlan(t, attendance.Query{Present: 35, Total: 40, RequiredPercentage: 75})
	if err := DeletePlan(context.Background(), client, plan); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if client.deleted.Labels[planner.ManagedByLabel] != planner.ManagedByValue || client.deleted.Labels["course"] != "physics-101" {
		t.Fatalf("unexpected delete labels %v", client.deleted.Labels)
	}
}
