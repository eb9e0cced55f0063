package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
	"github.com/bayneri/bunk/internal/config"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app, err := New(Options{
		Defaults:  config.Defaults{Required: 75, Present: 30, Total: 40, Timezone: "UTC"},
		Now:       func() time.Time { return time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC) },
		LogOutput: io.Discard,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"ok"`) {
		t.Fatalf("unexpected body %q", body)
	}
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestFormDefaults(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{`name="required"`, `value="75"`, `value="30"`, `value="40"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in form:\n%s", want, body)
		}
	}
	if strings.Contains(body, "class=\"result\"") {
		t.Fatalf("expected no result before submit")
	}
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func TestFormSubmitAbove(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, postForm(url.Values{
		"required": {"75"},
		"present":  {"35"},
		"total":    {"40"},
	}))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	for _, want := range []string{
		"You can bunk 6 more classes.",
		"87.50%",
		"bar-current",
		"Mon, 06 Jan 2025 09:30:00 UTC",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in page:\n%s", want, body)
		}
	}
}

func TestFormSubmitBelow(t *testing.T) {
	app := newTestApp(t)
	_, body := do(t, app, postForm(url.Values{
		"required": {"75"},
		"present":  {"25"},
		"total":    {"40"},
	}))
	if !strings.Contains(body, "You must attend 20 more classes") {
		t.Fatalf("expected needed classes in page:\n%s", body)
	}
}

func TestFormSubmitInvalid(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, postForm(url.Values{
		"required": {"75"},
		"present":  {"41"},
		"total":    {"40"},
	}))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "classes present cannot be more than total classes") {
		t.Fatalf("expected validation message in page:\n%s", body)
	}
	if !strings.Contains(body, `value="41"`) {
		t.Fatalf("expected submitted values to be kept")
	}
}

func TestAPICreateProjection(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projections",
		strings.NewReader(`{"name":"physics-101","present":25,"total":40,"required":75}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, body := do(t, app, req)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var result analyze.Result
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Name != "physics-101" {
		t.Fatalf("expected name physics-101, got %q", result.Name)
	}
	if result.Status != analyze.StatusBelow {
		t.Fatalf("expected below, got %q", result.Status)
	}
	if result.Projection.NeededClasses != 20 {
		t.Fatalf("expected 20 needed classes, got %d", result.Projection.NeededClasses)
	}
}

func TestAPIGetProjection(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projections?present=35&total=40&required=75", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://example.com")
	resp, body := do(t, app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("expected permissive CORS on the API, got %q", got)
	}
	var result analyze.Result
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Projection.Status != attendance.StatusAbove || result.Projection.BunkableClasses != 6 {
		t.Fatalf("unexpected projection %+v", result.Projection)
	}
	if result.Projection.FinalTotal != 46 {
		t.Fatalf("expected final total 46, got %d", result.Projection.FinalTotal)
	}
}

func TestAPIValidationError(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		wantErr string
	}{
		{"present-over-total", "/api/v1/projections?present=41&total=40&required=75", "cannot be more than total"},
		{"missing-required", "/api/v1/projections?present=1&total=2", "required percentage"},
		{"bad-number", "/api/v1/projections?present=abc&total=2&required=75", "invalid query parameters"},
		{"long-name", "/api/v1/projections?present=1&total=2&required=75&name=" + strings.Repeat("x", 101), "name must be at most 100 characters"},
	}
	app := newTestApp(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, app, httptest.NewRequest(http.MethodGet, tc.target, nil))
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
			var payload struct {
				Error string `json:"error"`
				Code  int    `json:"code"`
			}
			if err := json.Unmarshal([]byte(body), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Code != fiber.StatusBadRequest {
				t.Fatalf("expected code 400, got %d", payload.Code)
			}
			if !strings.Contains(payload.Error, tc.wantErr) {
				t.Fatalf("expected %q in %q", tc.wantErr, payload.Error)
			}
		})
	}
}

func TestAPIInvalidJSON(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projections", strings.NewReader(`{"present":`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, body := do(t, app, req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "invalid payload") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestAPINotFoundIsJSON(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		t.Fatalf("expected json error, got %q: %s", resp.Header.Get(fiber.HeaderContentType), body)
	}
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	_, err := New(Options{Defaults: config.Defaults{Timezone: "Mars/Olympus"}, LogOutput: io.Discard})
	if err == nil {
		t.Fatal("expected error")
	}
}
