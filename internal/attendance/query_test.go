package attendance

import (
	"strings"
	"testing"
)

func TestQueryValidate(t *testing.T) {
	cases := []struct {
		name    string
		query   Query
		wantErr string
	}{
		{"ok", Query{Present: 30, Total: 40, RequiredPercentage: 75}, ""},
		{"no-classes-yet", Query{Present: 0, Total: 0, RequiredPercentage: 75}, ""},
		{"full-requirement", Query{Present: 10, Total: 10, RequiredPercentage: 100}, ""},
		{"present-over-total", Query{Present: 41, Total: 40, RequiredPercentage: 75}, "cannot be more than total"},
		{"negative-present", Query{Present: -1, Total: 40, RequiredPercentage: 75}, "must not be negative"},
		{"negative-total", Query{Present: 0, Total: -1, RequiredPercentage: 75}, "total classes must not be negative"},
		{"zero-requirement", Query{Present: 1, Total: 2, RequiredPercentage: 0}, "required percentage"},
		{"over-100", Query{Present: 1, Total: 2, RequiredPercentage: 100.5}, "required percentage"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.query.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestQueryValidateCollectsAll(t *testing.T) {
	err := Query{Present: -1, Total: -2, RequiredPercentage: 0}.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := strings.Count(err.Error(), ";"); got < 2 {
		t.Fatalf("expected at least three joined problems, got %q", err.Error())
	}
}
