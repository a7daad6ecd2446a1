package logging

import (
	"log/slog"
	"strings"
	"testing"
)

func TestWithCommon(t *testing.T) {
	attrs := WithCommon([]slog.Attr{slog.String(FieldPlayerID, "12345")}, "ntrp-rating-service", "dev")
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attrs, got %d", len(attrs))
	}
	if attrs[1].Key != FieldService || attrs[1].Value.String() != "ntrp-rating-service" {
		t.Fatalf("expected service attr, got %+v", attrs[1])
	}
	if attrs[2].Key != FieldVersion || attrs[2].Value.String() != "dev" {
		t.Fatalf("expected version attr, got %+v", attrs[2])
	}

	if got := WithCommon(nil, "", ""); len(got) != 0 {
		t.Fatalf("expected no attrs for empty service/version, got %+v", got)
	}
}

func TestFieldKeysAreDistinctSnakeCase(t *testing.T) {
	keys := []string{
		FieldService, FieldVersion, FieldSource, FieldRequestID, FieldPath, FieldMethod,
		FieldStatusCode, FieldPlayerID, FieldProbe, FieldStore, FieldURL, FieldOutcome,
		FieldCount, FieldDurationMS,
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate field key %q", k)
		}
		seen[k] = true
		if k != strings.ToLower(k) || strings.Contains(k, "-") {
			t.Fatalf("field key %q is not snake_case", k)
		}
	}
}
