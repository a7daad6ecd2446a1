package domain

import (
	"encoding/json"
	"testing"
)

func TestResolutionDisplay(t *testing.T) {
	resolved := NewResolved("1", ResolvedRecord{URL: "u", Rating: "4.5000 S"}, 2, false)
	if got := resolved.Display(); got != "4.5000 S" {
		t.Fatalf("expected rating display, got %q", got)
	}
	if !resolved.Resolved() {
		t.Fatalf("expected resolved outcome")
	}

	unresolved := NewUnresolved("1", 20)
	if got := unresolved.Display(); got != UnknownRating {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if unresolved.Resolved() {
		t.Fatalf("expected unresolved outcome")
	}
}

func TestResolvedRecordJSONKeys(t *testing.T) {
	data, err := json.Marshal(ResolvedRecord{URL: "u", Rating: "r"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"trURL":"u","rating":"r"}` {
		t.Fatalf("unexpected json %s", data)
	}
}

func TestMatchComplete(t *testing.T) {
	if (Match{URL: "u"}).Complete() {
		t.Fatalf("expected match without rating to be incomplete")
	}
	if !(Match{URL: "u", Rating: "r"}).Complete() {
		t.Fatalf("expected complete match")
	}
	if (ResolvedRecord{Rating: "r"}).Valid() {
		t.Fatalf("expected record without url to be invalid")
	}
}

func TestFullName(t *testing.T) {
	a := RosterAttributes{FirstName: "Mary", LastName: "Van Dyke"}
	if got := a.FullName(); got != "Mary Van Dyke" {
		t.Fatalf("unexpected full name %q", got)
	}
}
