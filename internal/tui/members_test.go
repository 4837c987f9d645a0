package tui

import (
	"testing"

	"github.com/parley-im/parley/internal/store"
)

func testMembers() []*store.Member {
	return []*store.Member{
		{UserID: "@alice:parley", DisplayName: "Alice"},
		{UserID: "@bob:parley", DisplayName: "Bob"},
		{UserID: "@carol:parley", DisplayName: "Caroline"},
		{UserID: "@dave:parley", DisplayName: "Dave"},
	}
}

func TestFilterMembersEmptyQuery(t *testing.T) {
	members := testMembers()
	result := FilterMembers(members, "")
	if len(result) != len(members) {
		t.Errorf("expected all members, got %d", len(result))
	}
	result = FilterMembers(members, "   ")
	if len(result) != len(members) {
		t.Errorf("expected all members for whitespace query, got %d", len(result))
	}
}

func TestFilterMembersSubstring(t *testing.T) {
	result := FilterMembers(testMembers(), "caro")
	if len(result) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result))
	}
	if result[0].DisplayName != "Caroline" {
		t.Errorf("expected Caroline, got %s", result[0].DisplayName)
	}
}

func TestFilterMembersCaseInsensitive(t *testing.T) {
	result := FilterMembers(testMembers(), "ALICE")
	if len(result) != 1 || result[0].DisplayName != "Alice" {
		t.Errorf("expected case-insensitive match for Alice, got %d results", len(result))
	}
}

func TestFilterMembersFuzzy(t *testing.T) {
	// One substitution away from "dave"
	result := FilterMembers(testMembers(), "dove")
	found := false
	for _, m := range result {
		if m.DisplayName == "Dave" {
			found = true
		}
	}
	if !found {
		t.Error("expected fuzzy match for Dave")
	}
}

func TestFilterMembersShortQueryStaysTight(t *testing.T) {
	// "caro" is three edits from "dave"; a four-letter query must not
	// reach an unrelated four-letter name.
	result := FilterMembers(testMembers(), "caro")
	for _, m := range result {
		if m.DisplayName == "Dave" {
			t.Error("expected short query not to match Dave")
		}
	}
}

func TestFilterMembersNoMatch(t *testing.T) {
	result := FilterMembers(testMembers(), "zzzzzzzzzz")
	if len(result) != 0 {
		t.Errorf("expected no matches, got %d", len(result))
	}
}

func TestFilterMembersSubstringBeforeFuzzy(t *testing.T) {
	members := []*store.Member{
		{UserID: "@bib:parley", DisplayName: "Bib"},
		{UserID: "@bob:parley", DisplayName: "Bob"},
	}
	// "bob" is an exact substring of Bob and one edit away from Bib
	result := FilterMembers(members, "bob")
	if len(result) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result))
	}
	if result[0].DisplayName != "Bob" {
		t.Errorf("expected substring match first, got %s", result[0].DisplayName)
	}
}
