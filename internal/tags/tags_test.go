package tags

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Climate   Policy ", "climate-policy"},
		{"Economy", "economy"},
		{"foreign  affairs", "foreign-affairs"},
		{"", ""},
		{"   ", ""},
		{"already-hyphenated", "already-hyphenated"},
		{"\tTabs and\nNewlines\t", "tabs-and-newlines"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"a", "A", "a-b", "A-B"})
	want := []string{"a", "a-b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %v, want %v", got, want)
	}
}

func TestDedupeKeepsFirstOccurrenceOrder(t *testing.T) {
	got := Dedupe([]string{"Zebra", "apple", "  ZEBRA ", "", "Apple"})
	want := []string{"zebra", "apple"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %v, want %v", got, want)
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Dedupe(nil) = %v, want empty", got)
	}
}
