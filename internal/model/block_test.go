package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBlockListDecodeTagged(t *testing.T) {
	data := []byte(`[
		{"id":"e1","type":"event","date":"2024-01-01","event":"Kickoff","significance":2},
		{"id":"i1","type":"image","url":"/media/a.png","caption":"c"}
	]`)

	var l BlockList
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatal(err)
	}
	if len(l) != 2 {
		t.Fatalf("len = %d", len(l))
	}
	eb, ok := l[0].(*EventBlock)
	if !ok {
		t.Fatalf("l[0] = %T", l[0])
	}
	if eb.Event != "Kickoff" || eb.Date != "2024-01-01" {
		t.Errorf("event block = %+v", eb)
	}
	ib, ok := l[1].(*ImageBlock)
	if !ok {
		t.Fatalf("l[1] = %T", l[1])
	}
	if ib.URL != "/media/a.png" {
		t.Errorf("image block = %+v", ib)
	}
}

func TestBlockListDecodeUntaggedIsEvent(t *testing.T) {
	data := []byte(`[{"id":"e1","date":"","event":"Old record","significance":1}]`)

	var l BlockList
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatal(err)
	}
	eb, ok := l[0].(*EventBlock)
	if !ok {
		t.Fatalf("l[0] = %T", l[0])
	}
	if eb.Type != "" {
		t.Errorf("decoder set Type = %q, want empty", eb.Type)
	}

	// Round-trip: the untagged block stays untagged on disk.
	out, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), `"type"`) {
		t.Errorf("untagged block gained a discriminator: %s", out)
	}
}

func TestBlockListDecodeUnknownType(t *testing.T) {
	data := []byte(`[{"id":"x","type":"video","url":"u"}]`)

	var l BlockList
	err := json.Unmarshal(data, &l)
	if err == nil {
		t.Fatal("expected error for unknown block type")
	}
	if !strings.Contains(err.Error(), "video") {
		t.Errorf("error = %v", err)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusDraft, StatusReview, StatusPublished} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("archived") || ValidStatus("") {
		t.Error("invalid statuses accepted")
	}
}
