package github

import (
	"strings"
	"testing"
)

// fakeCmd records gh invocations and returns scripted outputs.
type fakeCmd struct {
	calls   [][]string
	outputs []string
	errs    []error
	idx     int
}

func (f *fakeCmd) Run(args ...string) (string, error) {
	f.calls = append(f.calls, args)
	var out string
	var err error
	if f.idx < len(f.outputs) {
		out = f.outputs[f.idx]
	}
	if f.idx < len(f.errs) {
		err = f.errs[f.idx]
	}
	f.idx++
	return out, err
}

func TestValidateRepo(t *testing.T) {
	if err := ValidateRepo("acme/widgets"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "acme", "acme/", "/widgets", "a/b/c"} {
		if err := ValidateRepo(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestUpsertComment_CreatesWhenNoMarker(t *testing.T) {
	fake := &fakeCmd{outputs: []string{
		`[{"id": 1, "body": "unrelated comment"}]`,
		``,
	}}
	c := NewClient(fake)

	created, err := c.UpsertComment("acme/widgets", 42, "<!-- scagate -->", "<!-- scagate -->\nhello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected a new comment")
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 gh calls, got %d", len(fake.calls))
	}
	create := strings.Join(fake.calls[1], " ")
	if !strings.Contains(create, "repos/acme/widgets/issues/42/comments") {
		t.Errorf("unexpected create call: %s", create)
	}
	if !strings.Contains(create, "body=<!-- scagate -->\nhello") {
		t.Errorf("body not passed: %s", create)
	}
}

func TestUpsertComment_UpdatesExistingMarker(t *testing.T) {
	fake := &fakeCmd{outputs: []string{
		`[{"id": 7, "body": "old\n<!-- scagate -->"}, {"id": 9, "body": "other"}]`,
		``,
	}}
	c := NewClient(fake)

	created, err := c.UpsertComment("acme/widgets", 42, "<!-- scagate -->", "new body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected an update, not a create")
	}
	update := strings.Join(fake.calls[1], " ")
	if !strings.Contains(update, "PATCH") || !strings.Contains(update, "repos/acme/widgets/issues/comments/7") {
		t.Errorf("unexpected update call: %s", update)
	}
}

func TestUpsertComment_InvalidInputs(t *testing.T) {
	c := NewClient(&fakeCmd{})
	if _, err := c.UpsertComment("not-a-slug", 1, "m", "b"); err == nil {
		t.Error("expected error for bad repo")
	}
	if _, err := c.UpsertComment("acme/widgets", 0, "m", "b"); err == nil {
		t.Error("expected error for PR 0")
	}
}

func TestFindComment_BadJSON(t *testing.T) {
	c := NewClient(&fakeCmd{outputs: []string{`not json`}})
	if _, err := c.FindComment("acme/widgets", 1, "m"); err == nil {
		t.Error("expected parse error")
	}
}
