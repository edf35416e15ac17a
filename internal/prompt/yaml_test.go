package prompt

import (
	"testing"
	"testing/fstest"
)

func TestLoadYAMLMapping(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/test.yml": {Data: []byte("system: static prompt\nuser: 'hello {name}'\n")},
	}

	mapping, err := LoadYAMLMapping(fsys, "prompts/test.yml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapping["system"] != "static prompt" {
		t.Fatalf("unexpected system: %s", mapping["system"])
	}
	if mapping["user"] != "hello {name}" {
		t.Fatalf("unexpected user: %s", mapping["user"])
	}
}

func TestLoadYAMLMappingRejectsTemplatedSystem(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/bad.yml": {Data: []byte("system: 'oops {var}'\n")},
	}
	if _, err := LoadYAMLMapping(fsys, "prompts/bad.yml"); err == nil {
		t.Fatalf("expected error for templated system prompt")
	}
}

func TestLoadYAMLDir(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/a.yml":  {Data: []byte("user: one\n")},
		"prompts/b.yaml": {Data: []byte("user: two\n")},
	}

	prompts, err := LoadYAMLDir(fsys, "prompts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(prompts))
	}
	if prompts["a"]["user"] != "one" || prompts["b"]["user"] != "two" {
		t.Fatalf("unexpected prompts: %+v", prompts)
	}
}

func TestGetAndField(t *testing.T) {
	prompts := map[string]map[string]string{"explain": {"user": "u"}}

	data, err := Get(prompts, "explain", "explain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, err := Field(data, "user", "explain.user")
	if err != nil || value != "u" {
		t.Fatalf("unexpected field: %q err=%v", value, err)
	}

	if _, err := Get(prompts, "missing", "explain"); err == nil {
		t.Fatalf("expected error for missing prompt")
	}
	if _, err := Get(nil, "explain", "explain"); err == nil {
		t.Fatalf("expected error for nil prompts")
	}
	if _, err := Field(data, "system", "explain.system"); err == nil {
		t.Fatalf("expected error for missing field")
	}
}
