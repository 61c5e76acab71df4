package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Commit
	Commit = "abc123"
	defer func() { Commit = old }()

	s := String()
	if !strings.Contains(s, "commit: abc123") {
		t.Errorf("String() = %q, missing commit", s)
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
}
