package buildinfo

import (
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	Version, Commit = "v1.2.3", "none"
	if got := Short(); got != "unshred/v1.2.3" {
		t.Errorf("Short() = %q", got)
	}

	Commit = "0123456789abcdef"
	if got := Short(); got != "unshred/v1.2.3 (0123456)" {
		t.Errorf("Short() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
	if Get().Version != Version {
		t.Error("Get() should mirror Version")
	}
}
