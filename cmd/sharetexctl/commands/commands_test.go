package commands

import (
	"bytes"
	"strings"
	"testing"
)

// run executes the command tree with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "sharetexctl dev") {
		t.Errorf("output = %q", out)
	}
}

func TestBackends(t *testing.T) {
	out, err := run(t, "backends")
	if err != nil {
		t.Fatalf("backends error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasSuffix(lines[0], "(default)") {
		t.Errorf("first line = %q, want default marker", lines[0])
	}
	if !strings.Contains(out, "software") {
		t.Errorf("output = %q, want software backend listed", out)
	}
}

func TestProbeSoftware(t *testing.T) {
	out, err := run(t, "probe", "--backend", "software", "--log-level", "error")
	if err != nil {
		t.Fatalf("probe error = %v", err)
	}
	for _, want := range []string{"backend:  software", "device:   ok", "state:    interop-ready", "interop:  true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSelftestSoftware(t *testing.T) {
	out, err := run(t, "selftest", "--backend", "software", "--rounds", "2", "--metrics", "--log-level", "error")
	if err != nil {
		t.Fatalf("selftest error = %v", err)
	}
	for _, want := range []string{
		"lock/unlock rounds: 2",
		"release: ok",
		"(uninitialized)",
		`sharetex_lock_operations_total{op="lock",result="ok"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := run(t, "probe", "--backend", "nonexistent"); err == nil {
		t.Error("probe with unknown backend error = nil")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := run(t, "version", "--log-level", "loud"); err == nil {
		t.Error("invalid log level error = nil")
	}
}
