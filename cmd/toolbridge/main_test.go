package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun_Version(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"--version"}, &out); code != 0 {
		t.Fatalf("run --version = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "toolbridge version") {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"--help"}, &out); code != 0 {
		t.Fatalf("run --help = %d, want 0", code)
	}
	for _, want := range []string{"Usage:", "--version", "LLM_BASE_URL"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"--bogus"}, &out); code != 2 {
		t.Fatalf("run --bogus = %d, want 2", code)
	}
}
