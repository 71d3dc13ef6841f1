package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "docsql "+Short()+" ") {
		t.Errorf("Info() = %q, want docsql %s prefix", info, Short())
	}
	if !strings.HasSuffix(info, runtime.Version()) {
		t.Errorf("Info() = %q, want Go version suffix", info)
	}
}

func TestShortRevision(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"abc":              "abc",
		"0123456789abcdef": "0123456",
	}
	for in, want := range tests {
		if got := shortRevision(in); got != want {
			t.Errorf("shortRevision(%q) = %q, want %q", in, got, want)
		}
	}
}
