package version

import (
	"strings"
	"testing"
)

func TestGetVersion_EmptyFallsBackToDev(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = ""
	if got := GetVersion(); got != "dev" {
		t.Errorf("GetVersion() = %q, want dev", got)
	}
}

func TestGetFullVersion_CarriesProvenance(t *testing.T) {
	full := GetFullVersion()
	for _, want := range []string{Version, Commit, Date, BuiltBy} {
		if !strings.Contains(full, want) {
			t.Errorf("full version %q missing %q", full, want)
		}
	}
}
