package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withVars(t *testing.T, v, c, d string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = v, c, d
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestFillFrom(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	withVars(t, defaultVersion, defaultCommit, defaultDate)
	fillFrom(info)
	if Version != "v1.4.0" || Commit != "0123456789abcdef" || Date != "2026-01-02T03:04:05Z" {
		t.Errorf("fillFrom = %q %q %q", Version, Commit, Date)
	}

	// ldflags win
	withVars(t, "v2.0.0", "feedface", "yesterday")
	fillFrom(info)
	if Version != "v2.0.0" || Commit != "feedface" || Date != "yesterday" {
		t.Errorf("ldflags values were overwritten: %q %q %q", Version, Commit, Date)
	}

	withVars(t, defaultVersion, defaultCommit, defaultDate)
	fillFrom(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if Version != defaultVersion {
		t.Errorf("(devel) should keep %q, got %q", defaultVersion, Version)
	}
}

func TestCacheScope(t *testing.T) {
	withVars(t, "v1.0.0", "0123456789abcdef", defaultDate)
	if got := CacheScope(); got != "v1.0.0:" {
		t.Errorf("release scope = %q", got)
	}

	withVars(t, defaultVersion, "0123456789abcdef", defaultDate)
	if got := CacheScope(); got != "dev-0123456789ab:" {
		t.Errorf("dev scope = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	withVars(t, "v1.0.0", "abc", "today")
	if !strings.Contains(Template(), "version v1.0.0") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.Contains(String(), "commit: abc") {
		t.Errorf("String() = %q", String())
	}
}
