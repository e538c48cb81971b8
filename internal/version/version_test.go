package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeBuildInfo(settings map[string]string) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		info := &debug.BuildInfo{}
		for k, v := range settings {
			info.Settings = append(info.Settings, debug.BuildSetting{Key: k, Value: v})
		}
		return info, true
	}
}

func TestResolveVersion_LdflagsCommit(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "abcdef1234567890", nil)
	require.Equal(t, "1.2.0+abcdef123456", got)
}

func TestResolveVersion_VCSRevision(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "unknown", fakeBuildInfo(map[string]string{"vcs.revision": "0123456789abcdef"}))
	require.Equal(t, "1.2.0+0123456789ab", got)
}

func TestResolveVersion_DirtyWorkingTree(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "", fakeBuildInfo(map[string]string{
		"vcs.revision": "0123456",
		"vcs.modified": "true",
	}))
	require.Equal(t, "1.2.0+0123456-dirty", got)
}

func TestResolveVersion_NoBuildInfo(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "", func() (*debug.BuildInfo, bool) { return nil, false })
	require.Equal(t, "1.2.0", got)
}

func TestResolveVersion_EmptyBase(t *testing.T) {
	t.Parallel()
	got := resolveVersion("", "", nil)
	require.Equal(t, "0.0.0", got)
}
