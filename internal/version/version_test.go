package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	require.Equal(t, "devel", Version())
	version = "v1.2.0"
	defer func() { version = "" }()
	require.Equal(t, "v1.2.0", Version())
}

func TestCommit(t *testing.T) {
	require.Equal(t, "unknown", Commit())
	commit = "1a2b3c"
	defer func() { commit = "" }()
	require.Equal(t, "1a2b3c", Commit())
}
