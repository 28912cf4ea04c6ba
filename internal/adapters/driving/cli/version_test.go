package cli

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	prev := version
	SetVersion("1.4.2")
	t.Cleanup(func() {
		version = prev
		versionShort = false
	})

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "intake version 1.4.2")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", strings.TrimSpace(out))
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := run(t, "version", "extra")
	assert.Error(t, err)
}
