// Package testhelper silences the global logger in tests. Import it for its
// side effect from a package's test files.
package testhelper

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	if testing.Testing() && os.Getenv("ABGROUP_TEST_LOG") == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
}

// CaptureLogs routes the global logger into a buffer at the given level for
// the rest of the test, restoring the previous logger and level afterwards.
func CaptureLogs(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()

	previousLogger := log.Logger
	previousLevel := zerolog.GlobalLevel()

	buf := &bytes.Buffer{}
	log.Logger = zerolog.New(buf)
	zerolog.SetGlobalLevel(level)

	t.Cleanup(func() {
		log.Logger = previousLogger
		zerolog.SetGlobalLevel(previousLevel)
	})

	return buf
}
