package testlog

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Start routes the global logger through the test's log for the duration of
// one test, so reconciliation output lands in -v output instead of stderr.
func Start(t *testing.T) {
	t.Helper()
	prev := log.Logger
	log.Logger = zerolog.New(zerolog.NewTestWriter(t))
	t.Cleanup(func() { log.Logger = prev })
}
