package testlog

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AryaMajumder/px4-jmavsim/internal/logging"
)

// Start routes global log output to the test log for one test.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Logger = zerolog.New(zerolog.NewTestWriter(t))
	log.Debug().Str("test", t.Name()).Msg("start")
}
