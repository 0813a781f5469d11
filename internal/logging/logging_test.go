package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/studygroup-client/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logging.SetupWriter(&buf, "PROD", "warn")

	log.Info().Msg("hidden")
	log.Warn().Str("op", "auth/login").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["message"])
	require.Equal(t, "auth/login", entry["op"])
	require.Equal(t, "warn", entry["level"])
}

func TestSetupWriterUnknownLevelDefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logging.SetupWriter(&buf, "DEV", "chatty")
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	log.Info().Msg("visible")
	require.Contains(t, buf.String(), "visible")
}
