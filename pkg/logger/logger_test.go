package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/planboard/planboard/pkg/logger"
)

func TestLogToWriter(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, closer, err := logger.New().ToWriter(buff).Make()
	require.NoError(t, err)
	require.Nil(t, closer)

	require.Equal(t, 0, buff.Len())
	log.Info().Msg("board loaded")
	require.Contains(t, buff.String(), "board loaded")
}

func TestLogLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, _, err := logger.New().ToWriter(buff).Level("warn").Make()
	require.NoError(t, err)

	log.Info().Msg("suppressed")
	require.Equal(t, 0, buff.Len())
	log.Warn().Msg("emitted")
	require.Contains(t, buff.String(), "emitted")
}

func TestLogLevelFallback(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, _, err := logger.New().ToWriter(buff).Level("chatty").Make()
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
