package common

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var out bytes.Buffer
	setupLogging(&out, "debug", false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	log.Debug().Msg("hello")
	assert.Contains(t, out.String(), `"message":"hello"`)

	out.Reset()
	setupLogging(&out, "loud", false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Contains(t, out.String(), "not understood")

	out.Reset()
	setupLogging(&out, "", false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
