package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/swiftparcel-backend/internal/config"
)

func TestNewWithWriterTagsEntries(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	log := NewWithWriter(cfg, &buf)

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Str("parcel_id", "p1").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "swiftparcel", entry["service"])
	assert.Equal(t, "development", entry["env"])
	assert.Equal(t, "p1", entry["parcel_id"])
}

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = ""

	var buf bytes.Buffer
	log := NewWithWriter(cfg, &buf)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
}
