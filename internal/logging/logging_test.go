package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LogConfig
		wantErr bool
	}{
		{name: "defaults", cfg: types.LogConfig{}},
		{name: "debug json", cfg: types.LogConfig{Level: "debug", Format: "json"}},
		{name: "upper case level", cfg: types.LogConfig{Level: "WARN", Format: "logfmt"}},
		{name: "bad level", cfg: types.LogConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: types.LogConfig{Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, WithWriter(&bytes.Buffer{}))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(types.LogConfig{Level: "warn"}, WithWriter(&buf), WithTimestamp(false))
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "node_id", "n1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "n1")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(types.LogConfig{Format: "json"}, WithWriter(&buf), WithTimestamp(false))
	require.NoError(t, err)

	logger.Info("thrown", "node_id", "n1")

	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "thrown", rec["msg"])
	assert.Equal(t, "n1", rec["node_id"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	require.NotNil(t, logger)
	logger.Error("dropped")
}
