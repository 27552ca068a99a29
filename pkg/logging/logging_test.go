package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revoverflow/walker/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   logrus.Level
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}, level: logrus.InfoLevel},
		{name: "debug json", cfg: Config{Level: "debug", Format: "json"}, level: logrus.DebugLevel},
		{name: "warn text", cfg: Config{Level: "warn", Format: "TEXT"}, level: logrus.WarnLevel},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger, err := New(Config{Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	// Act
	logger.WithField("buffer", "abc").Info("scanned")

	// Assert
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scanned", entry["msg"])
	assert.Equal(t, "abc", entry["buffer"])
}

func TestResolveLevel(t *testing.T) {
	assert.Equal(t, "warn", ResolveLevel("warn", false, false))
	assert.Equal(t, "debug", ResolveLevel("warn", true, false))
	assert.Equal(t, "error", ResolveLevel("warn", false, true))
	assert.Equal(t, "error", ResolveLevel("warn", true, true))
}

func TestDiagnostics(t *testing.T) {
	// Arrange
	logger, hook := test.NewNullLogger()
	d := NewDiagnostics(logger)

	// Act
	d.ConfigIssue(&types.ConfigError{Structure: "hdr", Field: 2, Criterion: -1, Reason: "unknown primitive u128", Err: errors.New("boom")})
	d.PatternMismatch(&types.PatternLengthMismatchError{Pattern: "41 42", Tokens: 2, Span: 4, Structure: "hdr", Field: 1, Criterion: 1, Offset: 16})

	// Assert
	require.Len(t, hook.AllEntries(), 2)

	cfg := hook.AllEntries()[0]
	assert.Equal(t, logrus.WarnLevel, cfg.Level)
	assert.Equal(t, "unknown primitive u128", cfg.Message)
	assert.Equal(t, 2, cfg.Data["field"])
	assert.NotContains(t, cfg.Data, "criterion")
	assert.Equal(t, "boom", cfg.Data["error"])

	pm := hook.LastEntry()
	assert.Equal(t, 16, pm.Data["offset"])
	assert.Equal(t, "41 42", pm.Data["pattern"])
	assert.Equal(t, 1, pm.Data["criterion"])
}

func TestDebugLogger(t *testing.T) {
	// Arrange
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	// Act
	DebugLogger{Logger: logger}.Log("loaded %d structures", 3)

	// Assert
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "loaded 3 structures", hook.LastEntry().Message)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}
