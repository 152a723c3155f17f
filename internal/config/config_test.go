package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("USER_TIMEZONE", "UTC")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "reminders.db", cfg.SQLitePath)
	assert.Equal(t, "@every 1m", cfg.SweepSchedule)
	assert.Equal(t, 5*time.Minute, cfg.EscalationWait)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 7, cfg.CallWindowStart)
	assert.Equal(t, 21, cfg.CallWindowEnd)
	assert.Equal(t, time.UTC, cfg.LocalTimezone)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("USER_TIMEZONE", "UTC")
	t.Setenv("PORT", "9090")
	t.Setenv("ESCALATION_WAIT", "2m")
	t.Setenv("CALL_WINDOW_START", "8")
	t.Setenv("CALL_WINDOW_END", "20")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.EscalationWait)
	assert.Equal(t, 8, cfg.CallWindowStart)
	assert.Equal(t, 20, cfg.CallWindowEnd)
}

func TestFromEnvInvalidValues(t *testing.T) {
	t.Parallel()

	cfg := FromEnv(Env{TimezoneName: "Not/AZone", CallWindowStart: 22, CallWindowEnd: 6})

	assert.Equal(t, time.Local, cfg.LocalTimezone)
	assert.Equal(t, 7, cfg.CallWindowStart)
	assert.Equal(t, 21, cfg.CallWindowEnd)
}
