package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-dashboard/internal/classifier"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "localhost:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sensor_data", cfg.Kafka.LiveTopic)
	assert.Equal(t, "sensor_history", cfg.Kafka.HistoryTopic)
	assert.Equal(t, "sensor-dashboard", cfg.Kafka.GroupID)
	assert.Equal(t, ":8080", cfg.API.Port)
	assert.Equal(t, "/api/v0", cfg.API.BasePath)
	assert.Equal(t, "logs", cfg.Log.Dir)
	assert.Equal(t, 100, cfg.Notification.QueueSize)
	assert.Equal(t, 2, cfg.Notification.MaxWorkers)
	assert.Equal(t, 1.0, cfg.Telegram.RateLimit)
	assert.Equal(t, []string{VariantApp, VariantDashboard, VariantTelemetry}, cfg.Variants)
	assert.Len(t, cfg.Profiles, 3)
}

func TestLoad_MissingBroker(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKER")
}

func TestLoad_TelegramTokenNeedsChat(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}

func TestLoad_DebounceAndVariants(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("DEBOUNCE_MS", "250")
	t.Setenv("VARIANTS", " dashboard , telemetry ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{VariantDashboard, VariantTelemetry}, cfg.Variants)
	assert.Equal(t, 250*time.Millisecond, cfg.Profiles[VariantApp].Debounce())
}

func TestLoad_UnknownVariant(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("VARIANTS", "kiosk")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProfilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  hold_trigger: 1.7\n  water_policy: b\n"), 0o600))
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("PROFILES_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	app := cfg.Profiles[VariantApp]
	assert.Equal(t, 1.7, app.HoldTrigger)
	assert.Equal(t, classifier.WaterNearCritical, app.Water())
	assert.Equal(t, 50, app.HistoryCapacity, "unset knobs keep their defaults")
}

func TestDefaultProfiles(t *testing.T) {
	p := DefaultProfiles()

	app := p[VariantApp]
	assert.Equal(t, 2.0, app.HoldTrigger)
	assert.Zero(t, app.DisplayHold())
	assert.False(t, app.ChangeGated)
	assert.Equal(t, classifier.WaterFarWarning, app.Water())

	dash := p[VariantDashboard]
	assert.Equal(t, 1.7, dash.HoldTrigger)
	assert.Equal(t, 5*time.Second, dash.DisplayHold())
	assert.Equal(t, 100, dash.StatsCapacity)
	assert.Equal(t, 50, dash.ChartPoints)
	assert.True(t, dash.Banner)

	tele := p[VariantTelemetry]
	assert.Equal(t, 500, tele.SmokeCapacity)
	assert.Equal(t, 10*time.Second, tele.HighHold())

	for name, prof := range p {
		assert.NoError(t, prof.Validate(), name)
	}
}

func TestMergeProfiles(t *testing.T) {
	p := DefaultProfiles()
	require.NoError(t, MergeProfiles([]byte("dashboard:\n  banner: false\nkiosk:\n  water_policy: far-warning\n  hold_trigger: 3\n"), p))

	assert.False(t, p[VariantDashboard].Banner)
	assert.True(t, p[VariantDashboard].ChangeGated)

	kiosk := p["kiosk"]
	assert.Equal(t, "kiosk", kiosk.Name)
	assert.Equal(t, 3.0, kiosk.HoldTrigger)
	assert.Equal(t, 10000, kiosk.HighHoldMs)
	assert.NoError(t, kiosk.Validate())

	assert.Error(t, MergeProfiles([]byte("app: [1, 2"), p))
}

func TestProfileValidate(t *testing.T) {
	p := DefaultProfiles()[VariantApp]
	p.WaterPolicy = "sideways"
	assert.Error(t, p.Validate())

	p = DefaultProfiles()[VariantApp]
	p.HoldTrigger = 0
	assert.Error(t, p.Validate())

	p = DefaultProfiles()[VariantApp]
	p.SmokeCapacity = -1
	assert.Error(t, p.Validate())
}
