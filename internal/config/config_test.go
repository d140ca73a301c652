package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/internal/domain"
)

func TestLoad(t *testing.T) {
	t.Setenv("CARWASH_DB_PASSWORD", "s3cret")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
host = "db"
user = "carwash"
password = "${CARWASH_DB_PASSWORD}"
dbname = "carwash"

[reservation]
time_unit = 15
carpet_cleaning_multiplier = 3
time_zone = "Europe/Budapest"
completion_email_delay_seconds = 900

[bot]
enabled = true
token = "123:abc"
staff_chat_id = -100200
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5432 user=carwash password=s3cret dbname=carwash sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 15*time.Minute, cfg.CompletionEmailDelay())
	assert.Equal(t, int64(-100200), cfg.Bot.StaffChatID)

	rc := cfg.ReservationConfig()
	assert.Equal(t, 15, rc.TimeUnit)
	assert.Equal(t, 3, rc.CarpetCleaningMultiplier)
	assert.Equal(t, domain.DefaultUserConcurrentReservationLimit, rc.UserConcurrentReservationLimit)
	assert.Equal(t, domain.DefaultMinutesToAllowReserveInPast, rc.MinutesToAllowReserveInPast)
	assert.Equal(t, "Europe/Budapest", rc.TimeZoneID)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultTimeUnit, cfg.Reservation.TimeUnit)
	assert.Equal(t, domain.DefaultTimeZoneID, cfg.Reservation.TimeZone)
	assert.Equal(t, "slots.yaml", cfg.Reservation.SlotsFile)
	assert.Equal(t, "carwash:emails", cfg.Email.QueueKey)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Zero(t, cfg.CompletionEmailDelay())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"negative time unit", "[reservation]\ntime_unit = -5"},
		{"unknown time zone", "[reservation]\ntime_zone = \"Mars/Olympus\""},
		{"cutoff out of range", "[reservation]\nhours_after_company_limit_is_not_checked = 25"},
		{"calendar without credentials", "[calendar]\nenabled = true"},
		{"bot without chat", "[bot]\nenabled = true\ntoken = \"x\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("[reservation\ntime_unit = 1"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrRead)
}
