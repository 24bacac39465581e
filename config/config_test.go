package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("BOT_LANG", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "ru", cfg.I18n.Language)
	assert.Equal(t, "8080", cfg.Service.Port)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("DATABASE_DRIVER", "Memory")
	t.Setenv("DATABASE_AUTO_MIGRATE", "false")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("BOT_LANG", "EN")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "en", cfg.I18n.Language)
}

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{BotToken: "token"},
		Database: DatabaseConfig{Driver: "mysql"},
		Service:  ServiceConfig{Port: "8080"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "bot", Password: "secret", Name: "feed", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=bot password=secret dbname=feed sslmode=disable", cfg.GetDSN())
}
