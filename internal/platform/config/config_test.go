package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("REGDESK_STORE", "memory")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, LockNone, cfg.Lock.Backend)
	assert.Equal(t, "typst", cfg.Render.TypstBin)
	assert.Empty(t, cfg.Printer.Name)
	assert.False(t, cfg.StrictMatch)
	assert.Equal(t, AssetCatalogue{
		{Ordinal: 1, Name: "物资袋"},
		{Ordinal: 2, Name: "文化衫"},
		{Ordinal: 3, Name: "餐券"},
	}, cfg.Assets)
}

func TestFromEnv_LarkRequiresCredentials(t *testing.T) {
	t.Setenv("REGDESK_STORE", "lark")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGDESK_LARK_APP_ID")

	t.Setenv("REGDESK_LARK_APP_ID", "cli_a1")
	t.Setenv("REGDESK_LARK_APP_SECRET", "secret")
	t.Setenv("REGDESK_LARK_APP_TOKEN", "JUdbb9kTBaZBXqsDciMcbwYBn8g")
	t.Setenv("REGDESK_LARK_PARTICIPANT_TABLE", "tblFWDcFZgLQIePl")
	t.Setenv("REGDESK_LARK_TEAM_TABLE", "tblTeams")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "cli_a1", cfg.Lark.AppID)
}

func TestFromEnv_KafkaBrokersList(t *testing.T) {
	t.Setenv("REGDESK_STORE", "memory")
	t.Setenv("REGDESK_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Store:  Store{Backend: StoreMemory},
			Lock:   Lock{Backend: LockNone, TTL: time.Second},
			Assets: AssetCatalogue{{Ordinal: 1, Name: "物资袋"}},
		}
	}

	t.Run("unknown store", func(t *testing.T) {
		cfg := base()
		cfg.Store.Backend = "sheets"
		assert.ErrorContains(t, cfg.Validate(), "unknown store backend")
	})

	t.Run("postgres needs url", func(t *testing.T) {
		cfg := base()
		cfg.Store.Backend = StorePostgres
		assert.ErrorContains(t, cfg.Validate(), "REGDESK_POSTGRES_URL")
	})

	t.Run("redis lock needs url", func(t *testing.T) {
		cfg := base()
		cfg.Lock.Backend = LockRedis
		assert.ErrorContains(t, cfg.Validate(), "REGDESK_REDIS_URL")
	})

	t.Run("empty catalogue", func(t *testing.T) {
		cfg := base()
		cfg.Assets = nil
		assert.ErrorContains(t, cfg.Validate(), "asset catalogue")
	})
}

func TestAssetCatalogue_UnmarshalText(t *testing.T) {
	var c AssetCatalogue

	require.NoError(t, c.UnmarshalText([]byte(" 2:水杯 , 5:胸牌,")))
	assert.Equal(t, AssetCatalogue{{Ordinal: 2, Name: "水杯"}, {Ordinal: 5, Name: "胸牌"}}, c)

	assert.Error(t, c.UnmarshalText([]byte("水杯")))
	assert.Error(t, c.UnmarshalText([]byte("0:水杯")))
	assert.Error(t, c.UnmarshalText([]byte("1:a,1:b")))
}
