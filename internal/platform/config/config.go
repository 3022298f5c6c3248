package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreLark     = "lark"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Lock backends.
const (
	LockNone  = "none"
	LockRedis = "redis"
)

// Config is the full process configuration, parsed once in main and passed down.
type Config struct {
	Server   Server
	Store    Store
	Lark     Lark
	Postgres Postgres
	Redis    RedisConfig
	Lock     Lock
	Render   Render
	Printer  Printer
	Kafka    Kafka
	Tracing  Tracing
	Log      Log

	// Assets is the catalogue of physical items issued once per team.
	Assets AssetCatalogue `env:"REGDESK_ASSETS" envDefault:"1:物资袋,2:文化衫,3:餐券"`
	// StrictMatch rejects queries that match more than one participant.
	StrictMatch bool `env:"REGDESK_STRICT_MATCH" envDefault:"false"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"REGDESK_ADDR" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"REGDESK_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Store selects the record store backend.
type Store struct {
	Backend  string `env:"REGDESK_STORE" envDefault:"lark"`
	SeedFile string `env:"REGDESK_SEED_FILE"`
}

// Lark holds Bitable credentials and table identifiers.
type Lark struct {
	AppID            string `env:"REGDESK_LARK_APP_ID"`
	AppSecret        string `env:"REGDESK_LARK_APP_SECRET"`
	AppToken         string `env:"REGDESK_LARK_APP_TOKEN"`
	ParticipantTable string `env:"REGDESK_LARK_PARTICIPANT_TABLE"`
	TeamTable        string `env:"REGDESK_LARK_TEAM_TABLE"`
}

// Postgres configures the self-hosted record store.
type Postgres struct {
	URL      string `env:"REGDESK_POSTGRES_URL"`
	MaxConns int32  `env:"REGDESK_POSTGRES_MAX_CONNS" envDefault:"4"`
}

// RedisConfig configures the optional Redis client.
type RedisConfig struct {
	URL          string        `env:"REGDESK_REDIS_URL"`
	PoolSize     int           `env:"REGDESK_REDIS_POOL_SIZE" envDefault:"4"`
	MinIdleConns int           `env:"REGDESK_REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	DialTimeout  time.Duration `env:"REGDESK_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REGDESK_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REGDESK_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Lock configures the optional per-participant check-in lock.
type Lock struct {
	Backend string        `env:"REGDESK_LOCK_BACKEND" envDefault:"none"`
	TTL     time.Duration `env:"REGDESK_LOCK_TTL" envDefault:"30s"`
}

// Render configures the typesetting collaborator.
type Render struct {
	TypstBin    string `env:"REGDESK_TYPST_BIN" envDefault:"typst"`
	TemplateDir string `env:"REGDESK_TEMPLATE_DIR" envDefault:"templates"`
	FontDir     string `env:"REGDESK_FONT_DIR" envDefault:"fonts"`
	OutputDir   string `env:"REGDESK_OUTPUT_DIR" envDefault:"out"`
}

// Printer configures the physical printer. An empty Name disables printing.
type Printer struct {
	Name     string `env:"REGDESK_PRINTER"`
	Settings string `env:"REGDESK_PRINT_SETTINGS" envDefault:"noscale"`
	Bin      string `env:"REGDESK_PRINT_BIN"`
}

// Kafka configures the optional audit event stream.
type Kafka struct {
	Brokers []string `env:"REGDESK_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"REGDESK_KAFKA_TOPIC" envDefault:"regdesk.checkin"`
}

// Tracing configures OTLP export. Tracing is off when Endpoint is empty.
type Tracing struct {
	Endpoint    string `env:"REGDESK_OTEL_ENDPOINT"`
	ServiceName string `env:"REGDESK_OTEL_SERVICE_NAME" envDefault:"regdesk"`
}

// Log configures the structured logger.
type Log struct {
	Level  string `env:"REGDESK_LOG_LEVEL" envDefault:"info"`
	Format string `env:"REGDESK_LOG_FORMAT" envDefault:"json"`
}

// AssetEntry is one item of the asset catalogue.
type AssetEntry struct {
	Ordinal int
	Name    string
}

// AssetCatalogue parses "1:物资袋,2:文化衫,3:餐券".
type AssetCatalogue []AssetEntry

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (c *AssetCatalogue) UnmarshalText(text []byte) error {
	var out AssetCatalogue
	seen := make(map[int]bool)
	for _, part := range strings.Split(string(text), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ordinal, name, ok := strings.Cut(part, ":")
		if !ok {
			return fmt.Errorf("asset %q: expected <ordinal>:<name>", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(ordinal))
		if err != nil || n <= 0 {
			return fmt.Errorf("asset %q: ordinal must be a positive integer", part)
		}
		if seen[n] {
			return fmt.Errorf("asset %q: duplicate ordinal %d", part, n)
		}
		seen[n] = true
		out = append(out, AssetEntry{Ordinal: n, Name: strings.TrimSpace(name)})
	}
	*c = out
	return nil
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreLark:
		if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
			return fmt.Errorf("REGDESK_LARK_APP_ID and REGDESK_LARK_APP_SECRET must be set")
		}
		if c.Lark.AppToken == "" || c.Lark.ParticipantTable == "" || c.Lark.TeamTable == "" {
			return fmt.Errorf("lark app token and table ids must be set")
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("REGDESK_POSTGRES_URL must be set for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Lock.Backend {
	case LockNone:
	case LockRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REGDESK_REDIS_URL must be set for the redis lock")
		}
		if c.Lock.TTL <= 0 {
			return fmt.Errorf("REGDESK_LOCK_TTL must be positive")
		}
	default:
		return fmt.Errorf("unknown lock backend %q", c.Lock.Backend)
	}

	if len(c.Assets) == 0 {
		return fmt.Errorf("asset catalogue must not be empty")
	}
	return nil
}
