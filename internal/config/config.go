package config

import (
	"strconv"
	"time"
)

type HTTPConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`
}

type PostgresConfig struct {
	// Either DSN directly, or components to build it if DSN is empty.
	DSN      string `env:"DSN"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"DBNAME" envDefault:"tasklane"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

func (c PostgresConfig) EffectiveDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "postgres://" + c.User + ":" + c.Password +
		"@" + c.Host + ":" + strconv.Itoa(c.Port) +
		"/" + c.DBName + "?sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// KafkaConfig drives both the event producer and the event consumer.
// When Enabled is false, or the broker is unreachable at startup, both
// degrade to no-ops instead of failing construction.
type KafkaConfig struct {
	Enabled     bool     `env:"ENABLED" envDefault:"false"`
	Brokers     []string `env:"BROKERS" envDefault:"localhost:9092"`
	ClientID    string   `env:"CLIENT_ID" envDefault:"tasklane-api"`
	GroupID     string   `env:"GROUP_ID" envDefault:"tasklane-api-group"`
	TopicPrefix string   `env:"TOPIC_PREFIX" envDefault:"tasklane"`

	// Per-entity topic overrides. Empty means "{TopicPrefix}.{entity}".
	UsersTopic      string `env:"USERS_TOPIC"`
	TodosTopic      string `env:"TODOS_TOPIC"`
	CategoriesTopic string `env:"CATEGORIES_TOPIC"`
	TagsTopic       string `env:"TAGS_TOPIC"`

	EnableAutoCommit bool          `env:"ENABLE_AUTO_COMMIT" envDefault:"true"`
	SessionTimeout   time.Duration `env:"SESSION_TIMEOUT" envDefault:"6s"`
	AutoOffsetReset  string        `env:"AUTO_OFFSET_RESET" envDefault:"earliest"`
	ProducerTimeout  time.Duration `env:"PRODUCER_TIMEOUT" envDefault:"5s"`

	// Sleep between consumer reconnect attempts after a transport failure.
	ReconnectInterval time.Duration `env:"RECONNECT_INTERVAL" envDefault:"5s"`

	// Capacity of the in-process broadcast channel fed by the consumer.
	BroadcastBuffer int `env:"BROADCAST_BUFFER" envDefault:"1000"`
}

type AuthConfig struct {
	// HMAC secret for signing access tokens.
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// ObservabilityConfig Observability / telemetry configuration
type ObservabilityConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"tasklane-api"`
	ServiceEnv  string `env:"SERVICE_ENV" envDefault:"Development"`
	// e.g. "http://otel-collector:4317"
	OtelEndpoint string `env:"ENDPOINT"`
}

type Config struct {
	Environment string `env:"APP_ENV" envDefault:"Development"`

	HTTP          HTTPConfig          `envPrefix:"HTTP_"`
	Postgres      PostgresConfig      `envPrefix:"PG_"`
	Redis         RedisConfig         `envPrefix:"REDIS_"`
	Kafka         KafkaConfig         `envPrefix:"KAFKA_"`
	Auth          AuthConfig          `envPrefix:"AUTH_"`
	Observability ObservabilityConfig `envPrefix:"OTEL_"`
}
