package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the battle event publisher. An empty Addr disables it.
type RedisConfig struct {
	Addr          string `env:"REDIS_ADDR" envDefault:""`
	Password      string `env:"REDIS_PASSWORD" envDefault:""`
	DB            int    `env:"REDIS_DB" envDefault:"0"`
	ChannelPrefix string `env:"REDIS_CHANNEL_PREFIX" envDefault:"arena"`
}

type OracleConfig struct {
	URL     string        `env:"ORACLE_URL" envDefault:"https://api.coinbase.com/v2/prices/BTC-USD/spot"`
	Timeout time.Duration `env:"ORACLE_TIMEOUT" envDefault:"3s"`
}

type MatchConfig struct {
	ClaimAttempts int  `env:"MATCH_CLAIM_ATTEMPTS" envDefault:"3"`
	AutoMatch     bool `env:"APP_AUTO_MATCH" envDefault:"true"`
}
