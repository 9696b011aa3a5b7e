package internal

type Config struct {
	// BadgerFilepath wins over RedisAddr; with neither set state stays in memory.
	BadgerFilepath   string `env:"BADGER_FILEPATH"`
	// RedisAddr selects a Redis store when no Badger path is set.
	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB,default=0"`
	LogLevel         string `env:"LOG_LEVEL,default=INFO"`
	SeedDemoData     bool   `env:"SEED_DEMO_DATA,default=true"`
	CurrentUserEmail string `env:"CURRENT_USER_EMAIL"`
	LimitList        *int   `env:"LIMIT_LIST"`
}
