package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_BADGER_DIR keeps the database somewhere inspectable; a temp dir otherwise
	BadgerDir string `envconfig:"E2E_BADGER_DIR"`
	// E2E_DEBUG_BLOBS dumps the decoded blobs after every step
	DebugBlobs bool `envconfig:"E2E_DEBUG_BLOBS" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
