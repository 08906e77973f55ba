package config

import "github.com/kelseyhightower/envconfig"

type GalaxyClientConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Bearer token for the GOG content system. CDN requests never carry it.
	AuthToken string `envconfig:"AUTH_TOKEN"`

	// Small on purpose, this targets constrained environments.
	WorkerCount int `envconfig:"WORKER_COUNT" default:"2"`

	MaxSecureLinkAttempts int    `envconfig:"MAX_SECURE_LINK_ATTEMPTS" default:"5"`
	SecureLinkBackoffMs   int    `envconfig:"SECURE_LINK_BACKOFF_MS" default:"200"`
	ConnectionTimeoutSec  int    `envconfig:"CONNECTION_TIMEOUT_SEC" default:"30"`
	DownloadTimeoutMin    int    `envconfig:"DOWNLOAD_TIMEOUT_MIN" default:"5"`
	ProgressIntervalMs    int    `envconfig:"PROGRESS_INTERVAL_MS" default:"500"`
	DefaultTargetLanguage string `envconfig:"TARGET_LANGUAGE" default:"en-US"`
	DefaultTargetBitness  int    `envconfig:"TARGET_BITNESS" default:"64"`
}

func Load() GalaxyClientConfig {
	var cfg GalaxyClientConfig
	if err := envconfig.Process("galaxy", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

var Config GalaxyClientConfig = Load()
