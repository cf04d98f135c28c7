package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/swifttrack/internal/config"
)

// MustReadConfig reads the configuration from the environment, or from the
// file at path when it is not empty, and installs it as the global config.
func MustReadConfig(path string) {
	var reader config.Reader = config.NewEnvReader()
	if path != "" {
		reader = config.NewFileReader(path)
	}

	cfg, err := reader.Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to read config")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Bool("from_file", path != "").
		Msg("read config")

	config.SetGlobal(cfg)
}
