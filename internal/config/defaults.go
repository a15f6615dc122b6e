package config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			MaxRows:    1000000,
			MaxColumns: 10000,
		},
		Validation: ValidationConfig{
			UnrecognizedColumns: "warn",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
