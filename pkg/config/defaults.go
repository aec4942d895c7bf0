package config

// Default returns a Config populated with the built-in defaults.
// Loader output starts from these values before applying file, environment
// and flag overrides.
func Default() *Config {
	return &Config{
		Host:                      "127.0.0.1",
		Port:                      8080,
		DefaultMode:               "list",
		EnableStreaming:           true,
		DefaultTimeoutSeconds:     30,
		MaxResultsPerQuery:        10,
		EnableDecontextualization: true,
		MaxQueryLength:            2000,
		ToolSelectionEnabled:      true,
		RateLimiting: RateLimitingConfig{
			Enabled:               true,
			RequestsPerWindow:     100,
			WindowSizeInMinutes:   1,
			EnableIPBasedLimiting: true,
		},
		Chat: ChatConfig{
			Enabled:        false,
			TimeoutSeconds: 20,
		},
		MultiBackend: MultiBackendConfig{
			Enabled:                   true,
			EnableParallelQuerying:    true,
			EnableResultDeduplication: true,
			MaxConcurrentQueries:      4,
			BackendTimeoutSeconds:     10,
		},
	}
}
