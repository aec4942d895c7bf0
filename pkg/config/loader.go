package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. NLWEB_MAX_QUERY_LENGTH or NLWEB_RATE_LIMITING_ENABLED.
const envPrefix = "NLWEB"

// Load builds the immutable Config from defaults, an optional YAML file and
// NLWEB_* environment variables, then validates it. An empty path skips the
// file layer.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("host", def.Host)
	v.SetDefault("port", def.Port)
	v.SetDefault("default_mode", def.DefaultMode)
	v.SetDefault("enable_streaming", def.EnableStreaming)
	v.SetDefault("default_timeout_seconds", def.DefaultTimeoutSeconds)
	v.SetDefault("max_results_per_query", def.MaxResultsPerQuery)
	v.SetDefault("enable_decontextualization", def.EnableDecontextualization)
	v.SetDefault("max_query_length", def.MaxQueryLength)
	v.SetDefault("default_site", def.DefaultSite)
	v.SetDefault("tool_selection_enabled", def.ToolSelectionEnabled)
	v.SetDefault("tool_definitions_path", def.ToolDefinitionsPath)

	v.SetDefault("rate_limiting.enabled", def.RateLimiting.Enabled)
	v.SetDefault("rate_limiting.requests_per_window", def.RateLimiting.RequestsPerWindow)
	v.SetDefault("rate_limiting.window_size_in_minutes", def.RateLimiting.WindowSizeInMinutes)
	v.SetDefault("rate_limiting.enable_ip_based_limiting", def.RateLimiting.EnableIPBasedLimiting)
	v.SetDefault("rate_limiting.enable_client_based_limiting", def.RateLimiting.EnableClientBasedLimiting)
	v.SetDefault("rate_limiting.client_id_header", def.RateLimiting.ClientIDHeader)

	v.SetDefault("multi_backend.enabled", def.MultiBackend.Enabled)
	v.SetDefault("multi_backend.write_endpoint", def.MultiBackend.WriteEndpoint)
	v.SetDefault("multi_backend.enable_parallel_querying", def.MultiBackend.EnableParallelQuerying)
	v.SetDefault("multi_backend.enable_result_deduplication", def.MultiBackend.EnableResultDeduplication)
	v.SetDefault("multi_backend.max_concurrent_queries", def.MultiBackend.MaxConcurrentQueries)
	v.SetDefault("multi_backend.backend_timeout_seconds", def.MultiBackend.BackendTimeoutSeconds)

	v.SetDefault("chat.enabled", def.Chat.Enabled)
	v.SetDefault("chat.base_url", def.Chat.BaseURL)
	v.SetDefault("chat.model", def.Chat.Model)
	v.SetDefault("chat.api_key_env", def.Chat.APIKeyEnv)
	v.SetDefault("chat.timeout_seconds", def.Chat.TimeoutSeconds)
}
