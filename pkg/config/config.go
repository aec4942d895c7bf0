// Package config provides the configuration model for the NLWeb query core.
//
// A single immutable Config is built at startup (flags, environment, optional
// YAML file) and validated before the server accepts requests. Components
// receive the sub-structs they need and never mutate them.
package config

import (
	"fmt"
	"time"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// Config is the root configuration for the query core.
type Config struct {
	// Host is the bind address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the bind port.
	Port int `mapstructure:"port" yaml:"port"`

	// DefaultMode is the response mode used when a request omits one.
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode"`

	// EnableStreaming allows SSE responses on /ask.
	EnableStreaming bool `mapstructure:"enable_streaming" yaml:"enable_streaming"`

	// DefaultTimeoutSeconds is the per-request deadline.
	DefaultTimeoutSeconds int `mapstructure:"default_timeout_seconds" yaml:"default_timeout_seconds"`

	// MaxResultsPerQuery is the top-K pool size handed to each backend and
	// the truncation bound on merged results.
	MaxResultsPerQuery int `mapstructure:"max_results_per_query" yaml:"max_results_per_query"`

	// EnableDecontextualization turns conversational query rewriting on.
	EnableDecontextualization bool `mapstructure:"enable_decontextualization" yaml:"enable_decontextualization"`

	// MaxQueryLength bounds the accepted query size in characters.
	MaxQueryLength int `mapstructure:"max_query_length" yaml:"max_query_length"`

	// DefaultSite scopes retrieval when a request names no site.
	DefaultSite string `mapstructure:"default_site" yaml:"default_site"`

	// ToolSelectionEnabled turns keyword-based tool routing on.
	ToolSelectionEnabled bool `mapstructure:"tool_selection_enabled" yaml:"tool_selection_enabled"`

	// ToolDefinitionsPath points at the YAML tool-definitions document.
	// When empty, the built-in definitions are used.
	ToolDefinitionsPath string `mapstructure:"tool_definitions_path" yaml:"tool_definitions_path"`

	// RateLimiting configures the fixed-window request limiter.
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`

	// MultiBackend configures the retrieval fan-out.
	MultiBackend MultiBackendConfig `mapstructure:"multi_backend" yaml:"multi_backend"`

	// Chat configures the completion client used for decontextualization
	// and summary generation.
	Chat ChatConfig `mapstructure:"chat" yaml:"chat"`
}

// ChatConfig configures the OpenAI-compatible completion endpoint. When
// disabled, Summarize and Generate degrade to List.
type ChatConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`

	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the chat call deadline.
func (c ChatConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RateLimitingConfig configures the per-identifier fixed-window limiter.
type RateLimitingConfig struct {
	Enabled                   bool `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerWindow         int  `mapstructure:"requests_per_window" yaml:"requests_per_window"`
	WindowSizeInMinutes       int  `mapstructure:"window_size_in_minutes" yaml:"window_size_in_minutes"`
	EnableIPBasedLimiting     bool `mapstructure:"enable_ip_based_limiting" yaml:"enable_ip_based_limiting"`
	EnableClientBasedLimiting bool `mapstructure:"enable_client_based_limiting" yaml:"enable_client_based_limiting"`

	// ClientIDHeader names the header carrying the client identifier.
	// Used only when EnableClientBasedLimiting is true.
	ClientIDHeader string `mapstructure:"client_id_header" yaml:"client_id_header"`
}

// Window returns the limiter window as a duration.
func (c RateLimitingConfig) Window() time.Duration {
	return time.Duration(c.WindowSizeInMinutes) * time.Minute
}

// MultiBackendConfig configures parallel multi-backend retrieval.
type MultiBackendConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// WriteEndpoint names the single endpoint designated as the ingestion
	// sink. Not used on the read path.
	WriteEndpoint string `mapstructure:"write_endpoint" yaml:"write_endpoint"`

	EnableParallelQuerying    bool `mapstructure:"enable_parallel_querying" yaml:"enable_parallel_querying"`
	EnableResultDeduplication bool `mapstructure:"enable_result_deduplication" yaml:"enable_result_deduplication"`
	MaxConcurrentQueries      int  `mapstructure:"max_concurrent_queries" yaml:"max_concurrent_queries"`
	BackendTimeoutSeconds     int  `mapstructure:"backend_timeout_seconds" yaml:"backend_timeout_seconds"`

	// Endpoints declares the known backends.
	Endpoints []EndpointConfig `mapstructure:"endpoints" yaml:"endpoints"`
}

// BackendTimeout returns the per-backend call deadline.
func (c MultiBackendConfig) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

// EndpointConfig declares one named data backend.
type EndpointConfig struct {
	ID          string            `mapstructure:"id" yaml:"id"`
	Enabled     bool              `mapstructure:"enabled" yaml:"enabled"`
	BackendType string            `mapstructure:"backend_type" yaml:"backend_type"`
	Priority    int               `mapstructure:"priority" yaml:"priority"`
	Properties  map[string]string `mapstructure:"properties" yaml:"properties"`
}

// RequestTimeout returns the per-request deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSeconds) * time.Second
}

// Mode returns the parsed default mode. Validate guarantees it parses.
func (c *Config) Mode() nlweb.Mode {
	m, _ := nlweb.ParseMode(c.DefaultMode, nlweb.ModeList)
	return m
}

// Validate rejects invalid configuration at startup rather than at first use.
func (c *Config) Validate() error {
	if _, err := nlweb.ParseMode(c.DefaultMode, nlweb.ModeList); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.DefaultTimeoutSeconds <= 0 {
		return fmt.Errorf("default_timeout_seconds must be positive, got %d", c.DefaultTimeoutSeconds)
	}
	if c.MaxResultsPerQuery <= 0 {
		return fmt.Errorf("max_results_per_query must be positive, got %d", c.MaxResultsPerQuery)
	}
	if c.MaxQueryLength <= 0 {
		return fmt.Errorf("max_query_length must be positive, got %d", c.MaxQueryLength)
	}
	if err := c.RateLimiting.validate(); err != nil {
		return fmt.Errorf("rate_limiting: %w", err)
	}
	if err := c.MultiBackend.validate(); err != nil {
		return fmt.Errorf("multi_backend: %w", err)
	}
	if err := c.Chat.validate(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

func (c ChatConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required when chat is enabled")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required when chat is enabled")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

func (c RateLimitingConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.RequestsPerWindow <= 0 {
		return fmt.Errorf("requests_per_window must be positive, got %d", c.RequestsPerWindow)
	}
	if c.WindowSizeInMinutes <= 0 {
		return fmt.Errorf("window_size_in_minutes must be positive, got %d", c.WindowSizeInMinutes)
	}
	if c.EnableClientBasedLimiting && c.ClientIDHeader == "" {
		return fmt.Errorf("client_id_header is required when client-based limiting is enabled")
	}
	return nil
}

func (c MultiBackendConfig) validate() error {
	if c.MaxConcurrentQueries <= 0 {
		return fmt.Errorf("max_concurrent_queries must be positive, got %d", c.MaxConcurrentQueries)
	}
	if c.BackendTimeoutSeconds <= 0 {
		return fmt.Errorf("backend_timeout_seconds must be positive, got %d", c.BackendTimeoutSeconds)
	}

	seen := make(map[string]struct{}, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		if ep.ID == "" {
			return fmt.Errorf("endpoint id must not be empty")
		}
		if _, dup := seen[ep.ID]; dup {
			return fmt.Errorf("duplicate endpoint id %q", ep.ID)
		}
		seen[ep.ID] = struct{}{}
	}
	if c.WriteEndpoint != "" {
		if _, ok := seen[c.WriteEndpoint]; !ok {
			return fmt.Errorf("write_endpoint %q does not match any endpoint", c.WriteEndpoint)
		}
	}
	return nil
}
