package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nlweb-ai/nlweb-go/pkg/api"
	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/logger"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/backend"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/chat"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/generate"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/mcpadapter"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/query"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/service"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb/tools"
	"github.com/nlweb-ai/nlweb-go/pkg/ratelimit"
	"github.com/nlweb-ai/nlweb-go/pkg/telemetry"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the query server",
		Long:  `Load the configuration, wire the backends and the chat client, and serve the HTTP and MCP API until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			deps, err := wire(cfg)
			if err != nil {
				return err
			}
			return api.Serve(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the YAML configuration file")
	return cmd
}

// wire assembles the full pipeline from the validated configuration.
func wire(cfg *config.Config) (api.Deps, error) {
	metrics := telemetry.NewMetrics()

	backends, err := backend.BuildAll(cfg.MultiBackend)
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to build backends: %w", err)
	}
	registry, err := backend.NewRegistryFromConfig(cfg.MultiBackend, backends)
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to build backend registry: %w", err)
	}
	manager := backend.NewManager(registry, cfg.MultiBackend)
	manager.SetFailureHook(func(backendID string) {
		metrics.BackendFailures.WithLabelValues(backendID).Inc()
	})

	chatClient := chat.NewHTTPClient(cfg.Chat)
	if chatClient != nil {
		chatClient = chat.WithBreaker(chat.WithRetry(chatClient))
	} else {
		logger.Info("chat client disabled, summarize and generate degrade to list mode")
	}

	defs, err := tools.LoadDefinitions(cfg.ToolDefinitionsPath)
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to load tool definitions: %w", err)
	}

	generator := generate.NewGenerator(chatClient, cfg.MaxResultsPerQuery)
	toolRegistry, err := tools.NewRegistry(defs, manager, generator, cfg.MaxResultsPerQuery)
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to build tool registry: %w", err)
	}

	svc := service.New(cfg,
		query.NewProcessor(chatClient, cfg.EnableDecontextualization, cfg.MaxQueryLength),
		tools.NewSelector(cfg.ToolSelectionEnabled),
		toolRegistry, manager, generator)

	limiter := ratelimit.New(cfg.RateLimiting)
	limiter.SetRejectionHook(metrics.RateLimitRejections.Inc)

	logger.Infow("pipeline wired",
		"backends", registry.Count(),
		"chat_enabled", chatClient != nil,
		"tool_selection", cfg.ToolSelectionEnabled)

	return api.Deps{
		Config:   cfg,
		Service:  svc,
		Adapter:  mcpadapter.NewAdapter(svc, cfg.Mode()),
		Limiter:  limiter,
		Registry: registry,
		Metrics:  metrics,
	}, nil
}
