package backend

import (
	"fmt"
	"os"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// NewFromConfig constructs the backend instance for one endpoint
// declaration.
//
// Supported backend types:
//   - "http": remote JSON search API; properties: url (required),
//     api_key_env (optional, names the env var holding the key)
//   - "static": YAML corpus on disk; properties: path (required)
func NewFromConfig(ep config.EndpointConfig) (DataBackend, error) {
	switch ep.BackendType {
	case "http":
		baseURL := ep.Properties["url"]
		if baseURL == "" {
			return nil, fmt.Errorf("%w: endpoint %q needs a url property", nlweb.ErrInvalidArgument, ep.ID)
		}
		var apiKey string
		if env := ep.Properties["api_key_env"]; env != "" {
			apiKey = os.Getenv(env)
		}
		return NewHTTPBackend(baseURL, apiKey)

	case "static":
		path := ep.Properties["path"]
		if path == "" {
			return nil, fmt.Errorf("%w: endpoint %q needs a path property", nlweb.ErrInvalidArgument, ep.ID)
		}
		return NewStaticBackend(path)

	default:
		return nil, fmt.Errorf("%w: endpoint %q has unsupported backend type %q (supported: http, static)",
			nlweb.ErrInvalidArgument, ep.ID, ep.BackendType)
	}
}

// BuildAll constructs instances for every enabled endpoint declaration,
// keyed by endpoint id.
func BuildAll(cfg config.MultiBackendConfig) (map[string]DataBackend, error) {
	out := make(map[string]DataBackend, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		if !ep.Enabled {
			continue
		}
		instance, err := NewFromConfig(ep)
		if err != nil {
			return nil, err
		}
		out[ep.ID] = instance
	}
	return out, nil
}
