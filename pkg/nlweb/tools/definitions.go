// Package tools implements tool selection and the tool handlers of the
// query core: search, compare, details and ensemble.
//
// A tool is a named strategy that orchestrates retrieval and generation for
// a request. The set of tools is closed; a registry maps tool names to
// handlers and an external YAML definitions document enables, disables and
// prioritizes them.
package tools

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// Known tool names. ToolNone means the default flow.
const (
	ToolSearch   = "search"
	ToolCompare  = "compare"
	ToolDetails  = "details"
	ToolEnsemble = "ensemble"
	ToolNone     = "none"
)

// knownTypes is the closed set of tool types a definition may declare.
var knownTypes = map[string]struct{}{
	ToolSearch:   {},
	ToolCompare:  {},
	ToolDetails:  {},
	ToolEnsemble: {},
}

// Definition declares one tool from the definitions document.
type Definition struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Enabled    bool              `yaml:"enabled"`
	Priority   int               `yaml:"priority"`
	Parameters map[string]string `yaml:"parameters"`
}

// definitionsDoc is the root of the YAML definitions document.
type definitionsDoc struct {
	Tools []Definition `yaml:"tools"`
}

// LoadDefinitions reads and validates the tool-definitions document at path.
// An empty path returns the built-in definitions.
func LoadDefinitions(path string) ([]Definition, error) {
	if path == "" {
		return BuiltinDefinitions(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tool definitions %s: %w", path, err)
	}

	var doc definitionsDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tool definitions %s: %w", path, err)
	}

	if err := validateDefinitions(doc.Tools); err != nil {
		return nil, err
	}
	return doc.Tools, nil
}

func validateDefinitions(defs []Definition) error {
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return fmt.Errorf("%w: tool definition id must not be empty", nlweb.ErrInvalidArgument)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("%w: duplicate tool definition id %q", nlweb.ErrInvalidArgument, def.ID)
		}
		seen[def.ID] = struct{}{}
		if _, ok := knownTypes[def.Type]; !ok {
			return fmt.Errorf("%w: tool %q has unknown type %q", nlweb.ErrInvalidArgument, def.ID, def.Type)
		}
	}
	return nil
}

// BuiltinDefinitions returns the default tool set used when no definitions
// document is configured.
func BuiltinDefinitions() []Definition {
	return []Definition{
		{ID: "search", Name: "Search", Type: ToolSearch, Enabled: true, Priority: 1},
		{ID: "compare", Name: "Compare", Type: ToolCompare, Enabled: true, Priority: 4},
		{ID: "details", Name: "Details", Type: ToolDetails, Enabled: true, Priority: 3},
		{ID: "ensemble", Name: "Ensemble", Type: ToolEnsemble, Enabled: true, Priority: 2},
	}
}
