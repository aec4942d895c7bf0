package backend

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// staticBackend serves results from a YAML corpus loaded at startup. It is
// meant for development and testing setups without a live search backend.
type staticBackend struct {
	entries []staticEntry
}

type staticEntry struct {
	Name        string `yaml:"title"`
	URL         string `yaml:"url"`
	Description string `yaml:"snippet"`
	Site        string `yaml:"site"`
}

type staticDoc struct {
	Results []staticEntry `yaml:"results"`
}

// NewStaticBackend loads a YAML results corpus from path.
func NewStaticBackend(path string) (DataBackend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read static corpus %s: %w", path, err)
	}
	var doc staticDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse static corpus %s: %w", path, err)
	}
	return &staticBackend{entries: doc.Results}, nil
}

// Search scores entries by term overlap with the query.
func (b *staticBackend) Search(ctx context.Context, query, site string, maxResults int) ([]nlweb.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var out []nlweb.Result
	for _, e := range b.entries {
		if site != "" && e.Site != site {
			continue
		}
		haystack := strings.ToLower(e.Name + " " + e.Description)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, nlweb.Result{
			Name:        e.Name,
			URL:         e.URL,
			Description: e.Description,
			Site:        e.Site,
			Score:       float64(matched) / float64(len(terms)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}
