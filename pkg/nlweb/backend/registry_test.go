package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

type nopBackend struct{}

func (nopBackend) Search(context.Context, string, string, int) ([]nlweb.Result, error) {
	return nil, nil
}

func TestRegistryOrderingAndLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry("")
	require.NoError(t, r.Register(&Endpoint{ID: "low", Enabled: true, Priority: 1, Backend: nopBackend{}}))
	require.NoError(t, r.Register(&Endpoint{ID: "high", Enabled: true, Priority: 10, Backend: nopBackend{}}))
	require.NoError(t, r.Register(&Endpoint{ID: "off", Enabled: false, Priority: 99}))

	enabled := r.Enabled()
	require.Len(t, enabled, 2)
	assert.Equal(t, "high", enabled[0].ID)
	assert.Equal(t, "low", enabled[1].ID)

	assert.NotNil(t, r.Get("off"))
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, 3, r.Count())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry("")
	require.NoError(t, r.Register(&Endpoint{ID: "a", Backend: nopBackend{}}))
	err := r.Register(&Endpoint{ID: "a", Backend: nopBackend{}})
	require.ErrorIs(t, err, nlweb.ErrInvalidArgument)

	err = r.Register(&Endpoint{ID: ""})
	require.ErrorIs(t, err, nlweb.ErrInvalidArgument)
}

func TestRegistryWriteEndpoint(t *testing.T) {
	t.Parallel()

	r := NewRegistry("sink")
	require.NoError(t, r.Register(&Endpoint{ID: "sink", Enabled: true, Backend: nopBackend{}}))
	require.NoError(t, r.Register(&Endpoint{ID: "other", Enabled: true, Backend: nopBackend{}}))

	we := r.WriteEndpoint()
	require.NotNil(t, we)
	assert.Equal(t, "sink", we.ID)

	assert.Nil(t, NewRegistry("").WriteEndpoint())
}

func TestNewRegistryFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.MultiBackendConfig{
		WriteEndpoint: "primary",
		Endpoints: []config.EndpointConfig{
			{ID: "primary", Enabled: true, BackendType: "qdrant", Priority: 5},
			{ID: "secondary", Enabled: false, BackendType: "web"},
		},
	}

	r, err := NewRegistryFromConfig(cfg, map[string]DataBackend{"primary": nopBackend{}})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, "primary", r.WriteEndpoint().ID)

	// An enabled endpoint without an instance is a startup error.
	_, err = NewRegistryFromConfig(cfg, nil)
	require.ErrorIs(t, err, nlweb.ErrInvalidArgument)
}
