package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/backend/internal/domain/integration"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	zid, err := NewZidAdapter(NewZidConfig("token", "store-1"))
	require.NoError(t, err)
	salla, err := NewSallaAdapter(NewSallaConfig("token"))
	require.NoError(t, err)

	require.NoError(t, registry.Register(zid))
	require.NoError(t, registry.Register(salla))

	got, err := registry.Get(integration.ProviderZid)
	require.NoError(t, err)
	assert.Equal(t, integration.ProviderZid, got.ProviderCode())

	got, err = registry.Get(integration.ProviderSalla)
	require.NoError(t, err)
	assert.Equal(t, integration.ProviderSalla, got.ProviderCode())

	assert.Len(t, registry.List(), 2)
}

func TestRegistry_GetUnsupportedProvider(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get(integration.ProviderWoo)
	assert.ErrorIs(t, err, integration.ErrUnsupportedProvider)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	registry := NewRegistry()

	zid, err := NewZidAdapter(NewZidConfig("token", "store-1"))
	require.NoError(t, err)

	require.NoError(t, registry.Register(zid))
	assert.Error(t, registry.Register(zid))
}
