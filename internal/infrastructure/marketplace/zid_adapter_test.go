package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestZidConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ZidConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &ZidConfig{AccessToken: "token", StoreID: "store-1"},
			wantErr: nil,
		},
		{
			name:    "missing access token",
			config:  &ZidConfig{StoreID: "store-1"},
			wantErr: ErrZidConfigMissingAccessToken,
		},
		{
			name:    "missing store ID",
			config:  &ZidConfig{AccessToken: "token"},
			wantErr: ErrZidConfigMissingStoreID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, ZidProductionAPIURL, tt.config.APIBaseURL)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func TestNewZidConfig(t *testing.T) {
	config := NewZidConfig("token", "store-1")
	assert.Equal(t, "token", config.AccessToken)
	assert.Equal(t, "store-1", config.StoreID)
	assert.Equal(t, ZidProductionAPIURL, config.APIBaseURL)
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

// createTestZidAdapter returns an adapter pointed at the given test server
func createTestZidAdapter(t *testing.T, server *httptest.Server) *ZidAdapter {
	t.Helper()
	config := NewZidConfig("test-token", "store-1")
	config.APIBaseURL = server.URL
	adapter, err := NewZidAdapter(config)
	require.NoError(t, err)
	return adapter
}

func createMockZidServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestNewZidAdapter(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		adapter, err := NewZidAdapter(NewZidConfig("token", "store-1"))
		require.NoError(t, err)
		assert.Equal(t, integration.ProviderZid, adapter.ProviderCode())
	})

	t.Run("invalid config", func(t *testing.T) {
		adapter, err := NewZidAdapter(&ZidConfig{})
		assert.Error(t, err)
		assert.Nil(t, adapter)
	})
}

func TestZidAdapter_TestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/account/profile", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "store-1", r.Header.Get("Store-Id"))
			json.NewEncoder(w).Encode(ZidProfileResponse{
				ZidEnvelope: ZidEnvelope{Status: "success"},
				StoreID:     "store-1",
			})
		})

		adapter := createTestZidAdapter(t, server)
		err := adapter.TestConnection(context.Background(), uuid.New())
		assert.NoError(t, err)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		adapter := createTestZidAdapter(t, server)
		err := adapter.TestConnection(context.Background(), uuid.New())
		assert.ErrorIs(t, err, integration.ErrConnectionFailed)
	})
}

func TestZidAdapter_ApproveOrder(t *testing.T) {
	var gotBody zidStatusChangeRequest
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders/EXT-100/status", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(ZidEnvelope{Status: "success"})
	})

	adapter := createTestZidAdapter(t, server)
	err := adapter.ApproveOrder(context.Background(), uuid.New(), "EXT-100")
	require.NoError(t, err)
	assert.Equal(t, "approved", gotBody.Status)
	assert.Empty(t, gotBody.Reason)
}

func TestZidAdapter_RejectOrder(t *testing.T) {
	var gotBody zidStatusChangeRequest
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(ZidEnvelope{Status: "success"})
	})

	adapter := createTestZidAdapter(t, server)
	err := adapter.RejectOrder(context.Background(), uuid.New(), "EXT-100", "out of stock")
	require.NoError(t, err)
	assert.Equal(t, "rejected", gotBody.Status)
	assert.Equal(t, "out of stock", gotBody.Reason)
}

func TestZidAdapter_RejectOrder_APIError(t *testing.T) {
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ZidEnvelope{Status: "error", Message: "order already shipped"})
	})

	adapter := createTestZidAdapter(t, server)
	err := adapter.RejectOrder(context.Background(), uuid.New(), "EXT-100", "mistake")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order already shipped")
}

func TestZidAdapter_CreateShipment(t *testing.T) {
	var gotBody zidShipmentRequest
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/EXT-100/shipment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(ZidEnvelope{Status: "success"})
	})

	adapter := createTestZidAdapter(t, server)
	err := adapter.CreateShipment(context.Background(), uuid.New(), "EXT-100", integration.ShipmentInfo{
		TrackingNumber: "TRK-9",
		Carrier:        "aramex",
		TrackingURL:    "https://track.example/TRK-9",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRK-9", gotBody.TrackingNumber)
	assert.Equal(t, "aramex", gotBody.Carrier)
	assert.Equal(t, "https://track.example/TRK-9", gotBody.TrackingURL)
}

func TestZidAdapter_GetOrderStatus(t *testing.T) {
	t.Run("returns raw status name", func(t *testing.T) {
		server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/EXT-100", r.URL.Path)
			json.NewEncoder(w).Encode(ZidOrderDetailResponse{
				ZidEnvelope: ZidEnvelope{Status: "success"},
				Order: &ZidOrder{
					ID:          "EXT-100",
					OrderStatus: ZidOrderStatus{Name: "Shipped", Code: "shipped"},
				},
			})
		})

		adapter := createTestZidAdapter(t, server)
		status, err := adapter.GetOrderStatus(context.Background(), uuid.New(), "EXT-100")
		require.NoError(t, err)
		assert.Equal(t, "Shipped", status)
	})

	t.Run("missing order payload", func(t *testing.T) {
		server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ZidEnvelope{Status: "success"})
		})

		adapter := createTestZidAdapter(t, server)
		_, err := adapter.GetOrderStatus(context.Background(), uuid.New(), "EXT-100")
		assert.ErrorIs(t, err, integration.ErrInvalidResponse)
	})

	t.Run("http error", func(t *testing.T) {
		server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		adapter := createTestZidAdapter(t, server)
		_, err := adapter.GetOrderStatus(context.Background(), uuid.New(), "EXT-100")
		assert.ErrorIs(t, err, integration.ErrRequestFailed)
	})

	t.Run("unlinked order", func(t *testing.T) {
		adapter, err := NewZidAdapter(NewZidConfig("token", "store-1"))
		require.NoError(t, err)
		_, err = adapter.GetOrderStatus(context.Background(), uuid.New(), "")
		assert.ErrorIs(t, err, integration.ErrOrderNotLinked)
	})
}

func TestZidAdapter_TenantConfigFallback(t *testing.T) {
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ZidProfileResponse{ZidEnvelope: ZidEnvelope{Status: "success"}})
	})

	adapter := createTestZidAdapter(t, server)
	tenantID := uuid.New()

	tenantConfig := NewZidConfig("tenant-token", "store-2")
	tenantConfig.APIBaseURL = server.URL
	require.NoError(t, adapter.SetTenantConfig(tenantID, tenantConfig))

	got, err := adapter.getTenantConfig(tenantID)
	require.NoError(t, err)
	assert.Equal(t, "tenant-token", got.AccessToken)

	fallback, err := adapter.getTenantConfig(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "test-token", fallback.AccessToken)
}
