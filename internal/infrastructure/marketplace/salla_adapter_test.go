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

func createTestSallaAdapter(t *testing.T, server *httptest.Server) *SallaAdapter {
	t.Helper()
	config := NewSallaConfig("salla-token")
	config.APIBaseURL = server.URL
	adapter, err := NewSallaAdapter(config)
	require.NoError(t, err)
	return adapter
}

func TestSallaConfig_Validate(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		err := (&SallaConfig{}).Validate()
		assert.ErrorIs(t, err, ErrSallaConfigMissingAccessToken)
	})

	t.Run("defaults filled", func(t *testing.T) {
		config := &SallaConfig{AccessToken: "token"}
		require.NoError(t, config.Validate())
		assert.Equal(t, SallaProductionAPIURL, config.APIBaseURL)
		assert.Equal(t, defaultSallaTimeoutSeconds, config.TimeoutSeconds)
	})
}

func TestSallaAdapter_ApproveOrder(t *testing.T) {
	var gotBody map[string]string
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/SA-7/status", r.URL.Path)
		assert.Equal(t, "Bearer salla-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(sallaEnvelope{Success: true})
	})

	adapter := createTestSallaAdapter(t, server)
	err := adapter.ApproveOrder(context.Background(), uuid.New(), "SA-7")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", gotBody["slug"])
}

func TestSallaAdapter_RejectOrder(t *testing.T) {
	var gotBody map[string]string
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(sallaEnvelope{Success: true})
	})

	adapter := createTestSallaAdapter(t, server)
	err := adapter.RejectOrder(context.Background(), uuid.New(), "SA-7", "duplicate order")
	require.NoError(t, err)
	assert.Equal(t, "canceled", gotBody["slug"])
	assert.Equal(t, "duplicate order", gotBody["note"])
}

func TestSallaAdapter_GetOrderStatus(t *testing.T) {
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/SA-7", r.URL.Path)
		resp := sallaOrderResponse{sallaEnvelope: sallaEnvelope{Success: true}}
		resp.Data.ID = 7
		resp.Data.Status.Slug = "delivered"
		resp.Data.Status.Name = "Delivered"
		json.NewEncoder(w).Encode(resp)
	})

	adapter := createTestSallaAdapter(t, server)
	status, err := adapter.GetOrderStatus(context.Background(), uuid.New(), "SA-7")
	require.NoError(t, err)
	assert.Equal(t, "delivered", status)
}

func TestSallaAdapter_CreateShipment_APIError(t *testing.T) {
	server := createMockZidServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := sallaEnvelope{Success: false}
		resp.Error.Message = "carrier not supported"
		json.NewEncoder(w).Encode(resp)
	})

	adapter := createTestSallaAdapter(t, server)
	err := adapter.CreateShipment(context.Background(), uuid.New(), "SA-7", integration.ShipmentInfo{
		TrackingNumber: "TRK-1",
		Carrier:        "unknown",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier not supported")
}
