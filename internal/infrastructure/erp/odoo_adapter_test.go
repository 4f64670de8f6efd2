package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/backend/internal/domain/integration"
)

// rpcCall captures one decoded JSON-RPC request for assertions
type rpcCall struct {
	Service string
	Method  string
	Args    []any
}

// newMockOdooServer returns a test server that answers the login call with
// uid 7 and delegates every object call to the handler. Calls are recorded.
func newMockOdooServer(t *testing.T, handler func(call rpcCall) (any, *jsonRPCError)) (*httptest.Server, *[]rpcCall) {
	t.Helper()

	var calls []rpcCall
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jsonrpc", r.URL.Path)

		var req jsonRPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		call := rpcCall{
			Service: req.Params["service"].(string),
			Method:  req.Params["method"].(string),
			Args:    req.Params["args"].([]any),
		}
		calls = append(calls, call)

		var result any
		var rpcErr *jsonRPCError
		if call.Service == "common" && call.Method == "login" {
			result = 7
		} else {
			result, rpcErr = handler(call)
		}

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func createTestOdooAdapter(t *testing.T, server *httptest.Server) *OdooAdapter {
	t.Helper()
	config := NewOdooConfig(server.URL, "orderhub", "integration", "api-key")
	adapter, err := NewOdooAdapter(config)
	require.NoError(t, err)
	return adapter
}

func TestOdooConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *OdooConfig
		wantErr error
	}{
		{"valid", &OdooConfig{BaseURL: "http://odoo", Database: "db", APIKey: "key"}, nil},
		{"missing base URL", &OdooConfig{Database: "db", APIKey: "key"}, ErrOdooConfigMissingBaseURL},
		{"missing database", &OdooConfig{BaseURL: "http://odoo", APIKey: "key"}, ErrOdooConfigMissingDatabase},
		{"missing API key", &OdooConfig{BaseURL: "http://odoo", Database: "db"}, ErrOdooConfigMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func TestOdooAdapter_FindPartnerByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server, calls := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
			return []map[string]any{{"id": 42}}, nil
		})

		adapter := createTestOdooAdapter(t, server)
		id, err := adapter.FindPartnerByEmail(context.Background(), uuid.New(), "buyer@example.com")
		require.NoError(t, err)
		assert.Equal(t, "42", id)

		// First call authenticates, second executes the search
		require.Len(t, *calls, 2)
		assert.Equal(t, "login", (*calls)[0].Method)
		assert.Equal(t, "execute_kw", (*calls)[1].Method)
	})

	t.Run("not found", func(t *testing.T) {
		server, _ := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
			return []map[string]any{}, nil
		})

		adapter := createTestOdooAdapter(t, server)
		_, err := adapter.FindPartnerByEmail(context.Background(), uuid.New(), "missing@example.com")
		assert.ErrorIs(t, err, integration.ErrPartnerNotFound)
	})
}

func TestOdooAdapter_CreatePartner(t *testing.T) {
	server, _ := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
		return 55, nil
	})

	adapter := createTestOdooAdapter(t, server)
	id, err := adapter.CreatePartner(context.Background(), uuid.New(), integration.PartnerData{
		Name:  "Sara Ali",
		Email: "sara@example.com",
		Phone: "+966500000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "55", id)
}

func TestOdooAdapter_CreateSaleOrder(t *testing.T) {
	var gotModel string
	var gotValues map[string]any
	server, _ := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
		gotModel = call.Args[3].(string)
		args := call.Args[5].([]any)
		gotValues = args[0].(map[string]any)
		return 101, nil
	})

	adapter := createTestOdooAdapter(t, server)
	id, err := adapter.CreateSaleOrder(context.Background(), uuid.New(), integration.SaleOrderData{
		PartnerID:   "42",
		OrderNumber: "ORD-1001",
		Currency:    "SAR",
		Lines: []integration.SaleOrderLine{
			{Name: "Keyboard", SKU: "SKU-1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("49.50")},
		},
		Total: decimal.RequireFromString("99.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "101", id)
	assert.Equal(t, "sale.order", gotModel)
	assert.Equal(t, "ORD-1001", gotValues["client_order_ref"])
	assert.Len(t, gotValues["order_line"], 1)
}

func TestOdooAdapter_CreateSaleOrder_InvalidPartnerID(t *testing.T) {
	server, _ := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
		return 0, nil
	})

	adapter := createTestOdooAdapter(t, server)
	_, err := adapter.CreateSaleOrder(context.Background(), uuid.New(), integration.SaleOrderData{
		PartnerID: "not-a-number",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid partner ID")
}

func TestOdooAdapter_CreateInvoice(t *testing.T) {
	var gotModel string
	var gotValues map[string]any
	server, _ := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
		gotModel = call.Args[3].(string)
		args := call.Args[5].([]any)
		gotValues = args[0].(map[string]any)
		return 202, nil
	})

	adapter := createTestOdooAdapter(t, server)
	id, err := adapter.CreateInvoice(context.Background(), uuid.New(), integration.InvoiceData{
		PartnerID:   "42",
		SaleOrderID: "101",
		Lines: []integration.SaleOrderLine{
			{Name: "Keyboard", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("49.50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "202", id)
	assert.Equal(t, "account.move", gotModel)
	assert.Equal(t, "out_invoice", gotValues["move_type"])
	assert.Equal(t, "101", gotValues["invoice_origin"])
}

func TestOdooAdapter_CreateStockPicking(t *testing.T) {
	server, _ := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
		return 303, nil
	})

	adapter := createTestOdooAdapter(t, server)
	id, err := adapter.CreateStockPicking(context.Background(), uuid.New(), integration.StockPickingData{
		PartnerID:   "42",
		SaleOrderID: "101",
		Lines: []integration.SaleOrderLine{
			{Name: "Keyboard", Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "303", id)
}

func TestOdooAdapter_ServerError(t *testing.T) {
	server, _ := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
		rpcErr := &jsonRPCError{Code: 200, Message: "Odoo Server Error"}
		rpcErr.Data.Message = "ValidationError: missing required field"
		return nil, rpcErr
	})

	adapter := createTestOdooAdapter(t, server)
	_, err := adapter.CreatePartner(context.Background(), uuid.New(), integration.PartnerData{Name: "x", Email: "x@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ValidationError")
}

func TestOdooAdapter_AuthenticatesOnce(t *testing.T) {
	server, calls := newMockOdooServer(t, func(call rpcCall) (any, *jsonRPCError) {
		return 1, nil
	})

	adapter := createTestOdooAdapter(t, server)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := adapter.CreatePartner(ctx, tenantID, integration.PartnerData{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = adapter.CreatePartner(ctx, tenantID, integration.PartnerData{Name: "b", Email: "b@example.com"})
	require.NoError(t, err)

	var logins int
	for _, call := range *calls {
		if call.Method == "login" {
			logins++
		}
	}
	assert.Equal(t, 1, logins)
}
