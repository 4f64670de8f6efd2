package marketplace

// ZidEnvelope is the common response wrapper for the Zid API
type ZidEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// IsSuccess reports whether the API call succeeded
func (e *ZidEnvelope) IsSuccess() bool {
	return e.Status == "success"
}

// ZidOrder is the order payload returned by the order detail endpoint
type ZidOrder struct {
	ID          string         `json:"id"`
	OrderStatus ZidOrderStatus `json:"order_status"`
}

// ZidOrderStatus is the nested status object on a Zid order
type ZidOrderStatus struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// ZidOrderDetailResponse is the response of GET /orders/{id}
type ZidOrderDetailResponse struct {
	ZidEnvelope
	Order *ZidOrder `json:"order"`
}

// ZidProfileResponse is the response of GET /account/profile
type ZidProfileResponse struct {
	ZidEnvelope
	StoreID string `json:"store_id,omitempty"`
}

// zidStatusChangeRequest is the body of POST /orders/{id}/status
type zidStatusChangeRequest struct {
	Status string `json:"order_status"`
	Reason string `json:"reason,omitempty"`
}

// zidShipmentRequest is the body of POST /orders/{id}/shipment
type zidShipmentRequest struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"courier_name"`
	TrackingURL    string `json:"tracking_url,omitempty"`
}
