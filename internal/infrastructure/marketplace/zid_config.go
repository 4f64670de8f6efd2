package marketplace

import "errors"

// ZidConfig holds configuration for the Zid storefront API integration
type ZidConfig struct {
	// AccessToken is the merchant's API token
	AccessToken string
	// StoreID is the store identifier in Zid
	StoreID string
	// APIBaseURL is the base URL for the Zid API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// ZidProductionAPIURL is the production API endpoint
const ZidProductionAPIURL = "https://api.zid.sa/v1"

// Errors for Zid configuration
var (
	ErrZidConfigMissingAccessToken = errors.New("zid: access token is required")
	ErrZidConfigMissingStoreID     = errors.New("zid: store ID is required")
)

// NewZidConfig creates a new Zid configuration with defaults
func NewZidConfig(accessToken, storeID string) *ZidConfig {
	return &ZidConfig{
		AccessToken:    accessToken,
		StoreID:        storeID,
		APIBaseURL:     ZidProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Zid configuration
func (c *ZidConfig) Validate() error {
	if c.AccessToken == "" {
		return ErrZidConfigMissingAccessToken
	}
	if c.StoreID == "" {
		return ErrZidConfigMissingStoreID
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = ZidProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
