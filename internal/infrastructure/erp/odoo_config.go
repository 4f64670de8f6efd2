package erp

import "errors"

// defaultOdooTimeoutSeconds is the request timeout used when none is configured
const defaultOdooTimeoutSeconds = 30

var (
	// ErrOdooConfigMissingBaseURL indicates the server URL is not set
	ErrOdooConfigMissingBaseURL = errors.New("odoo: base URL is required")
	// ErrOdooConfigMissingDatabase indicates the database name is not set
	ErrOdooConfigMissingDatabase = errors.New("odoo: database is required")
	// ErrOdooConfigMissingAPIKey indicates the API key is not set
	ErrOdooConfigMissingAPIKey = errors.New("odoo: API key is required")
)

// OdooConfig holds the configuration for the Odoo JSON-RPC endpoint
type OdooConfig struct {
	// BaseURL is the Odoo server URL
	BaseURL string
	// Database is the Odoo database name
	Database string
	// Username is the integration user login
	Username string
	// APIKey authenticates the integration user
	APIKey string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewOdooConfig creates a new Odoo configuration with defaults
func NewOdooConfig(baseURL, database, username, apiKey string) *OdooConfig {
	return &OdooConfig{
		BaseURL:        baseURL,
		Database:       database,
		Username:       username,
		APIKey:         apiKey,
		TimeoutSeconds: defaultOdooTimeoutSeconds,
	}
}

// Validate checks the configuration and fills in defaults
func (c *OdooConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrOdooConfigMissingBaseURL
	}
	if c.Database == "" {
		return ErrOdooConfigMissingDatabase
	}
	if c.APIKey == "" {
		return ErrOdooConfigMissingAPIKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultOdooTimeoutSeconds
	}
	return nil
}
