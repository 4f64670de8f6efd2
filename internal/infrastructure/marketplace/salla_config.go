package marketplace

import "errors"

// SallaProductionAPIURL is the production API base URL for Salla
const SallaProductionAPIURL = "https://api.salla.dev/admin/v2"

// defaultSallaTimeoutSeconds is the request timeout used when none is configured
const defaultSallaTimeoutSeconds = 30

var (
	// ErrSallaConfigMissingAccessToken indicates the access token is not set
	ErrSallaConfigMissingAccessToken = errors.New("salla: access token is required")
)

// SallaConfig holds the configuration for Salla API access
type SallaConfig struct {
	// AccessToken is the OAuth merchant token
	AccessToken string
	// APIBaseURL is the base URL for API calls
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewSallaConfig creates a new Salla configuration with production defaults
func NewSallaConfig(accessToken string) *SallaConfig {
	return &SallaConfig{
		AccessToken:    accessToken,
		APIBaseURL:     SallaProductionAPIURL,
		TimeoutSeconds: defaultSallaTimeoutSeconds,
	}
}

// Validate checks the configuration and fills in defaults
func (c *SallaConfig) Validate() error {
	if c.AccessToken == "" {
		return ErrSallaConfigMissingAccessToken
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = SallaProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultSallaTimeoutSeconds
	}
	return nil
}
