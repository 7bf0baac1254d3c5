package drmtoday

import "strings"

// Base URLs of the DRMtoday license backends.
const (
	Production = "https://lic.drmtoday.com"
	Staging    = "https://lic.staging.drmtoday.com"
	Test       = "https://lic.test.drmtoday.com"
)

// ParseEnvironment maps a well-known environment name to its URL. Anything else is taken as a custom URL.
func ParseEnvironment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging":
		return Staging
	case "test":
		return Test
	}

	return s
}

// Config identifies the playback session towards the license backend.
// AuthToken and AssetID are optional, an empty value means not set.
type Config struct {
	BaseURL   string
	Merchant  string
	UserID    string
	SessionID string
	AuthToken string
	AssetID   string
}

func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return &ConfigError{Field: "DRMtoday backend URL"}
	case c.Merchant == "":
		return &ConfigError{Field: "merchant"}
	case c.UserID == "":
		return &ConfigError{Field: "userId"}
	case c.SessionID == "":
		return &ConfigError{Field: "sessionId"}
	}

	return nil
}
