package drmtoday

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	assetIDParam      = "assetId"
	logRequestIDParam = "logRequestId"

	customDataHeader = "dt-custom-data"
	authTokenHeader  = "x-dt-auth-token"
)

type licenseRequest struct {
	url       string
	header    http.Header
	requestID string
}

// buildLicenseRequest targets the configured backend. A default URL supplied by the CDM is never used.
func buildLicenseRequest(c Config, s Scheme, requestID string) (*licenseRequest, error) {
	u, err := url.Parse(c.BaseURL)

	if err != nil {
		return nil, errors.Wrap(err, "parse backend url")
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + s.licensePath()
	u.RawPath = ""

	query := logRequestIDParam + "=" + url.QueryEscape(requestID)

	if c.AssetID != "" {
		query += "&" + assetIDParam + "=" + url.QueryEscape(c.AssetID)
	}

	if u.RawQuery != "" {
		u.RawQuery += "&" + query
	} else {
		u.RawQuery = query
	}

	header := make(http.Header)
	header.Set(customDataHeader, encodeCustomData(c))

	if c.AuthToken != "" {
		header.Set(authTokenHeader, c.AuthToken)
	}

	s.setHeaders(header)

	return &licenseRequest{
		url:       u.String(),
		header:    header,
		requestID: requestID,
	}, nil
}

// provisionURL appends the signed request to the provisioning URL handed over by the CDM.
func provisionURL(defaultURL string, data []byte) string {
	return defaultURL + "&signedRequest=" + url.QueryEscape(string(data))
}
