package widevine

import (
	"encoding/base64"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SystemID is the Widevine DRM system id found in PSSH boxes and ContentProtection elements.
var SystemID = uuid.MustParse("edef8ba9-79d6-4ace-a3c8-27dcd51d21ed")

const (
	ContentType = "application/octet-stream"
	LicensePath = "license-proxy-widevine/cenc/"
)

// DecodeLicense extracts the license from the JSON envelope returned by the license server.
func DecodeLicense(body []byte) ([]byte, error) {
	var data struct {
		License string `json:"license"`
	}

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "json parse response")
	}

	if data.License == "" {
		return nil, errors.New("no license payload received")
	}

	payload, err := base64.StdEncoding.DecodeString(data.License)

	if err != nil {
		return nil, errors.Wrap(err, "base64 decode payload")
	}

	return payload, nil
}
