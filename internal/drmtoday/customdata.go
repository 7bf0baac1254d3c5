package drmtoday

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

type customData struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Merchant  string `json:"merchant"`
}

// encodeCustomData builds the dt-custom-data header value.
func encodeCustomData(c Config) string {
	b, err := json.Marshal(customData{
		UserID:    c.UserID,
		SessionID: c.SessionID,
		Merchant:  c.Merchant,
	})

	if err != nil {
		panic(errors.Wrap(err, "unable to encode request data"))
	}

	return base64.StdEncoding.EncodeToString(b)
}
