package drmtoday

import (
	"crypto/rand"
	"encoding/hex"
)

const requestIDSize = 16

// newRequestID returns a random token the backend prints in its logs for this request.
func newRequestID() string {
	b := make([]byte, requestIDSize)

	// crypto/rand.Read only fails when the system entropy source is unusable.
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}

	return hex.EncodeToString(b)
}
