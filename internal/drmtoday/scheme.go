package drmtoday

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"drmtoday-proxy/internal/playready"
	"drmtoday-proxy/internal/widevine"
)

// Scheme is one of the DRM systems DRMtoday issues licenses for.
type Scheme int

const (
	Widevine Scheme = iota
	PlayReady
)

// SchemeForSystemID selects Widevine for its system id and PlayReady for anything else.
func SchemeForSystemID(id uuid.UUID) Scheme {
	if id == widevine.SystemID {
		return Widevine
	}

	return PlayReady
}

func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(s) {
	case "widevine":
		return Widevine, nil
	case "playready":
		return PlayReady, nil
	}

	return 0, errors.Errorf("unknown drm scheme %q", s)
}

func (s Scheme) String() string {
	if s == Widevine {
		return "widevine"
	}

	return "playready"
}

func (s Scheme) SystemID() uuid.UUID {
	if s == Widevine {
		return widevine.SystemID
	}

	return playready.SystemID
}

func (s Scheme) licensePath() string {
	if s == Widevine {
		return widevine.LicensePath
	}

	return playready.LicensePath
}

func (s Scheme) setHeaders(h http.Header) {
	if s == Widevine {
		h.Set("Content-Type", widevine.ContentType)
		return
	}

	h.Set("Content-Type", playready.ContentType)
	h.Set("SOAPAction", playready.SOAPAction)
}

func (s Scheme) decode(body []byte) ([]byte, error) {
	var (
		license []byte
		err     error
	)

	if s == Widevine {
		license, err = widevine.DecodeLicense(body)
	} else {
		license, err = playready.DecodeLicense(body)
	}

	if err != nil {
		return nil, &DecodeError{Scheme: s, Err: err}
	}

	return license, nil
}
