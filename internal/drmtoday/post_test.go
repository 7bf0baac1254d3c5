package drmtoday

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/octet-stream")
	h.Set("dt-custom-data", "eyJ1c2VySWQiOiJ1MSJ9")
	h.Set("x-dt-auth-token", "token")

	return h
}

func TestPostFollowsTemporaryRedirects(t *testing.T) {
	srv := newScriptedServer(t,
		scriptedResponse{status: http.StatusTemporaryRedirect, location: "/hop1"},
		scriptedResponse{status: http.StatusTemporaryRedirect, location: "/hop2"},
		scriptedResponse{status: http.StatusOK, body: "license"},
	)

	body, err := post(context.Background(), NewHTTPClient(), zap.NewNop(), srv.URL+"/start", []byte("challenge"), testHeader())

	require.NoError(t, err)
	assert.Equal(t, []byte("license"), body)

	requests := srv.Requests()
	require.Len(t, requests, 3)
	assert.Equal(t, []string{"/start", "/hop1", "/hop2"}, []string{requests[0].Path, requests[1].Path, requests[2].Path})

	for _, r := range requests {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, []byte("challenge"), r.Body)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		assert.Equal(t, "eyJ1c2VySWQiOiJ1MSJ9", r.Header.Get("dt-custom-data"))
		assert.Equal(t, "token", r.Header.Get("x-dt-auth-token"))
	}
}

func TestPostRedirectBound(t *testing.T) {
	srv := newScriptedServer(t,
		scriptedResponse{status: http.StatusPermanentRedirect, location: "/again", body: "moved"},
	)

	body, err := post(context.Background(), NewHTTPClient(), zap.NewNop(), srv.URL, []byte("challenge"), testHeader())

	assert.Nil(t, body)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusPermanentRedirect, transportErr.StatusCode)
	assert.Equal(t, []byte("moved"), transportErr.Body)

	// initial request plus five redirects
	assert.Len(t, srv.Requests(), 1+maxManualRedirects)
}

func TestPostRedirectWithoutLocation(t *testing.T) {
	srv := newScriptedServer(t,
		scriptedResponse{status: http.StatusTemporaryRedirect},
		scriptedResponse{status: http.StatusOK, body: "unreachable"},
	)

	_, err := post(context.Background(), NewHTTPClient(), zap.NewNop(), srv.URL, []byte("challenge"), testHeader())

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusTemporaryRedirect, transportErr.StatusCode)
	assert.Len(t, srv.Requests(), 1)
}

func TestPostErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
	}{
		{name: "forbidden", status: http.StatusForbidden},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "not found", status: http.StatusNotFound, notFound: true},
		{name: "gone", status: http.StatusGone, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newScriptedServer(t, scriptedResponse{status: tt.status, location: "/ignored", body: "nope"})

			_, err := post(context.Background(), NewHTTPClient(), zap.NewNop(), srv.URL, nil, nil)

			var transportErr *TransportError
			require.True(t, errors.As(err, &transportErr))
			assert.Equal(t, tt.status, transportErr.StatusCode)

			var notFoundErr *NotFoundError
			assert.Equal(t, tt.notFound, errors.As(err, &notFoundErr))
			assert.Len(t, srv.Requests(), 1)
		})
	}
}

func TestPostAbsoluteRedirect(t *testing.T) {
	target := newScriptedServer(t, scriptedResponse{status: http.StatusOK, body: "from target"})
	origin := newScriptedServer(t, scriptedResponse{status: http.StatusPermanentRedirect, location: target.URL + "/license"})

	body, err := post(context.Background(), NewHTTPClient(), zap.NewNop(), origin.URL, []byte("challenge"), testHeader())

	require.NoError(t, err)
	assert.Equal(t, []byte("from target"), body)

	requests := target.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/license", requests[0].Path)
	assert.Equal(t, []byte("challenge"), requests[0].Body)
}

func TestPostConnectionFailure(t *testing.T) {
	srv := newScriptedServer(t, scriptedResponse{status: http.StatusOK})
	srv.Close()

	_, err := post(context.Background(), NewHTTPClient(), zap.NewNop(), srv.URL, []byte("challenge"), nil)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.StatusCode)
	assert.Error(t, transportErr.Err)
}

func TestPostCanceledContext(t *testing.T) {
	srv := newScriptedServer(t, scriptedResponse{status: http.StatusOK})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := post(ctx, NewHTTPClient(), zap.NewNop(), srv.URL, nil, nil)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewHTTPClientCheckRedirect(t *testing.T) {
	client := NewHTTPClient()

	for _, code := range []int{http.StatusTemporaryRedirect, http.StatusPermanentRedirect} {
		req := &http.Request{Response: &http.Response{StatusCode: code}}
		assert.Equal(t, http.ErrUseLastResponse, client.CheckRedirect(req, []*http.Request{{}}))
	}

	req := &http.Request{Response: &http.Response{StatusCode: http.StatusFound}}
	assert.NoError(t, client.CheckRedirect(req, []*http.Request{{}}))
	assert.Error(t, client.CheckRedirect(req, make([]*http.Request, 10)))
}
