package drmtoday

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// maxManualRedirects bounds how many 307/308 hops a single POST may follow.
const maxManualRedirects = 5

// maxErrorBody limits how much of a failed response is kept in a TransportError.
const maxErrorBody = 4 << 10

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client that follows ordinary redirects but hands 307 and 308 back to the
// caller, which replays the POST body itself.
func NewHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if isManualRedirect(req.Response.StatusCode) {
				return http.ErrUseLastResponse
			}

			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}

			return nil
		},
	}
}

func isManualRedirect(code int) bool {
	return code == http.StatusTemporaryRedirect || code == http.StatusPermanentRedirect
}

type postState int

const (
	stateSending postState = iota
	stateAwaitingResponse
	stateRedirecting
	stateDone
	stateFailed
)

// post sends data to target and returns the response body of the final 2xx response.
func post(ctx context.Context, client Doer, logger *zap.Logger, target string, data []byte, header http.Header) ([]byte, error) {
	var (
		state     = stateSending
		redirects int
		res       *http.Response
		body      []byte
		err       error
	)

	for {
		switch state {
		case stateSending:
			var req *http.Request

			req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))

			if err != nil {
				err = errors.Wrap(err, "create POST request")
				state = stateFailed
				continue
			}

			for k, v := range header {
				req.Header[k] = append([]string(nil), v...)
			}

			res, err = client.Do(req)

			if err != nil {
				err = &TransportError{URL: target, Err: err}
				state = stateFailed
				continue
			}

			state = stateAwaitingResponse

		case stateAwaitingResponse:
			body, err = io.ReadAll(res.Body)
			_ = res.Body.Close()

			if err != nil {
				err = &TransportError{URL: target, StatusCode: res.StatusCode, Status: res.Status, Err: errors.Wrap(err, "read body response")}
				state = stateFailed
				continue
			}

			if res.StatusCode >= 200 && res.StatusCode < 300 {
				state = stateDone
				continue
			}

			err = statusError(target, res, body)

			if isManualRedirect(res.StatusCode) && res.Header.Get("Location") != "" && redirects < maxManualRedirects {
				state = stateRedirecting
				continue
			}

			state = stateFailed

		case stateRedirecting:
			next, perr := resolveLocation(target, res.Header.Get("Location"))

			if perr != nil {
				state = stateFailed
				continue
			}

			redirects++
			logger.Debug("following redirect",
				zap.Int("status", res.StatusCode),
				zap.String("location", next),
				zap.Int("redirect", redirects))

			target = next
			err = nil
			state = stateSending

		case stateDone:
			return body, nil

		case stateFailed:
			return nil, err
		}
	}
}

func statusError(target string, res *http.Response, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	te := TransportError{
		URL:        target,
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Body:       body,
	}

	if res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone {
		return &NotFoundError{TransportError: te}
	}

	return &te
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)

	if err != nil {
		return "", err
	}

	ref, err := url.Parse(location)

	if err != nil {
		return "", err
	}

	return base.ResolveReference(ref).String(), nil
}
