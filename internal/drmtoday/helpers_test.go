package drmtoday

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

type scriptedResponse struct {
	status   int
	location string
	body     string
}

// scriptedServer answers requests with the scripted responses in order, repeating the last one.
type scriptedServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses []scriptedResponse
	requests  []recordedRequest
}

func newScriptedServer(t *testing.T, responses ...scriptedResponse) *scriptedServer {
	s := &scriptedServer{responses: responses}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		i := len(s.requests)
		s.requests = append(s.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		if i >= len(s.responses) {
			i = len(s.responses) - 1
		}
		res := s.responses[i]
		s.mu.Unlock()

		if res.location != "" {
			w.Header().Set("Location", res.location)
		}

		w.WriteHeader(res.status)
		_, _ = io.WriteString(w, res.body)
	}))

	t.Cleanup(s.Close)

	return s
}

func (s *scriptedServer) Requests() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]recordedRequest(nil), s.requests...)
}
