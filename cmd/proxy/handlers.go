package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"drmtoday-proxy/internal/drmtoday"
	"drmtoday-proxy/internal/manifest"
	"drmtoday-proxy/internal/playready"
	"drmtoday-proxy/internal/widevine"
)

// maxChallengeSize caps license and provisioning request bodies.
const maxChallengeSize = 1 << 20

type server struct {
	callback  *drmtoday.Callback
	client    manifest.Doer
	logger    *zap.Logger
	stripText bool
}

func (s *server) router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", s.home).Methods(http.MethodGet)
	router.HandleFunc("/license/{scheme:widevine|playready}", s.license).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/provision", s.provision).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/session", s.session).Methods(http.MethodPut, http.MethodOptions)
	router.HandleFunc("/manifest", s.manifest).Methods(http.MethodGet, http.MethodOptions)

	return router
}

func (s *server) home(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("DRMtoday Proxy"))
}

func (s *server) license(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		return
	}

	scheme, err := drmtoday.ParseScheme(mux.Vars(r)["scheme"])

	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	challenge, err := readBody(w, r)

	if err != nil {
		http.Error(w, err.Error(), bodyErrorStatus(err))
		return
	}

	license, err := s.callback.AcquireLicense(r.Context(), scheme, challenge)

	if err != nil {
		s.logger.Error("license request failed",
			zap.String("log_request_id", drmtoday.RequestID(err)),
			zap.Stringer("scheme", scheme),
			zap.Error(err))
		http.Error(w, err.Error(), licenseErrorStatus(err))
		return
	}

	if scheme == drmtoday.PlayReady {
		w.Header().Set("Content-Type", playready.ContentType)
	} else {
		w.Header().Set("Content-Type", widevine.ContentType)
	}

	_, _ = w.Write(license)
}

// readBody rejects bodies over maxChallengeSize instead of forwarding a truncated payload.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxChallengeSize))
}

func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError

	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	return http.StatusBadRequest
}

func licenseErrorStatus(err error) int {
	var (
		configErr   *drmtoday.ConfigError
		notFoundErr *drmtoday.NotFoundError
	)

	switch {
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	}

	return http.StatusBadGateway
}

func (s *server) provision(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		return
	}

	target := r.URL.Query().Get("url")

	if target == "" {
		http.Error(w, "missing provisioning url", http.StatusBadRequest)
		return
	}

	data, err := readBody(w, r)

	if err != nil {
		http.Error(w, err.Error(), bodyErrorStatus(err))
		return
	}

	res := s.callback.ExecuteProvisionRequest(r.Context(), widevine.SystemID, drmtoday.ProvisionRequest{
		Data:       bytes.TrimSpace(data),
		DefaultURL: target,
	})

	if res == nil {
		http.Error(w, "provisioning failed", http.StatusBadGateway)
		return
	}

	_, _ = w.Write(res)
}

type sessionRequest struct {
	Environment string `json:"environment"`
	Merchant    string `json:"merchant"`
	UserID      string `json:"userId"`
	SessionID   string `json:"sessionId"`
	AuthToken   string `json:"authToken"`
	AssetID     string `json:"assetId"`
}

func (s *server) session(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", http.MethodPut)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		return
	}

	var req sessionRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChallengeSize)).Decode(&req); err != nil {
		http.Error(w, errors.Wrap(err, "json parse session").Error(), bodyErrorStatus(err))
		return
	}

	environment := req.Environment

	if environment == "" {
		environment = s.callback.Config().BaseURL
	}

	cfg := drmtoday.Config{
		BaseURL:   drmtoday.ParseEnvironment(environment),
		Merchant:  req.Merchant,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		AuthToken: req.AuthToken,
		AssetID:   req.AssetID,
	}

	if err := s.callback.Configure(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("session configured",
		zap.String("backend", cfg.BaseURL),
		zap.String("merchant", cfg.Merchant),
		zap.String("session_id", cfg.SessionID))

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) manifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		return
	}

	src := r.URL.Query().Get("src")

	if src == "" {
		http.Error(w, "missing manifest url", http.StatusBadRequest)
		return
	}

	m, err := manifest.Fetch(r.Context(), s.client, src)

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if err := manifest.Rewrite(m, src, s.stripText); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/dash+xml")
	_ = m.Write(w)
}
