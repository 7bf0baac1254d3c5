// Package drmtoday acquires Widevine and PlayReady licenses from the castLabs DRMtoday backend on behalf
// of a CDM. Requests always go to the configured backend with the session's custom data attached.
//
// Calls block on network I/O. Configure may be called between playback sessions; it must not overlap
// with an in-flight request if the request is expected to see the new values.
package drmtoday

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KeyRequest is a license challenge produced by the CDM.
type KeyRequest struct {
	Data []byte
	// DefaultURL is the license URL the CDM found in the content. It is ignored.
	DefaultURL string
}

// ProvisionRequest is a device provisioning request produced by the CDM.
type ProvisionRequest struct {
	Data       []byte
	DefaultURL string
}

type Callback struct {
	client    Doer
	logger    *zap.Logger
	requestID func() string
	config    atomic.Pointer[Config]
}

type Option func(*Callback)

func WithHTTPClient(client Doer) Option {
	return func(c *Callback) {
		c.client = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Callback) {
		c.logger = logger
	}
}

// New returns an unconfigured callback. Configure must be called before the first key request.
func New(opts ...Option) *Callback {
	c := &Callback{
		client:    NewHTTPClient(),
		logger:    zap.L(),
		requestID: newRequestID,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.Named("drmtoday")

	return c
}

// NewConfigured returns a callback configured with cfg.
func NewConfigured(cfg Config, opts ...Option) (*Callback, error) {
	c := New(opts...)

	if err := c.Configure(cfg); err != nil {
		return nil, err
	}

	return c, nil
}

// Configure replaces the whole session configuration. The new configuration is installed even when it
// is invalid, so later key requests fail rather than run with the identity of a previous session.
func (c *Callback) Configure(cfg Config) error {
	c.config.Store(&cfg)

	return cfg.Validate()
}

// Config returns a copy of the current configuration.
func (c *Callback) Config() Config {
	if cfg := c.config.Load(); cfg != nil {
		return *cfg
	}

	return Config{}
}

// AcquireLicense sends challenge to the configured backend and returns the decoded license.
func (c *Callback) AcquireLicense(ctx context.Context, scheme Scheme, challenge []byte) ([]byte, error) {
	cfg := c.Config()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	req, err := buildLicenseRequest(cfg, scheme, c.requestID())

	if err != nil {
		return nil, err
	}

	logger := c.logger.With(
		zap.String("log_request_id", req.requestID),
		zap.Stringer("scheme", scheme))

	logger.Debug("requesting license", zap.String("url", req.url))

	body, err := post(ctx, c.client, logger, req.url, challenge, req.header)

	if err != nil {
		return nil, &LicenseError{RequestID: req.requestID, Err: err}
	}

	license, err := scheme.decode(body)

	if err != nil {
		return nil, &LicenseError{RequestID: req.requestID, Err: err}
	}

	return license, nil
}

// ExecuteKeyRequest acquires a license for the CDM of systemID. Failures are logged and yield nil, the
// player treats a missing license as its own failure.
func (c *Callback) ExecuteKeyRequest(ctx context.Context, systemID uuid.UUID, request KeyRequest) []byte {
	scheme := SchemeForSystemID(systemID)

	license, err := c.AcquireLicense(ctx, scheme, request.Data)

	if err == nil {
		return license
	}

	var (
		configErr   *ConfigError
		notFoundErr *NotFoundError
		decodeErr   *DecodeError
	)

	if errors.As(err, &configErr) {
		c.logger.Error("DRMtoday configuration invalid", zap.Error(err))
		return nil
	}

	logger := c.logger.With(
		zap.String("log_request_id", RequestID(err)),
		zap.Stringer("scheme", scheme))

	switch {
	case errors.As(err, &notFoundErr):
		logger.Error("license not found", zap.Error(err))
	case errors.As(err, &decodeErr):
		logger.Error("error while parsing license response", zap.Error(err))
	default:
		logger.Error("error during license acquisition", zap.Error(err))
	}

	return nil
}

// ExecuteProvisionRequest posts the provisioning request to the URL supplied by the CDM. It needs no
// session configuration. Failures are logged and yield nil, the CDM retries provisioning on its own.
func (c *Callback) ExecuteProvisionRequest(ctx context.Context, systemID uuid.UUID, request ProvisionRequest) []byte {
	target := provisionURL(request.DefaultURL, request.Data)

	body, err := post(ctx, c.client, c.logger, target, nil, nil)

	if err != nil {
		c.logger.Error("provisioning failed", zap.Stringer("system_id", systemID), zap.Error(err))
		return nil
	}

	return body
}
