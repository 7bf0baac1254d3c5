package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"drmtoday-proxy/internal/drmtoday"
)

func main() {
	cfg, err := loadConfig()

	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Debug)

	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		_ = logger.Sync()
	}()

	zap.ReplaceGlobals(logger)

	callback := drmtoday.New(drmtoday.WithLogger(logger))

	// The proxy may start without a session, PUT /session configures it later.
	if err := callback.Configure(cfg.session()); err != nil {
		logger.Warn("no DRMtoday session configured", zap.Error(err))
	}

	srv := &server{
		callback:  callback,
		client:    http.DefaultClient,
		logger:    logger,
		stripText: cfg.StripText,
	}

	http.Handle("/", srv.router())

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("backend", callback.Config().BaseURL))

	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
