package main

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"drmtoday-proxy/internal/drmtoday"
)

type config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"staging"`
	Merchant    string `envconfig:"MERCHANT"`
	UserID      string `envconfig:"USER_ID"`
	SessionID   string `envconfig:"SESSION_ID"`
	AuthToken   string `envconfig:"AUTH_TOKEN"`
	AssetID     string `envconfig:"ASSET_ID"`
	StripText   bool   `envconfig:"STRIP_TEXT" default:"true"`
	Debug       bool   `envconfig:"DEBUG"`
}

func loadConfig() (*config, error) {
	var cfg config

	if err := envconfig.Process("drmtoday", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config from env")
	}

	return &cfg, nil
}

func (c *config) session() drmtoday.Config {
	return drmtoday.Config{
		BaseURL:   drmtoday.ParseEnvironment(c.Environment),
		Merchant:  c.Merchant,
		UserID:    c.UserID,
		SessionID: c.SessionID,
		AuthToken: c.AuthToken,
		AssetID:   c.AssetID,
	}
}
