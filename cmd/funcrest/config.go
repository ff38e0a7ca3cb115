package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/bjaus/funcrest"
)

const developmentEnv = "development"

// Config is read from the environment only.
type Config struct {
	Environment string `env:"FUNCTIONS_ENVIRONMENT" env-default:"production" env-description:"platform environment; development enables permissive CORS"`
	LogLevel    string `env:"FUNCREST_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	Reraise     bool   `env:"FUNCREST_RERAISE" env-default:"false" env-description:"return handler errors instead of answering 500"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("FUNCREST_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Headers returns the headers added to every response.
func (c Config) Headers() map[string]string {
	if strings.EqualFold(c.Environment, developmentEnv) {
		return map[string]string{"Access-Control-Allow-Origin": "*"}
	}
	return nil
}

// RouterOptions turns the configuration into router options. Logs go to w.
func (c Config) RouterOptions(w io.Writer) ([]funcrest.Option, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := []funcrest.Option{
		funcrest.WithLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))),
		funcrest.WithHeaders(c.Headers()),
	}
	if c.Reraise {
		opts = append(opts, funcrest.WithReraise())
	}
	return opts, nil
}

func configUsage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
