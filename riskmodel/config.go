package riskmodel

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/m-mizutani/goerr/v2"
)

const defaultConfigFile = "config.json"

// LoadConfig loads deploy-time settings from the given path or the default
// config.json. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return cfg, goerr.Wrap(err, "read config", goerr.V("path", path))
	}
	hasPositiveClass := bytes.Contains(data, []byte("\"positiveClass\""))
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, goerr.Wrap(err, "decode config", goerr.V("path", path))
	}
	if !hasPositiveClass {
		cfg.Classifier.PositiveClass = defaultPositiveClass
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
