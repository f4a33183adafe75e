package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tintbar/tintbar"
)

// ErrUnsupportedExtension indicates the configuration file's extension maps
// to no known serialization format.
var ErrUnsupportedExtension = errors.New("config: unsupported file extension")

// codec serializes configuration snapshots. The concrete codec is picked
// from the file extension once, at gateway construction.
type codec interface {
	decode(data []byte, cfg *tintbar.Config) error
	encode(cfg *tintbar.Config) ([]byte, error)
}

// codecFor picks a codec from the file's extension.
func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return tomlCodec{}, nil
	case ".yaml", ".yml":
		return yamlCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, filepath.Ext(path))
	}
}

type tomlCodec struct{}

func (tomlCodec) decode(data []byte, cfg *tintbar.Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse toml: %w", err)
	}
	return nil
}

func (tomlCodec) encode(cfg *tintbar.Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal toml: %w", err)
	}
	return data, nil
}

type yamlCodec struct{}

func (yamlCodec) decode(data []byte, cfg *tintbar.Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

func (yamlCodec) encode(cfg *tintbar.Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal yaml: %w", err)
	}
	return data, nil
}
