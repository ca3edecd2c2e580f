package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-mrc/mrc"
)

// limitsConfig mirrors mrc.Limits for the YAML config file. All fields are
// pointers so an absent key keeps the library default.
type limitsConfig struct {
	DecodingBufferSize     *int `yaml:"decoding_buffer_size"`
	MetadataSize           *int `yaml:"metadata_size"`
	IntermediateBufferSize *int `yaml:"intermediate_buffer_size"`
}

// loadLimits returns the decoding limits, overlaying values from the YAML
// file at path (if given) onto the defaults.
func loadLimits(path string) (mrc.Limits, error) {
	limits := mrc.DefaultLimits()
	if path == "" {
		return limits, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("reading config: %w", err)
	}
	var cfg limitsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return limits, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DecodingBufferSize != nil {
		limits.DecodingBufferSize = *cfg.DecodingBufferSize
	}
	if cfg.MetadataSize != nil {
		limits.MetadataSize = *cfg.MetadataSize
	}
	if cfg.IntermediateBufferSize != nil {
		limits.IntermediateBufferSize = *cfg.IntermediateBufferSize
	}
	return limits, nil
}
