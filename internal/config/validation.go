package config

import (
	"fmt"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if c.Source.Directory == "" {
		return ferrors.ValidationError("source directory must not be empty").
			WithContext("field", "source.directory").
			Build()
	}
	if c.Output.Directory == "" {
		return ferrors.ValidationError("output directory must not be empty").
			WithContext("field", "output.directory").
			Build()
	}

	src, err := filepath.Abs(c.Source.Directory)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid source directory").Fatal().Build()
	}
	out, err := filepath.Abs(c.Output.Directory)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid output directory").Fatal().Build()
	}
	if src == out {
		return ferrors.ValidationError("source and output directories must differ").
			WithContext("source", c.Source.Directory).
			WithContext("output", c.Output.Directory).
			Build()
	}
	if rel, err := filepath.Rel(out, src); err == nil && filepath.IsLocal(rel) {
		return ferrors.ValidationError("source directory must not be inside the output directory").
			WithContext("source", c.Source.Directory).
			WithContext("output", c.Output.Directory).
			Build()
	}
	if rel, err := filepath.Rel(src, out); err == nil && filepath.IsLocal(rel) {
		return ferrors.ValidationError("output directory must not be inside the source directory").
			WithContext("source", c.Source.Directory).
			WithContext("output", c.Output.Directory).
			Build()
	}

	if c.Preview.Port < 1 || c.Preview.Port > 65535 {
		return ferrors.ValidationError(fmt.Sprintf("invalid preview port: %d", c.Preview.Port)).
			WithContext("field", "preview.port").
			Build()
	}
	if c.Preview.Debounce != "" {
		if _, err := time.ParseDuration(c.Preview.Debounce); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid preview debounce").
				Fatal().
				UserAction().
				WithContext("field", "preview.debounce").
				Build()
		}
	}
	return nil
}
