package config

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/docprop/internal/cli/output"
	"github.com/leapstack-labs/docprop/internal/propagate"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ModelsDir == "" && c.Manifest == "" {
		return fmt.Errorf("models_dir is required")
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.PreviewLength <= 0 {
		return fmt.Errorf("preview_length must be positive, got %d", c.PreviewLength)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	for _, s := range c.FailOn {
		if !slices.Contains(propagate.Statuses, propagate.Status(s)) {
			return fmt.Errorf("fail_on: unknown status %q", s)
		}
	}
	return nil
}

// FailOnStatuses returns FailOn as statuses.
func (c *Config) FailOnStatuses() []propagate.Status {
	out := make([]propagate.Status, 0, len(c.FailOn))
	for _, s := range c.FailOn {
		out = append(out, propagate.Status(s))
	}
	return out
}
