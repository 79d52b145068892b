package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks every configurable value against its documented range
// and reports all violations at once.
func (c *Config) Validate() error {
	var problems []string

	if err := c.Tuning().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.Bounds().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Sync.TimeoutSeconds < 0 {
		problems = append(problems, fmt.Sprintf("sync timeout_seconds %d must not be negative", c.Sync.TimeoutSeconds))
	}
	if c.Batch.Workers < 0 {
		problems = append(problems, fmt.Sprintf("batch workers %d must not be negative", c.Batch.Workers))
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log format %q must be console or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
