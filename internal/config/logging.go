package config

import "colormaker/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`                   // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`                 // json, console
	File       string          `yaml:"file" json:"file,omitempty"`                     // empty = stderr (TUI mode picks a file)
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"`         // forces debug level
	Categories map[string]bool `yaml:"categories,omitempty" json:"categories,omitempty"` // Per-category toggles
	AuditFile  string          `yaml:"audit_file,omitempty" json:"audit_file,omitempty"` // state transition trail
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Options converts the section into logging.Initialize options.
func (c *LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		DebugMode:  c.DebugMode,
		Categories: c.Categories,
		AuditFile:  c.AuditFile,
	}
}
