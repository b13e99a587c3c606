package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/gisadmin/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if err := c.validateDatabase("workspace", &c.Workspace.DatabaseConfig); err != nil {
		errors = append(errors, err...)
	}
	if c.Workspace.AliasTable != "" && !sqlutil.IsValidIdentifier(c.Workspace.AliasTable) {
		errors = append(errors, ValidationError{
			Field:   "workspace.alias_table",
			Message: "alias_table must contain only alphanumeric characters and underscores",
		})
	}

	for _, name := range c.ListTables() {
		if err := c.validateTable(name, c.Tables[name]); err != nil {
			errors = append(errors, err...)
		}
	}

	if err := c.validateTransfer(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateSpecies(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidatePortal checks the portal settings. It is separate from Validate because
// only the portal commands need a portal.
func (c *Config) ValidatePortal() error {
	var errors ValidationErrors

	if c.Portal.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "portal.url",
			Message: "url is required",
		})
	}
	if c.Portal.PageSize <= 0 || c.Portal.PageSize > 100 {
		errors = append(errors, ValidationError{
			Field:   "portal.page_size",
			Message: "page_size must be between 1 and 100",
		})
	}
	if c.Portal.MaxItems <= 0 {
		errors = append(errors, ValidationError{
			Field:   "portal.max_items",
			Message: "max_items must be positive",
		})
	}
	if c.Portal.RetryMax < 0 {
		errors = append(errors, ValidationError{
			Field:   "portal.retry_max",
			Message: "retry_max cannot be negative",
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateTable(name string, tc TableConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("tables.%s", name)

	table := tc.Table
	if table == "" {
		table = name
	}
	if !sqlutil.IsValidIdentifier(table) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".table",
			Message: fmt.Sprintf("invalid table name %q", table),
		})
	}

	if tc.IDField != "" && !sqlutil.IsValidIdentifier(tc.IDField) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".id_field",
			Message: fmt.Sprintf("invalid id field %q", tc.IDField),
		})
	}

	return errors
}

func (c *Config) validateTransfer() ValidationErrors {
	var errors ValidationErrors

	if c.Transfer.MaxSelection < 1 {
		errors = append(errors, ValidationError{
			Field:   "transfer.max_selection",
			Message: "max_selection must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateSpecies() ValidationErrors {
	var errors ValidationErrors

	validTypes := map[string]bool{"checklist": true, "detaillist": true, "fulllist": true, "": true}
	if !validTypes[c.Species.ListType] {
		errors = append(errors, ValidationError{
			Field:   "species.list_type",
			Message: "list_type must be 'checklist', 'detaillist', or 'fulllist'",
		})
	}

	if c.Species.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "species.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	if c.Species.RetryMax < 0 {
		errors = append(errors, ValidationError{
			Field:   "species.retry_max",
			Message: "retry_max cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
