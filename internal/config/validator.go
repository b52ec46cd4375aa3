// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any error
// aborts start-up, so the binary never runs with partial configuration.
//
// Field tags cover single values.  Rules that span sections live in
// `validateSources`, registered as a struct-level validation on Config.

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(validateSources, Config{})
	return val
}

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

// validateSources ties the forms source to the settings it needs.
func validateSources(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)

	switch c.Forms.Source {
	case "yaml":
		if len(c.Forms.Dirs) == 0 {
			sl.ReportError(c.Forms.Dirs, "Forms.Dirs", "Dirs", "required_for_yaml", "")
		}
	case "sql":
		if c.Database.DSN == "" {
			sl.ReportError(c.Database.DSN, "Database.DSN", "DSN", "required_for_sql", "")
		}
		if c.Database.Password != "" && strings.Count(c.Database.DSN, "%s") != 1 {
			sl.ReportError(c.Database.DSN, "Database.DSN", "DSN", "one_password_verb", "")
		}
	}
}
