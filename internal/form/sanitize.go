// internal/form/sanitize.go
//
// Formcheck – Forms subsystem: pure sanitation rules.
//
// Context
//   This file knows nothing about surfaces.  Given a descriptor and the raw
//   text read for it, Sanitize returns the cleaned value and whether it
//   passed.  The effect layer (evaluate.go) calls it between the presentation
//   reset and the failure highlight.
//
// Workflow
//   1. Trim surrounding whitespace.
//   2. Required check.  Select, integer, and phone fields treat "0" as empty.
//   3. Type rule from the rules table.
//
//   Multi-select fields skip trimming and carry a slice instead of a string,
//   so they go through SanitizeSelection.
//
//------------------------------------------------------------------------------

package form

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// rule checks an already trimmed, required-checked value.
type rule func(def *FieldDef, v string) bool

// rules is the type dispatch table.  TypeMultiSelect is absent on purpose:
// it never sees a scalar value.
var rules = map[FieldType]rule{
	TypeString:   checkString,
	TypeInteger:  checkInteger,
	TypePassword: checkPassword,
	TypeEmail:    checkEmail,
	TypeSelect:   checkSelect,
	TypePhone:    checkPhone,
	TypeDate:     checkDate,
}

var (
	integerRe = regexp.MustCompile(`^[0-9]+$`)
	phoneRe   = regexp.MustCompile(`^\+?[0-9]+$`)
	dateRe    = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	emailRe   = regexp.MustCompile(`^([a-zA-Z0-9_\-.]+)(\+[a-zA-Z0-9_\-.]+)?@` +
		`((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.)|(([a-zA-Z0-9\-]+\.)+))` +
		`([a-zA-Z]{2,4}|[0-9]{1,3})(\]?)$`)
)

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// Sanitize trims raw and applies the rules for def.Type.  The boolean is false
// when the value must be reported as an error.
func Sanitize(def *FieldDef, raw string) (string, bool) {
	if def == nil {
		return "", false
	}
	check, ok := rules[def.Type]
	if !ok {
		return "", false
	}

	v := strings.TrimSpace(raw)
	if bool(def.Required) && (v == "" || (v == "0" && def.Type.zeroIsEmpty())) {
		return "", false
	}
	if !check(def, v) {
		return "", false
	}
	return v, true
}

// SanitizeSelection validates a multi-select value.  Items are returned as
// read; only the required rule applies.
func SanitizeSelection(def *FieldDef, items []string) ([]string, bool) {
	if def == nil || def.Type != TypeMultiSelect {
		return nil, false
	}
	if def.Required && len(items) == 0 {
		return nil, false
	}
	if items == nil {
		items = []string{}
	}
	return items, true
}

// -----------------------------------------------------------------------------
// Type rules
// -----------------------------------------------------------------------------

func checkString(def *FieldDef, v string) bool {
	return lengthOK(def, v)
}

// checkInteger accepts unsigned digit strings.  Bounds compare the numeric
// value of the digits, so "042" satisfies min 1.
func checkInteger(def *FieldDef, v string) bool {
	if v == "" {
		return true
	}
	if !integerRe.MatchString(v) {
		return false
	}
	n, _ := strconv.ParseFloat(v, 64) // digits only; overflow yields +Inf

	if def.Min != nil && *def.Min > n {
		return false
	}
	if def.Max != nil && *def.Max < n {
		return false
	}
	return true
}

// checkPassword runs even on empty input: an empty password never holds the
// three character classes and therefore always fails.
func checkPassword(def *FieldDef, v string) bool {
	if !lengthOK(def, v) {
		return false
	}

	var lower, upper, digit bool
	for i := 0; i < len(v) && !(lower && upper && digit); i++ {
		switch c := v[i]; {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

func checkEmail(def *FieldDef, v string) bool {
	if v == "" {
		return true
	}
	return lengthOK(def, v) && emailRe.MatchString(v)
}

func checkSelect(*FieldDef, string) bool { return true }

func checkPhone(_ *FieldDef, v string) bool {
	return v == "" || phoneRe.MatchString(v)
}

// checkDate is a format check only.  "2023-02-30" passes.
func checkDate(_ *FieldDef, v string) bool {
	return v == "" || dateRe.MatchString(v)
}

// lengthOK applies minlength and maxlength, both inclusive and counted in
// characters.  An empty value is never too short; required handles that.
func lengthOK(def *FieldDef, v string) bool {
	n := utf8.RuneCountInString(v)
	if n > 0 && def.MinLength != nil && *def.MinLength > n {
		return false
	}
	if def.MaxLength != nil && *def.MaxLength < n {
		return false
	}
	return true
}
