// internal/form/evaluate.go
//
// Formcheck – Forms subsystem: form evaluation.
//
// Context
//   An Evaluator binds a Registry to one Surface.  GetFormValues walks a
//   form's fields in declaration order, validates each one, and sorts the
//   outcome into Values or Errors.  A failing field never stops its
//   siblings, so the surface always shows every problem at once.
//
// Workflow (per field)
//   1. Hide the error indicator and reset the border.
//   2. Take the static value, or read the element, or fail.
//   3. Sanitize (sanitize.go).
//   4. On failure show the indicator and paint the error border.
//
//   A field of an unrecognized kind fails before step 1 and leaves the
//   surface untouched.
//
// Notes
//   •  Evaluators are cheap.  Build one per request or terminal session.
//   •  A missing element is not an error by itself.  The surface returns ""
//      for it and the field rules decide.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/formcheck/internal/metrics"
)

// ErrorMarker is the value stored in Result.Errors for every failed field.
const ErrorMarker = "ERROR"

// ErrUnknownForm is returned when a form name is not registered.
var ErrUnknownForm = errors.New("unknown form")

// Result holds one evaluation.  Every field key of the form appears in
// exactly one of the two maps.  Scalar fields carry a string value and
// multi-select fields a []string.
type Result struct {
	Values map[string]any    `json:"values"`
	Errors map[string]string `json:"errors"`
}

// Valid reports whether no field failed.
func (r *Result) Valid() bool { return len(r.Errors) == 0 }

// Evaluator validates registered forms against a Surface.  It is not safe
// for concurrent use because the Surface usually is not.
type Evaluator struct {
	forms   *Registry
	surface Surface
	log     *zap.SugaredLogger
}

// Option customizes an Evaluator.
type Option func(*Evaluator)

// WithLogger replaces the default zap.S() logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEvaluator returns an Evaluator reading from s.
func NewEvaluator(forms *Registry, s Surface, opts ...Option) *Evaluator {
	e := &Evaluator{forms: forms, surface: s, log: zap.S()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// GetFormValues validates every field of form name and returns the sanitized
// values and the failed keys.  Unknown names yield ErrUnknownForm.
func (e *Evaluator) GetFormValues(name string) (*Result, error) {
	fd, ok := e.forms.Lookup(name)
	if !ok {
		metrics.UnknownFormTotal.Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, name)
	}

	res := &Result{
		Values: make(map[string]any, len(fd.Fields)),
		Errors: make(map[string]string),
	}
	for _, f := range fd.Fields {
		v, ok := e.validateField(f.Def)
		if !ok {
			delete(res.Values, f.Key)
			res.Errors[f.Key] = ErrorMarker
			metrics.FieldErrorsTotal.WithLabelValues(fd.ID, typeLabel(f.Def)).Inc()
			continue
		}
		delete(res.Errors, f.Key)
		res.Values[f.Key] = v
	}

	outcome := "valid"
	if !res.Valid() {
		outcome = "invalid"
	}
	metrics.EvaluationsTotal.WithLabelValues(fd.ID, outcome).Inc()
	e.log.Debugw("form evaluated",
		"form", fd.ID, "fields", len(fd.Fields), "errors", len(res.Errors))
	return res, nil
}

// ValidateForm reports whether form name exists and every field passes.
// Presentation effects are the same as GetFormValues.
func (e *Evaluator) ValidateForm(name string) bool {
	res, err := e.GetFormValues(name)
	if err != nil {
		return false
	}
	return res.Valid()
}

// -----------------------------------------------------------------------------
// Field-level helpers
// -----------------------------------------------------------------------------

// validateField runs the per-field pipeline with presentation effects.
func (e *Evaluator) validateField(def *FieldDef) (any, bool) {
	if def == nil {
		return nil, false
	}
	// An unrecognized kind fails without touching the surface.
	if !def.Type.Known() {
		e.log.Debugw("unrecognized field type", "element", def.FieldID)
		return nil, false
	}

	s := e.surface
	redlight := def.FieldID != "" && bool(def.RedlightOnError)

	if def.ErrorID != "" {
		s.HideIndicator(def.ErrorID)
	}
	if redlight {
		s.SetNeutralBorder(borderTarget(def))
	}

	v, ok := e.sanitize(def)
	if !ok {
		if def.ErrorID != "" {
			s.ShowIndicator(def.ErrorID)
		}
		if redlight {
			s.SetErrorBorder(borderTarget(def))
		}
		return nil, false
	}
	return v, true
}

func (e *Evaluator) sanitize(def *FieldDef) (any, bool) {
	if def.Type == TypeMultiSelect {
		items, found := e.readSelection(def)
		if !found {
			return nil, false
		}
		return SanitizeSelection(def, items)
	}

	raw, found := e.read(def)
	if !found {
		return nil, false
	}
	return Sanitize(def, raw)
}

// read acquires the raw value.  The boolean is false only when def names
// neither a static value nor an element.
func (e *Evaluator) read(def *FieldDef) (string, bool) {
	switch {
	case def.Value != nil:
		return *def.Value, true
	case def.FieldID != "":
		e.checkExists(def.FieldID)
		return e.surface.ReadValue(def.FieldID), true
	default:
		return "", false
	}
}

// readSelection is read for multi-select fields.  A scalar source becomes a
// one-item selection, or none when empty.
func (e *Evaluator) readSelection(def *FieldDef) ([]string, bool) {
	switch {
	case def.Value != nil:
		return single(*def.Value), true
	case def.FieldID != "":
		e.checkExists(def.FieldID)
		if sr, ok := e.surface.(SelectionReader); ok {
			return sr.ReadSelection(def.FieldID), true
		}
		return single(e.surface.ReadValue(def.FieldID)), true
	default:
		return nil, false
	}
}

// checkExists logs a missing element.  Evaluation carries on with whatever
// the surface returns for it.
func (e *Evaluator) checkExists(id string) {
	if !e.surface.ElementExists(id) {
		e.log.Debugw("form element missing", "element", id)
	}
}

func single(v string) []string {
	if v == "" {
		return []string{}
	}
	return []string{v}
}

func typeLabel(def *FieldDef) string {
	if def == nil || !def.Type.Known() {
		return "unknown"
	}
	return string(def.Type)
}
