// internal/form/surface.go
//
// Formcheck – Forms subsystem: the surface boundary.
//
// Context
//   The evaluator never touches markup.  It reads values and pushes
//   presentation changes through Surface, which a host implements for
//   whatever it renders to: a posted HTML form, a terminal prompt, a test
//   double.  See internal/surface for the stock implementations.
//
//------------------------------------------------------------------------------

package form

// Surface is everything the evaluator needs from the interactive side.
//
// ReadValue must return "" for an element that does not exist.  Show and
// hide calls are idempotent; repeated evaluation re-applies them.
type Surface interface {
	ReadValue(elementID string) string
	ElementExists(elementID string) bool
	HideIndicator(elementID string)
	ShowIndicator(elementID string)
	SetNeutralBorder(t Target)
	SetErrorBorder(t Target)
}

// SelectionReader is implemented by surfaces that can report every selected
// option of a multi-select element.  A missing element yields nil.
type SelectionReader interface {
	ReadSelection(elementID string) []string
}

// Target addresses the element whose border reflects a field's state.
// Multi-select widgets draw their border on an adjacent wrapper, so Wrapper
// asks the surface to style that instead of the element itself.
type Target struct {
	ID      string `json:"id"`
	Wrapper bool   `json:"wrapper,omitempty"`
}

// Key is a stable map key for t.
func (t Target) Key() string {
	if t.Wrapper {
		return t.ID + "~wrapper"
	}
	return t.ID
}

// borderTarget returns the presentation target for def.
func borderTarget(def *FieldDef) Target {
	return Target{ID: def.FieldID, Wrapper: def.Type == TypeMultiSelect}
}
