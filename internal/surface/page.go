// internal/surface/page.go
//
// In-memory surface.
//
// Context
//   A Page stands in for a rendered form: element values keyed by ID plus
//   the indicator and border state the evaluator pushed onto it.  The HTTP
//   host builds one per request from the posted body and returns the final
//   Presentation so a small script in the browser can apply it.  Tests use
//   it as the surface double.
//
// Notes
//   •  An element exists when its ID is a key, even with an empty value.
//   •  Not safe for concurrent use.
//
//------------------------------------------------------------------------------

package surface

import (
	"net/url"

	"github.com/yanizio/formcheck/internal/form"
)

var (
	_ form.Surface         = (*Page)(nil)
	_ form.SelectionReader = (*Page)(nil)
)

// Border is the highlight state of a field.
type Border string

const (
	BorderNeutral Border = "neutral"
	BorderError   Border = "error"
)

// Presentation is a snapshot of what the evaluator asked the surface to show.
type Presentation struct {
	Indicators map[string]bool   `json:"indicators"` // element ID → visible
	Borders    map[string]Border `json:"borders"`    // form.Target.Key() → style
}

// Page implements form.Surface over a url.Values map.
type Page struct {
	values     url.Values
	indicators map[string]bool
	borders    map[string]Border
}

// NewPage returns an empty Page.
func NewPage() *Page {
	return &Page{
		values:     url.Values{},
		indicators: map[string]bool{},
		borders:    map[string]Border{},
	}
}

// FromValues returns a Page holding a copy of v.
func FromValues(v url.Values) *Page {
	p := NewPage()
	for k, vs := range v {
		p.values[k] = append([]string(nil), vs...)
	}
	return p
}

// Set replaces the value(s) of element id, creating it when absent.
func (p *Page) Set(id string, vals ...string) {
	if vals == nil {
		vals = []string{}
	}
	p.values[id] = vals
}

// Remove deletes element id.
func (p *Page) Remove(id string) { delete(p.values, id) }

// ReadValue implements form.Surface.  Multi-valued elements report their
// first value, as a browser does for a plain read.
func (p *Page) ReadValue(id string) string { return p.values.Get(id) }

// ReadSelection implements form.SelectionReader.  Empty strings are dropped
// because a browser never posts an empty option as selected.
func (p *Page) ReadSelection(id string) []string {
	vs, ok := p.values[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ElementExists implements form.Surface.
func (p *Page) ElementExists(id string) bool {
	_, ok := p.values[id]
	return ok
}

// HideIndicator implements form.Surface.
func (p *Page) HideIndicator(id string) { p.indicators[id] = false }

// ShowIndicator implements form.Surface.
func (p *Page) ShowIndicator(id string) { p.indicators[id] = true }

// SetNeutralBorder implements form.Surface.
func (p *Page) SetNeutralBorder(t form.Target) { p.borders[t.Key()] = BorderNeutral }

// SetErrorBorder implements form.Surface.
func (p *Page) SetErrorBorder(t form.Target) { p.borders[t.Key()] = BorderError }

// IndicatorVisible reports whether indicator id is currently shown.
func (p *Page) IndicatorVisible(id string) bool { return p.indicators[id] }

// BorderOf returns the border state of t, "" when never touched.
func (p *Page) BorderOf(t form.Target) Border { return p.borders[t.Key()] }

// Presentation returns a copy of the current indicator and border state.
func (p *Page) Presentation() Presentation {
	out := Presentation{
		Indicators: make(map[string]bool, len(p.indicators)),
		Borders:    make(map[string]Border, len(p.borders)),
	}
	for k, v := range p.indicators {
		out.Indicators[k] = v
	}
	for k, v := range p.borders {
		out.Borders[k] = v
	}
	return out
}
