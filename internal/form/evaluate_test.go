// internal/form/evaluate_test.go
//
// Evaluator tests over the in-memory surface.Page.
//
// Context
// -------
// The external test package lets these tests use surface.Page, which
// imports form.  Each test builds a small Registry in code, posts values
// into a Page, and checks the Result and the presentation state.
//
// Run: go test ./internal/form -run Evaluator -v

package form_test

import (
	"errors"
	"net/url"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formcheck/internal/form"
	"github.com/yanizio/formcheck/internal/metrics"
	"github.com/yanizio/formcheck/internal/surface"
)

func ptr[T any](v T) *T { return &v }

// repairerForm is a trimmed-down createrepairerform.
func repairerForm() *form.FormDef {
	return &form.FormDef{
		ID: "repairer",
		Fields: form.FieldList{
			{Key: "LOGIN", Def: &form.FieldDef{
				FieldID: "LOGIN", Type: form.TypeString, Required: true,
				MinLength: ptr(5), MaxLength: ptr(255),
				RedlightOnError: true, ErrorID: "LOGIN_error",
			}},
			{Key: "PWD", Def: &form.FieldDef{
				FieldID: "PWD", Type: form.TypePassword, Required: true,
				MinLength: ptr(6), RedlightOnError: true, ErrorID: "PWD_error",
			}},
			{Key: "CONTACTEMAIL", Def: &form.FieldDef{
				FieldID: "CONTACTEMAIL", Type: form.TypeEmail, Required: true,
				RedlightOnError: true, ErrorID: "EMAIL_error",
			}},
			{Key: "PRODUCTWORLDID", Def: &form.FieldDef{
				FieldID: "PRODUCTWORLDID", Type: form.TypeMultiSelect, Required: true,
				RedlightOnError: true, ErrorID: "PRODUCTWORLDID_error",
			}},
			{Key: "COUNTRY", Def: &form.FieldDef{
				FieldID: "COUNTRY", Type: form.TypeSelect, Required: true,
				RedlightOnError: true,
			}},
			{Key: "PHONE_PREFIX", Def: &form.FieldDef{
				FieldID: "COUNTRY", Type: form.TypeSelect,
			}},
			{Key: "MAX_DRIVE_TIME_SECONDS", Def: &form.FieldDef{
				FieldID: "MAX_DRIVE_TIME_SECONDS", Type: form.TypeInteger, Required: true,
				Min: ptr(1.0), Max: ptr(3600.0), RedlightOnError: true,
			}},
			{Key: "SOURCE", Def: &form.FieldDef{
				Type: form.TypeString, Value: ptr("web"),
			}},
		},
	}
}

func validPost() url.Values {
	return url.Values{
		"LOGIN":                  {"garage-dupont"},
		"PWD":                    {"Secret42"},
		"CONTACTEMAIL":           {" contact@dupont.fr "},
		"PRODUCTWORLDID":         {"12", "14"},
		"COUNTRY":                {"FR"},
		"MAX_DRIVE_TIME_SECONDS": {"900"},
	}
}

func newRegistry(t *testing.T, defs ...*form.FormDef) *form.Registry {
	t.Helper()
	reg, err := form.NewRegistry(defs...)
	require.NoError(t, err)
	return reg
}

func evaluate(t *testing.T, reg *form.Registry, page *surface.Page, name string) *form.Result {
	t.Helper()
	res, err := form.NewEvaluator(reg, page).GetFormValues(name)
	require.NoError(t, err)
	return res
}

func TestEvaluatorValidForm(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	page := surface.FromValues(validPost())

	res := evaluate(t, reg, page, "repairer")

	want := map[string]any{
		"LOGIN":                  "garage-dupont",
		"PWD":                    "Secret42",
		"CONTACTEMAIL":           "contact@dupont.fr",
		"PRODUCTWORLDID":         []string{"12", "14"},
		"COUNTRY":                "FR",
		"PHONE_PREFIX":           "FR",
		"MAX_DRIVE_TIME_SECONDS": "900",
		"SOURCE":                 "web",
	}
	if diff := cmp.Diff(want, res.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, res.Errors)
	assert.True(t, res.Valid())
}

func TestEvaluatorKeyPartition(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	post := validPost()
	post.Set("LOGIN", "abc")
	post.Set("MAX_DRIVE_TIME_SECONDS", "7200")
	post.Del("PRODUCTWORLDID")

	res := evaluate(t, reg, surface.FromValues(post), "repairer")

	fd, _ := reg.Lookup("repairer")
	var all []string
	for k := range res.Values {
		_, dup := res.Errors[k]
		assert.False(t, dup, "key %s in both maps", k)
		all = append(all, k)
	}
	for k, v := range res.Errors {
		assert.Equal(t, form.ErrorMarker, v)
		all = append(all, k)
	}
	sort.Strings(all)
	keys := fd.Keys()
	sort.Strings(keys)
	assert.Equal(t, keys, all)

	assert.Equal(t, map[string]string{
		"LOGIN":                  form.ErrorMarker,
		"MAX_DRIVE_TIME_SECONDS": form.ErrorMarker,
		"PRODUCTWORLDID":         form.ErrorMarker,
	}, res.Errors)
}

func TestEvaluatorPresentation(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	post := validPost()
	post.Set("PWD", "weak")
	post.Set("COUNTRY", "0")
	page := surface.FromValues(post)

	res := evaluate(t, reg, page, "repairer")
	require.False(t, res.Valid())

	// failing fields
	assert.True(t, page.IndicatorVisible("PWD_error"))
	assert.Equal(t, surface.BorderError, page.BorderOf(form.Target{ID: "PWD"}))
	assert.Equal(t, surface.BorderError, page.BorderOf(form.Target{ID: "COUNTRY"}))

	// passing fields are reset
	assert.False(t, page.IndicatorVisible("LOGIN_error"))
	assert.Equal(t, surface.BorderNeutral, page.BorderOf(form.Target{ID: "LOGIN"}))
	assert.Equal(t, surface.BorderNeutral, page.BorderOf(form.Target{ID: "PRODUCTWORLDID", Wrapper: true}))

	// PHONE_PREFIX reads COUNTRY but is optional, so "0" passes
	assert.Equal(t, "0", res.Values["PHONE_PREFIX"])
	assert.Equal(t, form.ErrorMarker, res.Errors["COUNTRY"])

	// fields without redlight never touch a border
	pres := page.Presentation()
	_, touched := pres.Borders["SOURCE"]
	assert.False(t, touched)
}

func TestEvaluatorCorrectionClearsPresentation(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	post := validPost()
	post.Set("LOGIN", "")
	page := surface.FromValues(post)

	assert.False(t, form.NewEvaluator(reg, page).ValidateForm("repairer"))
	assert.True(t, page.IndicatorVisible("LOGIN_error"))

	page.Set("LOGIN", "garage-dupont")
	assert.True(t, form.NewEvaluator(reg, page).ValidateForm("repairer"))
	assert.False(t, page.IndicatorVisible("LOGIN_error"))
	assert.Equal(t, surface.BorderNeutral, page.BorderOf(form.Target{ID: "LOGIN"}))
}

func TestEvaluatorMultiSelectWrapperBorder(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	post := validPost()
	post["PRODUCTWORLDID"] = []string{""}
	page := surface.FromValues(post)

	res := evaluate(t, reg, page, "repairer")

	assert.Equal(t, form.ErrorMarker, res.Errors["PRODUCTWORLDID"])
	assert.True(t, page.IndicatorVisible("PRODUCTWORLDID_error"))
	assert.Equal(t, surface.BorderError, page.BorderOf(form.Target{ID: "PRODUCTWORLDID", Wrapper: true}))
	assert.Equal(t, surface.Border(""), page.BorderOf(form.Target{ID: "PRODUCTWORLDID"}),
		"the element itself is never painted")
}

func TestEvaluatorIdempotent(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	post := validPost()
	post.Set("CONTACTEMAIL", "nope")
	page := surface.FromValues(post)

	first := evaluate(t, reg, page, "repairer")
	firstPres := page.Presentation()
	second := evaluate(t, reg, page, "repairer")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second evaluation differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstPres, page.Presentation()); diff != "" {
		t.Errorf("presentation drifted (-first +second):\n%s", diff)
	}
}

func TestEvaluatorValidateMatchesValues(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	posts := []url.Values{validPost(), {}, {"LOGIN": {"garage-dupont"}}}

	for i, post := range posts {
		res := evaluate(t, reg, surface.FromValues(post), "repairer")
		ok := form.NewEvaluator(reg, surface.FromValues(post)).ValidateForm("repairer")
		assert.Equal(t, res.Valid(), ok, "post #%d", i)
	}
}

func TestEvaluatorUnknownForm(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	page := surface.NewPage()
	before := testutil.ToFloat64(metrics.UnknownFormTotal)

	res, err := form.NewEvaluator(reg, page).GetFormValues("nope")
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, form.ErrUnknownForm))
	assert.False(t, form.NewEvaluator(reg, page).ValidateForm("nope"))

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.UnknownFormTotal))
	assert.Empty(t, page.Presentation().Indicators)
}

func TestEvaluatorDegenerateFields(t *testing.T) {
	fd := &form.FormDef{
		ID: "odd",
		Fields: form.FieldList{
			{Key: "EMPTY_BODY"},
			{Key: "NO_SOURCE", Def: &form.FieldDef{Type: form.TypeString}},
			{Key: "BAD_TYPE", Def: &form.FieldDef{
				FieldID: "BAD", Type: form.TypeUnknown, ErrorID: "BAD_error", RedlightOnError: true,
			}},
			{Key: "MISSING_OPTIONAL", Def: &form.FieldDef{FieldID: "GONE", Type: form.TypeString}},
			{Key: "MISSING_REQUIRED", Def: &form.FieldDef{FieldID: "GONE", Type: form.TypeString, Required: true}},
			{Key: "STATIC", Def: &form.FieldDef{FieldID: "X", Type: form.TypeString, Value: ptr(" fixed ")}},
			{Key: "TYPED_MARKER", Def: &form.FieldDef{FieldID: "X", Type: form.TypeString}},
		},
	}
	reg := newRegistry(t, fd)
	page := surface.FromValues(url.Values{"X": {form.ErrorMarker}, "BAD": {"anything"}})

	res := evaluate(t, reg, page, "odd")

	assert.Equal(t, map[string]string{
		"EMPTY_BODY":       form.ErrorMarker,
		"NO_SOURCE":        form.ErrorMarker,
		"BAD_TYPE":         form.ErrorMarker,
		"MISSING_REQUIRED": form.ErrorMarker,
	}, res.Errors)
	assert.Equal(t, map[string]any{
		"MISSING_OPTIONAL": "",
		"STATIC":           "fixed",
		"TYPED_MARKER":     form.ErrorMarker,
	}, res.Values)

	// the unrecognized kind leaves its indicator and border alone
	pres := page.Presentation()
	assert.NotContains(t, pres.Indicators, "BAD_error")
	assert.NotContains(t, pres.Borders, form.Target{ID: "BAD"}.Key())
}

func TestEvaluatorEmptyForm(t *testing.T) {
	reg := newRegistry(t, &form.FormDef{ID: "empty"})
	res := evaluate(t, reg, surface.NewPage(), "empty")
	assert.True(t, res.Valid())
	assert.Empty(t, res.Values)
}

func TestEvaluatorMetrics(t *testing.T) {
	reg := newRegistry(t, repairerForm())
	valid := metrics.EvaluationsTotal.WithLabelValues("repairer", "valid")
	invalid := metrics.EvaluationsTotal.WithLabelValues("repairer", "invalid")
	pwd := metrics.FieldErrorsTotal.WithLabelValues("repairer", "password")
	v0, i0, p0 := testutil.ToFloat64(valid), testutil.ToFloat64(invalid), testutil.ToFloat64(pwd)

	evaluate(t, reg, surface.FromValues(validPost()), "repairer")
	post := validPost()
	post.Set("PWD", "")
	evaluate(t, reg, surface.FromValues(post), "repairer")

	assert.Equal(t, v0+1, testutil.ToFloat64(valid))
	assert.Equal(t, i0+1, testutil.ToFloat64(invalid))
	assert.Equal(t, p0+1, testutil.ToFloat64(pwd))
}

func TestRegistryDuplicate(t *testing.T) {
	_, err := form.NewRegistry(&form.FormDef{ID: "a"}, &form.FormDef{ID: "a"})
	assert.ErrorIs(t, err, form.ErrDuplicateForm)
}
