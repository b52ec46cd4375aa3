// internal/server/router.go
//
// chi router for the form-check API.
//
// Context
//   Browsers post the raw form body here before submitting it for real.  Each
//   request gets a fresh surface.Page built from the posted values and a
//   fresh form.Evaluator over the shared Registry.  The response carries the
//   sanitized values, the failing keys, and the presentation state (which
//   indicators to show, which borders to paint) for the page to apply.
//
// Routes
//   GET  /healthz                  liveness
//   GET  /metrics                  Prometheus
//   GET  /forms                    registered form IDs
//   GET  /forms/{form}             one definition
//   POST /forms/{form}/values      full evaluation result
//   POST /forms/{form}/validate    verdict only
//
//------------------------------------------------------------------------------

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/formcheck/internal/form"
	"github.com/yanizio/formcheck/internal/middleware"
	"github.com/yanizio/formcheck/internal/requestinfo"
	"github.com/yanizio/formcheck/internal/surface"
)

// maxBodyMemory bounds multipart parsing.  Form checks never carry files.
const maxBodyMemory = 1 << 20

// Options tunes NewRouter.
type Options struct {
	ForceHTTPS bool
	Geo        *requestinfo.Geo // nil disables country lookups
}

// ValuesResponse is the body of POST /forms/{form}/values.
type ValuesResponse struct {
	Valid        bool                 `json:"valid"`
	Values       map[string]any       `json:"values"`
	Errors       map[string]string    `json:"errors"`
	Presentation surface.Presentation `json:"presentation"`
}

// ValidateResponse is the body of POST /forms/{form}/validate.
type ValidateResponse struct {
	Valid        bool                  `json:"valid"`
	Presentation *surface.Presentation `json:"presentation,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

type handler struct {
	forms *form.Registry
	log   *zap.SugaredLogger
}

// NewRouter wires the middleware chain and routes.
func NewRouter(forms *form.Registry, log *zap.SugaredLogger, o Options) http.Handler {
	h := &handler{forms: forms, log: log}

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestLog(log),
		requestinfo.Enrich(o.Geo),
		middleware.ForceHTTPS(o.ForceHTTPS),
		middleware.Security,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/forms", func(r chi.Router) {
		r.Get("/", h.listForms)
		r.Get("/{form}", h.describeForm)
		r.Post("/{form}/values", h.formValues)
		r.Post("/{form}/validate", h.validateForm)
	})
	return r
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (h *handler) listForms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.forms.IDs())
}

func (h *handler) describeForm(w http.ResponseWriter, r *http.Request) {
	fd, ok := h.forms.Lookup(chi.URLParam(r, "form"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{"unknown form"})
		return
	}
	writeJSON(w, http.StatusOK, fd)
}

func (h *handler) formValues(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "form")
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	res, err := form.NewEvaluator(h.forms, page, form.WithLogger(h.log)).GetFormValues(name)
	if errors.Is(err, form.ErrUnknownForm) {
		h.logCheck(r, name, false, "unknown", true)
		writeJSON(w, http.StatusNotFound, errorBody{"unknown form"})
		return
	}

	h.logCheck(r, name, res.Valid(), "failed_fields", len(res.Errors))
	writeJSON(w, http.StatusOK, ValuesResponse{
		Valid:        res.Valid(),
		Values:       res.Values,
		Errors:       res.Errors,
		Presentation: page.Presentation(),
	})
}

func (h *handler) validateForm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "form")
	if _, known := h.forms.Lookup(name); !known {
		h.logCheck(r, name, false, "unknown", true)
		writeJSON(w, http.StatusNotFound, ValidateResponse{Valid: false})
		return
	}
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	valid := form.NewEvaluator(h.forms, page, form.WithLogger(h.log)).ValidateForm(name)
	pres := page.Presentation()

	h.logCheck(r, name, valid)
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: valid, Presentation: &pres})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// page parses the body (urlencoded or multipart) into a surface.Page.  On
// failure it writes a 400 and returns false.
func (h *handler) page(w http.ResponseWriter, r *http.Request) (*surface.Page, bool) {
	err := r.ParseMultipartForm(maxBodyMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, errorBody{"unparsable form body"})
		return nil, false
	}
	return surface.FromValues(r.PostForm), true
}

// logCheck records one evaluation with the client fingerprint.
func (h *handler) logCheck(r *http.Request, name string, valid bool, extra ...any) {
	info := requestinfo.FromContext(r.Context())
	kv := append([]any{
		"form", name,
		"valid", valid,
		"browser", info.Browser,
		"device", info.Device,
		"bot", info.IsBot,
		"country", info.Country,
		"request_id", chimw.GetReqID(r.Context()),
	}, extra...)
	h.log.Infow("form checked", kv...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
