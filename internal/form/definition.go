// internal/form/definition.go
//
// Formcheck – Forms subsystem: YAML definition loader and registry.
//
// Context
//   Each form is declared in a YAML file.  The file names the form and lists
//   its fields as an ordered mapping from field key to descriptor, the same
//   shape the browser-side configurations have always used:
//
//       id: createClaim
//       fields:
//         TITLE:
//           fieldId: TITLE
//           type: string
//           required: "true"
//           maxlength: 254
//
//   At start-up every “*.yaml” under the configured directories is parsed
//   and the resulting FormDefs are frozen into a Registry.  Evaluators get
//   the Registry by handle.  Nothing mutates it after construction.
//
// Workflow
//   •  LoadFormDef parses a single YAML file.
//   •  LoadDirs walks directories in precedence order, parses files
//      concurrently, and builds a Registry.  The first definition of an ID
//      wins.
//   •  NewRegistry freezes already-built definitions (tests, SQL loader).
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef is one named, ordered form configuration.
type FormDef struct {
	ID     string    `yaml:"id"     json:"id"`
	Title  string    `yaml:"title"  json:"title,omitempty"`
	Fields FieldList `yaml:"fields" json:"fields"`
}

// Field pairs the output key with its descriptor.  Def is nil when the
// configuration declares the key without a body; such a field always fails.
type Field struct {
	Key string    `json:"key"`
	Def *FieldDef `json:"def"`
}

// FieldList keeps fields in declaration order.
type FieldList []Field

// FieldDef describes how to locate, sanitize, and present one field.
// Pointer members are optional; nil means the attribute is absent.
type FieldDef struct {
	FieldID         string    `yaml:"fieldId"         json:"fieldId,omitempty"`
	Type            FieldType `yaml:"type"            json:"type"`
	Value           *string   `yaml:"value"           json:"value,omitempty"`
	Required        Flag      `yaml:"required"        json:"required"`
	MinLength       *int      `yaml:"minlength"       json:"minlength,omitempty"`
	MaxLength       *int      `yaml:"maxlength"       json:"maxlength,omitempty"`
	Min             *float64  `yaml:"min"             json:"min,omitempty"`
	Max             *float64  `yaml:"max"             json:"max,omitempty"`
	RedlightOnError Flag      `yaml:"redlightOnError" json:"redlightOnError"`
	ErrorID         string    `yaml:"errorId"         json:"errorId,omitempty"`
}

// Flag is a two-valued switch.  Configuration spells it "true" or "false"
// (quoted or bare); anything other than exactly "true" is false.
type Flag bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Flag) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected \"true\" or \"false\"", n.Line)
	}
	*f = Flag(n.Value == "true")
	return nil
}

// UnmarshalYAML folds legacy spellings onto the enum.
func (t *FieldType) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: field type must be a string", n.Line)
	}
	*t = ParseFieldType(n.Value)
	return nil
}

// UnmarshalYAML reads a mapping node pair by pair so key order survives.
func (l *FieldList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping of key to descriptor", n.Line)
	}

	out := make(FieldList, 0, len(n.Content)/2)
	seen := make(map[string]struct{}, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if _, dup := seen[k.Value]; dup {
			return fmt.Errorf("line %d: duplicate field key %q", k.Line, k.Value)
		}
		seen[k.Value] = struct{}{}

		f := Field{Key: k.Value}
		if v.Tag != "!!null" {
			f.Def = new(FieldDef)
			if err := v.Decode(f.Def); err != nil {
				return fmt.Errorf("field %s: %w", k.Value, err)
			}
		}
		out = append(out, f)
	}

	*l = out
	return nil
}

// Keys returns the field keys in declaration order.
func (fd *FormDef) Keys() []string {
	keys := make([]string, len(fd.Fields))
	for i, f := range fd.Fields {
		keys[i] = f.Key
	}
	return keys
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// ErrDuplicateForm is returned by NewRegistry when two definitions share an ID.
var ErrDuplicateForm = errors.New("duplicate form id")

// Registry is the read-only set of known forms.  Safe for concurrent reads.
type Registry struct {
	forms map[string]*FormDef
}

// NewRegistry freezes defs into a Registry.
func NewRegistry(defs ...*FormDef) (*Registry, error) {
	r := &Registry{forms: make(map[string]*FormDef, len(defs))}
	for _, fd := range defs {
		if fd == nil || fd.ID == "" {
			return nil, errors.New("form definition without id")
		}
		if _, dup := r.forms[fd.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateForm, fd.ID)
		}
		r.forms[fd.ID] = fd
	}
	return r, nil
}

// Lookup returns the FormDef registered under id.
func (r *Registry) Lookup(id string) (*FormDef, bool) {
	fd, ok := r.forms[id]
	return fd, ok
}

// IDs returns every registered form ID, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of registered forms.
func (r *Registry) Len() int { return len(r.forms) }

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML file.  When the document omits “id” the file
// name without extension is used.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}

	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}

	if fd.ID == "" {
		fd.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &fd, nil
}

// LoadDirs builds a Registry from every YAML file below dirs.  The slice must
// be ordered by precedence, overrides first.  Missing directories are
// skipped; any parse error aborts the load.
//
// Example:
//
//	reg, err := form.LoadDirs(ctx,
//	    "/var/formcheck/sites/acme/forms", // overrides
//	    "/var/formcheck/forms",            // defaults
//	)
func LoadDirs(ctx context.Context, dirs ...string) (*Registry, error) {
	if len(dirs) == 0 {
		return nil, errors.New("LoadDirs: no directories provided")
	}

	var paths []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !isYAML(d.Name()) {
				return nil
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	defs := make([]*FormDef, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fd, err := LoadFormDef(path)
			if err != nil {
				return err
			}
			defs[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Walk order is precedence order, so keep the first of each ID.
	kept := make([]*FormDef, 0, len(defs))
	seen := make(map[string]string, len(defs))
	for i, fd := range defs {
		if first, dup := seen[fd.ID]; dup {
			zap.S().Debugw("form definition shadowed",
				"form", fd.ID, "file", paths[i], "kept", first)
			continue
		}
		seen[fd.ID] = paths[i]
		kept = append(kept, fd)
	}

	zap.S().Infow("form definitions loaded", "forms", len(kept), "files", len(paths))
	return NewRegistry(kept...)
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
