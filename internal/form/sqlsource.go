// internal/form/sqlsource.go
//
// Formcheck – Forms subsystem: SQL-backed definitions.
//
// Context
//   Deployments that manage forms from an admin screen keep descriptors in
//   the `form_field` table instead of YAML.  One row per field; `position`
//   gives declaration order inside a form.  NULL columns mean the attribute
//   is absent.
//
//       CREATE TABLE form_field (
//         form_id           VARCHAR(64)  NOT NULL,
//         position          INT          NOT NULL,
//         field_key         VARCHAR(64)  NOT NULL,
//         field_id          VARCHAR(128) NULL,
//         type              VARCHAR(32)  NOT NULL,
//         value             TEXT         NULL,
//         required          BOOLEAN      NOT NULL DEFAULT FALSE,
//         minlength         INT          NULL,
//         maxlength         INT          NULL,
//         min               DOUBLE       NULL,
//         max               DOUBLE       NULL,
//         redlight_on_error BOOLEAN      NOT NULL DEFAULT FALSE,
//         error_id          VARCHAR(128) NULL,
//         PRIMARY KEY (form_id, field_key)
//       );
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const fieldQuery = `SELECT form_id, field_key, field_id, type, value, required, minlength, maxlength, min, max, redlight_on_error, error_id FROM form_field ORDER BY form_id, position`

type fieldRow struct {
	FormID          string          `db:"form_id"`
	Key             string          `db:"field_key"`
	FieldID         sql.NullString  `db:"field_id"`
	Type            string          `db:"type"`
	Value           sql.NullString  `db:"value"`
	Required        bool            `db:"required"`
	MinLength       sql.NullInt64   `db:"minlength"`
	MaxLength       sql.NullInt64   `db:"maxlength"`
	Min             sql.NullFloat64 `db:"min"`
	Max             sql.NullFloat64 `db:"max"`
	RedlightOnError bool            `db:"redlight_on_error"`
	ErrorID         sql.NullString  `db:"error_id"`
}

// LoadFromDB builds a Registry from the form_field table.
func LoadFromDB(ctx context.Context, db sqlx.QueryerContext) (*Registry, error) {
	var rows []fieldRow
	if err := sqlx.SelectContext(ctx, db, &rows, fieldQuery); err != nil {
		return nil, fmt.Errorf("select form fields: %w", err)
	}

	var (
		defs  []*FormDef
		index = make(map[string]*FormDef)
		keys  = make(map[string]struct{})
	)
	for _, r := range rows {
		fd, ok := index[r.FormID]
		if !ok {
			fd = &FormDef{ID: r.FormID}
			index[r.FormID] = fd
			defs = append(defs, fd)
		}
		if _, dup := keys[r.FormID+"\x00"+r.Key]; dup {
			return nil, fmt.Errorf("form %s: duplicate field key %q", r.FormID, r.Key)
		}
		keys[r.FormID+"\x00"+r.Key] = struct{}{}
		fd.Fields = append(fd.Fields, Field{Key: r.Key, Def: r.def()})
	}

	zap.S().Infow("form definitions loaded", "forms", len(defs), "rows", len(rows))
	return NewRegistry(defs...)
}

func (r fieldRow) def() *FieldDef {
	d := &FieldDef{
		FieldID:         r.FieldID.String,
		Type:            ParseFieldType(r.Type),
		Required:        Flag(r.Required),
		RedlightOnError: Flag(r.RedlightOnError),
		ErrorID:         r.ErrorID.String,
	}
	if r.Value.Valid {
		v := r.Value.String
		d.Value = &v
	}
	if r.MinLength.Valid {
		n := int(r.MinLength.Int64)
		d.MinLength = &n
	}
	if r.MaxLength.Valid {
		n := int(r.MaxLength.Int64)
		d.MaxLength = &n
	}
	if r.Min.Valid {
		d.Min = &r.Min.Float64
	}
	if r.Max.Valid {
		d.Max = &r.Max.Float64
	}
	return d
}
