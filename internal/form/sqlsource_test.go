// internal/form/sqlsource_test.go
//
// Unit-tests for LoadFromDB using sqlmock.
//
// Run: go test ./internal/form -run LoadFromDB -v

package form

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var fieldColumns = []string{
	"form_id", "field_key", "field_id", "type", "value", "required",
	"minlength", "maxlength", "min", "max", "redlight_on_error", "error_id",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestLoadFromDB(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(fieldQuery)).
		WillReturnRows(sqlmock.NewRows(fieldColumns).
			AddRow("claimPresimForm", "COUNTRY", "COUNTRY", "select", nil, true, nil, nil, nil, nil, true, nil).
			AddRow("claimPresimForm", "ZIP", "CUSTOMER_ADDR_ZIPCODE", "string", nil, true, 1, 255, nil, nil, true, "zip_error").
			AddRow("claimPresimForm", "SKILLS_ID", "SKILLS_ID", "select2multiple", nil, false, nil, nil, nil, nil, true, nil).
			AddRow("createClaim", "PRICE", "PRICE", "integer", nil, true, nil, nil, 1.0, 99999.0, true, "price_error").
			AddRow("createClaim", "CHANNEL", nil, "string", "web", false, nil, nil, nil, nil, false, nil))

	reg, err := LoadFromDB(context.Background(), db)
	if err != nil {
		t.Fatalf("LoadFromDB error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}

	if got := reg.IDs(); len(got) != 2 || got[0] != "claimPresimForm" || got[1] != "createClaim" {
		t.Fatalf("unexpected forms: %v", got)
	}

	presim, _ := reg.Lookup("claimPresimForm")
	keys := presim.Keys()
	if len(keys) != 3 || keys[0] != "COUNTRY" || keys[1] != "ZIP" || keys[2] != "SKILLS_ID" {
		t.Fatalf("row order lost: %v", keys)
	}

	zip := presim.Fields[1].Def
	if zip.FieldID != "CUSTOMER_ADDR_ZIPCODE" || zip.Type != TypeString || !bool(zip.Required) {
		t.Errorf("zip descriptor: %+v", zip)
	}
	if zip.MinLength == nil || *zip.MinLength != 1 || zip.MaxLength == nil || *zip.MaxLength != 255 {
		t.Errorf("zip bounds: %v %v", zip.MinLength, zip.MaxLength)
	}
	if zip.ErrorID != "zip_error" || zip.Value != nil {
		t.Errorf("zip extras: %+v", zip)
	}
	if presim.Fields[2].Def.Type != TypeMultiSelect {
		t.Errorf("legacy type not folded: %q", presim.Fields[2].Def.Type)
	}

	claim, _ := reg.Lookup("createClaim")
	price := claim.Fields[0].Def
	if price.Min == nil || *price.Min != 1 || price.Max == nil || *price.Max != 99999 {
		t.Errorf("price bounds: %v %v", price.Min, price.Max)
	}
	channel := claim.Fields[1].Def
	if channel.FieldID != "" || channel.Value == nil || *channel.Value != "web" {
		t.Errorf("static field: %+v", channel)
	}
}

func TestLoadFromDBDuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(fieldQuery)).
		WillReturnRows(sqlmock.NewRows(fieldColumns).
			AddRow("f", "A", "A", "string", nil, false, nil, nil, nil, nil, false, nil).
			AddRow("f", "A", "B", "string", nil, false, nil, nil, nil, nil, false, nil))

	if _, err := LoadFromDB(context.Background(), db); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromDBQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(fieldQuery)).WillReturnError(boom)

	_, err := LoadFromDB(context.Background(), db)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}
