// internal/form/fieldtype.go
//
// Formcheck – Forms subsystem: field type enumeration.
//
// Context
//   Every FieldDef names one of a closed set of kinds.  Configuration files
//   spell them as strings, including a few legacy names inherited from older
//   form sets.  ParseFieldType maps each exact spelling onto the enum so the
//   sanitizer can dispatch by table lookup instead of string comparison.
//
//------------------------------------------------------------------------------

package form

// FieldType identifies the sanitation rule set applied to a field.
type FieldType string

const (
	TypeUnknown     FieldType = ""
	TypeString      FieldType = "string"
	TypeInteger     FieldType = "integer"
	TypePassword    FieldType = "password"
	TypeEmail       FieldType = "email"
	TypeSelect      FieldType = "select"
	TypeMultiSelect FieldType = "multiselect"
	TypePhone       FieldType = "phone"
	TypeDate        FieldType = "date"
)

// fieldTypeNames maps every accepted configuration spelling to its enum.
var fieldTypeNames = map[string]FieldType{
	"string":              TypeString,
	"integer":             TypeInteger,
	"password":            TypePassword,
	"email":               TypeEmail,
	"select":              TypeSelect,
	"multiselect":         TypeMultiSelect,
	"select2multiple":     TypeMultiSelect,
	"phone":               TypePhone,
	"phone_international": TypePhone,
	"date":                TypeDate,
	"date_EN":             TypeDate,
}

// ParseFieldType returns the enum for s.  Spellings match exactly, so
// "String" or "date_en" yield TypeUnknown like any other unrecognized name.
func ParseFieldType(s string) FieldType {
	if t, ok := fieldTypeNames[s]; ok {
		return t
	}
	return TypeUnknown
}

// Known reports whether t is one of the recognized kinds.
func (t FieldType) Known() bool {
	_, ok := rules[t]
	return ok || t == TypeMultiSelect
}

// zeroIsEmpty reports whether a required field of this kind treats the
// literal "0" as no selection.
func (t FieldType) zeroIsEmpty() bool {
	switch t {
	case TypeSelect, TypeInteger, TypePhone:
		return true
	}
	return false
}
