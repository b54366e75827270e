package store

import (
	"fmt"
	"strings"
)

// Queryable document field names.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldAddress = "address"
)

// fieldNames lists the document fields in their canonical order.
var fieldNames = []string{FieldName, FieldEmail, FieldPhone, FieldAddress}

// User is a directory record.  ID is assigned by the store when the record
// is created and never changes afterwards.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Fields returns the editable part of the record.
func (u User) Fields() Fields {
	return Fields{Name: u.Name, Email: u.Email, Phone: u.Phone, Address: u.Address}
}

// String renders the user for log lines and CLI output.
func (u User) String() string {
	return fmt.Sprintf("%s <%s> (%s)", u.Name, u.Email, u.ID)
}

// Fields holds the four editable fields of a user.  Name and Email are
// required by the form; the store itself accepts any values.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// WithID attaches an identifier, producing a full record.
func (f Fields) WithID(id string) User {
	return User{ID: id, Name: f.Name, Email: f.Email, Phone: f.Phone, Address: f.Address}
}

// Value returns the value of the named field.
func (f Fields) Value(field string) (string, error) {
	switch field {
	case FieldName:
		return f.Name, nil
	case FieldEmail:
		return f.Email, nil
	case FieldPhone:
		return f.Phone, nil
	case FieldAddress:
		return f.Address, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// Set assigns the named field.
func (f *Fields) Set(field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldAddress:
		f.Address = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Patch is a partial record.  Nil fields are left untouched by UpdateByID.
type Patch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// FullPatch builds a patch that overwrites all four fields.
func FullPatch(f Fields) Patch {
	name, email, phone, address := f.Name, f.Email, f.Phone, f.Address
	return Patch{Name: &name, Email: &email, Phone: &phone, Address: &address}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil
}

// Apply returns f with the patch's non-nil fields applied.
func (p Patch) Apply(f Fields) Fields {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.Address != nil {
		f.Address = *p.Address
	}
	return f
}

// Values returns the patch as document field name → value, in canonical
// field order.  The slice form keeps generated SQL deterministic.
func (p Patch) Values() []FieldValue {
	ptrs := []*string{p.Name, p.Email, p.Phone, p.Address}
	out := make([]FieldValue, 0, len(ptrs))
	for i, ptr := range ptrs {
		if ptr != nil {
			out = append(out, FieldValue{Field: fieldNames[i], Value: *ptr})
		}
	}
	return out
}

// FieldValue pairs a document field name with a value.
type FieldValue struct {
	Field string
	Value string
}

// ValidField reports whether field names a queryable document field.
func ValidField(field string) bool {
	for _, f := range fieldNames {
		if f == field {
			return true
		}
	}
	return false
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
