package rpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// Struct keys used on the wire.
const (
	keyID    = "id"
	keyLower = "lower"
	keyUpper = "upper"
	keyField = "field"
	keyPatch = "patch"
)

// FieldsToStruct encodes the four editable fields.
func FieldsToStruct(f store.Fields) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		store.FieldName:    structpb.NewStringValue(f.Name),
		store.FieldEmail:   structpb.NewStringValue(f.Email),
		store.FieldPhone:   structpb.NewStringValue(f.Phone),
		store.FieldAddress: structpb.NewStringValue(f.Address),
	}}
}

// StructToFields decodes fields.  Missing keys decode as "".
func StructToFields(s *structpb.Struct) (store.Fields, error) {
	var f store.Fields
	for _, field := range []string{store.FieldName, store.FieldEmail, store.FieldPhone, store.FieldAddress} {
		v, _, err := stringField(s, field)
		if err != nil {
			return store.Fields{}, err
		}
		// field is one of the four known names.
		_ = f.Set(field, v)
	}
	return f, nil
}

// UserToStruct encodes a full record.
func UserToStruct(u store.User) *structpb.Struct {
	s := FieldsToStruct(u.Fields())
	s.Fields[keyID] = structpb.NewStringValue(u.ID)
	return s
}

// StructToUser decodes a full record.  Failures are *store.DecodeError.
func StructToUser(s *structpb.Struct) (store.User, error) {
	id, _, err := stringField(s, keyID)
	if err != nil {
		return store.User{}, &store.DecodeError{Err: err}
	}
	f, err := StructToFields(s)
	if err != nil {
		return store.User{}, &store.DecodeError{ID: id, Err: err}
	}
	return f.WithID(id), nil
}

// UsersToList encodes the result of FetchAll and RangeQuery.
func UsersToList(users []store.User) *structpb.ListValue {
	l := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(users))}
	for _, u := range users {
		l.Values = append(l.Values, structpb.NewStructValue(UserToStruct(u)))
	}
	return l
}

// ListToUsers decodes a user list.  It never returns a nil slice on
// success.
func ListToUsers(l *structpb.ListValue) ([]store.User, error) {
	out := make([]store.User, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, &store.DecodeError{Err: fmt.Errorf("list entry %d is not a record", i)}
		}
		u, err := StructToUser(s)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// RangeQueryToStruct encodes a RangeQuery request.
func RangeQueryToStruct(field, lower, upper string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		keyField: structpb.NewStringValue(field),
		keyLower: structpb.NewStringValue(lower),
		keyUpper: structpb.NewStringValue(upper),
	}}
}

// StructToRangeQuery decodes a RangeQuery request.
func StructToRangeQuery(s *structpb.Struct) (field, lower, upper string, err error) {
	if field, _, err = stringField(s, keyField); err != nil {
		return "", "", "", err
	}
	if lower, _, err = stringField(s, keyLower); err != nil {
		return "", "", "", err
	}
	if upper, _, err = stringField(s, keyUpper); err != nil {
		return "", "", "", err
	}
	return field, lower, upper, nil
}

// UpdateToStruct encodes an UpdateByID request.  Only the patch's set
// fields are carried.
func UpdateToStruct(id string, p store.Patch) *structpb.Struct {
	patch := &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	for _, fv := range p.Values() {
		patch.Fields[fv.Field] = structpb.NewStringValue(fv.Value)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		keyID:    structpb.NewStringValue(id),
		keyPatch: structpb.NewStructValue(patch),
	}}
}

// StructToUpdate decodes an UpdateByID request.
func StructToUpdate(s *structpb.Struct) (string, store.Patch, error) {
	id, _, err := stringField(s, keyID)
	if err != nil {
		return "", store.Patch{}, err
	}
	var p store.Patch
	targets := map[string]**string{
		store.FieldName:    &p.Name,
		store.FieldEmail:   &p.Email,
		store.FieldPhone:   &p.Phone,
		store.FieldAddress: &p.Address,
	}
	ps := s.GetFields()[keyPatch].GetStructValue()
	for field, dst := range targets {
		v, ok, err := stringField(ps, field)
		if err != nil {
			return "", store.Patch{}, err
		}
		if ok {
			*dst = &v
		}
	}
	return id, p, nil
}

// stringField reads key from s.  A missing key or a null value reports
// ok=false; any kind other than string is an error.
func stringField(s *structpb.Struct, key string) (v string, ok bool, err error) {
	val, present := s.GetFields()[key]
	if !present {
		return "", false, nil
	}
	switch k := val.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, true, nil
	case *structpb.Value_NullValue:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("field %q is not a string", key)
	}
}
