package utils

import (
	"reflect"
	"strings"
)

// NormalizePtrDTO trims *string fields and rounds *float64 fields on a pointer-to-struct DTO.
// Only non-nil pointer fields are touched; nils stay nil so GORM won't update them.
// Non-nil pointers to nested DTOs get the same treatment.
func NormalizePtrDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	normalizePtrFields(v.Elem())
}

func normalizePtrFields(s reflect.Value) {
	if s.Kind() != reflect.Struct {
		return
	}
	t := s.Type()
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !t.Field(i).IsExported() || f.Kind() != reflect.Ptr || f.IsNil() {
			continue
		}
		ef := f.Elem()
		switch ef.Kind() {
		case reflect.String:
			ef.SetString(strings.TrimSpace(ef.String()))
		case reflect.Float64:
			ef.SetFloat(Round2(ef.Float()))
		case reflect.Struct:
			if isLocalType(ef.Type()) {
				normalizePtrFields(ef)
			}
		}
	}
}

// NormalizeDTO trims string fields and rounds float64 fields on a pointer-to-struct DTO.
// Nested structs and slices of structs (invoice parties and line items) are
// walked too. Named string types such as currency codes are trimmed as well.
func NormalizeDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr {
		return
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return
	}
	normalizeStruct(s)
}

func normalizeStruct(s reflect.Value) {
	t := s.Type()
	for i := 0; i < s.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		normalizeValue(s.Field(i))
	}
}

func normalizeValue(f reflect.Value) {
	switch f.Kind() {
	case reflect.String:
		if f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	case reflect.Float64:
		if f.CanSet() {
			f.SetFloat(Round2(f.Float()))
		}
	case reflect.Struct:
		if isLocalType(f.Type()) {
			normalizeStruct(f)
		}
	case reflect.Slice:
		for j := 0; j < f.Len(); j++ {
			normalizeValue(f.Index(j))
		}
	case reflect.Ptr:
		if !f.IsNil() && f.Elem().Kind() == reflect.Struct {
			normalizeValue(f.Elem())
		}
	}
}

// isLocalType reports whether t is an anonymous struct or one of ours. Library
// types such as time.Time and decimal.Decimal are left alone.
func isLocalType(t reflect.Type) bool {
	return t.PkgPath() == "" || strings.HasPrefix(t.PkgPath(), "invoice-backend/")
}
