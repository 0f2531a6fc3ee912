package utils

import (
	"reflect"
	"strconv"
	"strings"

	"gorm.io/gorm/schema"
)

var columnNames = schema.NamingStrategy{}

// UpdatesFromPtrDTO collects the non-nil pointer fields of a pointer DTO into
// a column map for gorm's Updates. The column is the json name run through
// gorm's naming strategy, so "invoiceLogo" maps to "invoice_logo". A non-nil
// pointer to a nested DTO is flattened under its own column as prefix, the
// way gorm stores embedded structs: signature.name lands in "signature_name".
// renames replaces a derived column name (e.g. {"invoice_logo": "logo"}).
func UpdatesFromPtrDTO(dto any, renames map[string]string) map[string]any {
	res := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return res
	}
	collectUpdates(v.Elem(), "", renames, res)
	return res
}

func collectUpdates(s reflect.Value, prefix string, renames map[string]string, res map[string]any) {
	if s.Kind() != reflect.Struct {
		return
	}
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := s.Field(i)
		if !sf.IsExported() || fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		name := strings.Split(sf.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		col := prefix + columnNames.ColumnName("", name)
		if alt, ok := renames[col]; ok && alt != "" {
			col = alt
		}
		elem := fv.Elem()
		if elem.Kind() == reflect.Struct && isLocalType(elem.Type()) {
			collectUpdates(elem, col+"_", renames, res)
			continue
		}
		res[col] = elem.Interface()
	}
}

// ParseIntDefault parses a non-negative query value, falling back to def.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
