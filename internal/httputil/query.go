package httputil

import (
	"net/url"
	"reflect"
)

// GetURLFields returns the fields of the filter struct that are set
// in the URL query string.
//
// queryFields contains the names of the fields that filter resources
// directly and can be passed to gorm's Where. setFields contains the
// names of all set fields, including the ones that are processed by
// explicit logic in the controller (tagged with filterField:"false").
func GetURLFields(url *url.URL, filter any) ([]any, []string) {
	var queryFields []any
	var setFields []string

	val := reflect.Indirect(reflect.ValueOf(filter))
	for i := 0; i < val.NumField(); i++ {
		field := val.Type().Field(i).Name
		param := val.Type().Field(i).Tag.Get("form")
		filterField := val.Type().Field(i).Tag.Get("filterField")

		if url.Query().Has(param) {
			setFields = append(setFields, field)

			if filterField != "false" {
				queryFields = append(queryFields, field)
			}
		}
	}

	return queryFields, setFields
}
