package schema

import (
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// KeyName derives the default external key for a Go struct field name.
// e.g. "FirstName" -> "first_name", "ID" -> "id".
func KeyName(fieldName string) string {
	return strcase.ToSnake(fieldName)
}

// SourceName derives the default external source (table) name for a Go
// struct type name. e.g. "UserAccount" -> "user_accounts".
func SourceName(typeName string) string {
	return inflection.Plural(strcase.ToSnake(typeName))
}

// NormalizeKey maps an externally supplied key onto the canonical key form.
// Incoming data frequently carries lowerCamel JSON keys; normalizing lets
// "firstName" match a field keyed "first_name".
func NormalizeKey(key string) string {
	return strcase.ToSnake(key)
}
