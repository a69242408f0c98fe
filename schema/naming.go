package schema

import (
	"github.com/go-openapi/inflect"
)

// TableName derives the conventional table name for a Go type name,
// translating CamelCase to snake_case: "UserProfile" becomes
// "user_profile".
func TableName(typeName string) string {
	return inflect.Underscore(typeName)
}
