package backup

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// Schema describes Document as JSON Schema, for tools that produce or check
// backup files outside the app.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Mapper:         mapDecimal,
	}
	schema := reflector.Reflect(&Document{})
	schema.Title = "Mayra Khata backup"
	return schema
}

// mapDecimal describes decimal.Decimal by its JSON form rather than its Go
// fields.
func mapDecimal(t reflect.Type) *jsonschema.Schema {
	if t != reflect.TypeOf(decimal.Decimal{}) {
		return nil
	}
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`},
			{Type: "number"},
		},
	}
}
