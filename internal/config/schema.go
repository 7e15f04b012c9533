package config

import (
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// Schema describes the YAML config file as JSON Schema, for editors that
// validate wavechase.yaml.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		PreferYAMLSchema:           true,
		DoNotReference:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		Mapper:                     durationSchema,
	}
	s := r.Reflect(new(Config))
	s.Title = "wavechase configuration"
	s.Description = "Level generation, agent tuning and viewer settings. Every field is optional."
	return s
}

var durationType = reflect.TypeOf(time.Duration(0))

// durationSchema maps time.Duration to the string form yaml.v3 parses.
func durationSchema(t reflect.Type) *jsonschema.Schema {
	if t != durationType {
		return nil
	}
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "duration such as 250ms or 1.5s",
	}
}
