package debugexport

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/iancoleman/orderedmap"
	"github.com/invopop/jsonschema"
)

// Schema reflects Document into a JSON Schema document, grounded on the
// teacher's effects/catalog/schema_generate.go reflector invocation
// (RequiredFromJSONSchemaTags + DoNotReference, applied here to Document
// instead of the effect catalog's EntryDocument).
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(Document{}))
	schema.Version = jsonschema.Version
	schema.Title = "WireTuner Debug Export"
	schema.Description = "Bounded-range export of document events and an optional snapshot, for bug reproduction."
	return schema
}

// SchemaJSON serializes Schema() with deterministic key ordering, for the
// `--verbose` CLI diagnostic (spec.md §6.5). jsonschema.Schema already
// marshals through github.com/iancoleman/orderedmap internally (the
// teacher's indirect dependency, pulled in by invopop/jsonschema); this
// round-trips the encoded schema through an explicit orderedmap so the
// indent pass below doesn't depend on encoding/json's map key reordering.
func SchemaJSON() ([]byte, error) {
	raw, err := json.Marshal(Schema())
	if err != nil {
		return nil, fmt.Errorf("debugexport: marshal schema: %w", err)
	}

	ordered := orderedmap.New()
	if err := json.Unmarshal(raw, ordered); err != nil {
		return nil, fmt.Errorf("debugexport: reorder schema keys: %w", err)
	}

	data, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("debugexport: indent schema: %w", err)
	}
	return data, nil
}
