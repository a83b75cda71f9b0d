package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

var schemaOnce = sync.OnceValue(func() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Anonymous:                  true,
	}
	b, err := reflector.Reflect(&CampaignAnalysis{}).MarshalJSON()
	if err != nil {
		panic(fmt.Sprintf("reflect analysis schema: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(fmt.Sprintf("decode analysis schema: %v", err))
	}
	// gojsonschema predates the 2020-12 meta-schema the reflector declares;
	// without the marker it validates in its hybrid draft mode.
	delete(m, "$schema")
	delete(m, "$id")
	return m
})

// Schema returns the JSON Schema reflected from CampaignAnalysis. The map is
// shared; callers must not modify it.
func Schema() map[string]any {
	return schemaOnce()
}

// SchemaJSON returns Schema rendered as indented JSON, for prompts.
func SchemaJSON() string {
	b, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "analysis failed schema validation: " + strings.Join(e.Problems, "; ")
}

// Validate checks a decoded JSON document (as produced by json.Unmarshal into
// an any) against Schema.
func Validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(Schema()),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate analysis: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Problems: problems}
}
