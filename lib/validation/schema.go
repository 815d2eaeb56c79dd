package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SceneGuessSchema defines the JSON shape the inference provider must return
// when asked to identify a scene from a frame description.
var SceneGuessSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"media_type": {"type": "string", "enum": ["movie", "series", "anime"]},
		"year": {"type": "integer", "minimum": 0},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"explanation": {"type": "string"}
	},
	"required": ["title", "media_type", "confidence"],
	"additionalProperties": false
}`

// ValidateSceneGuess validates an inference response against the scene guess
// schema. Model output is untrusted; anything off-schema is rejected before
// it reaches the session.
func ValidateSceneGuess(jsonData []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(SceneGuessSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate JSON schema: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("scene guess failed validation: %s", strings.Join(problems, "; "))
	}

	return nil
}
