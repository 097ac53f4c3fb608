package main

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// eventSchemaDoc constrains the inbound PostToolUse payload to the shape
// spec §6 defines. run logs a schema violation as a warning and still
// drives PostWriteHook best-effort with whatever fields decoded.
const eventSchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["hook_event_name", "tool_name", "tool_input"],
  "properties": {
    "hook_event_name": {"type": "string"},
    "tool_name": {"type": "string"},
    "tool_input": {
      "type": "object",
      "required": ["file_path"],
      "properties": {
        "file_path": {"type": "string", "minLength": 1},
        "content": {"type": "string"},
        "edits": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "old_string": {"type": "string"},
              "new_string": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

var eventSchema = mustCompileEventSchema()

func mustCompileEventSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("event.json", bytes.NewReader([]byte(eventSchemaDoc))); err != nil {
		panic(fmt.Sprintf("qualitygate-hook: invalid embedded event schema: %v", err))
	}
	return compiler.MustCompile("event.json")
}

// validateEvent checks raw against the PostToolUse event schema. Any
// tool_name is schema-valid; isRecognizedTool filters to Write/Edit/
// MultiEdit downstream so non-write tools noop quietly instead of erroring.
// Only missing/malformed required fields are rejected here.
func validateEvent(raw interface{}) error {
	return eventSchema.Validate(raw)
}
