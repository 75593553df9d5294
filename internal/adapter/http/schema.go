package httpadapter

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// actionRequestSchema guards the action endpoint: malformed agent submissions
// are rejected before they reach the executor.
const actionRequestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["context", "action"],
  "properties": {
    "context": {
      "type": "object",
      "required": ["game_id", "agent_id"],
      "properties": {
        "game_id": {"type": "string", "minLength": 1},
        "game_onchain_id": {"type": "integer"},
        "agent_id": {"type": "string", "minLength": 1},
        "agent_onchain_id": {"type": "integer"}
      }
    },
    "action": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["MOVE", "BATTLE", "ALLY", "BREAK_ALLIANCE", "IGNORE"]},
        "coordinates": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": {"type": "integer"},
            "y": {"type": "integer"}
          }
        },
        "target_id": {"type": "integer"},
        "message": {"type": "string"}
      }
    }
  }
}`

var compiledActionSchema = jsonschema.MustCompileString("action_request.json", actionRequestSchema)

func validateActionBody(body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := compiledActionSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
