package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/smartlife/devicebridge/internal/types"
)

//go:embed schema/device-commands-v1.json
var commandSchemaJSON string

// CommandValidator checks that a control payload is a flat object of
// function-code to primitive-value pairs before it reaches a backend.
type CommandValidator struct {
	schema *jsonschema.Schema
}

func NewCommandValidator() (*CommandValidator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("device-commands-v1.json",
		strings.NewReader(commandSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("device-commands-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &CommandValidator{schema: schema}, nil
}

// ValidateCommands rejects malformed payloads with INVALID_PAYLOAD.
func (v *CommandValidator) ValidateCommands(commands map[string]any) error {
	// Round-trip through JSON so nested values surface as plain types
	// the schema can judge.
	data, err := json.Marshal(commands)
	if err != nil {
		return types.NewBridgeError(types.CodeInvalidPayload, "commands are not serializable: %v", err)
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return types.NewBridgeError(types.CodeInvalidPayload, "invalid JSON: %v", err)
	}

	if err := v.schema.Validate(payload); err != nil {
		return types.NewBridgeError(types.CodeInvalidPayload, "commands must be a flat object of primitive values: %v", err)
	}

	return nil
}
