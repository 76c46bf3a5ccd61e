package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/smartlife/devicebridge/internal/types"
)

func TestValidateCommands(t *testing.T) {
	v, err := NewCommandValidator()
	if err != nil {
		t.Fatalf("NewCommandValidator: %v", err)
	}

	tests := []struct {
		name     string
		commands map[string]any
		wantErr  bool
	}{
		{"bool value", map[string]any{"switch_1": true}, false},
		{"number value", map[string]any{"bright_value": 255}, false},
		{"string value", map[string]any{"work_mode": "white"}, false},
		{"mixed values", map[string]any{"switch_1": false, "temp_set": 23.5}, false},
		{"empty object", map[string]any{}, true},
		{"nested object", map[string]any{"colour_data": map[string]any{"h": 1}}, true},
		{"array value", map[string]any{"codes": []any{1, 2}}, true},
		{"null value", map[string]any{"switch_1": nil}, true},
		{"oversized key", map[string]any{strings.Repeat("k", 65): true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCommands(tt.commands)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCommands(%v) err = %v, wantErr %v", tt.commands, err, tt.wantErr)
			}
			if err != nil {
				var bridgeErr *types.BridgeError
				if !errors.As(err, &bridgeErr) || bridgeErr.Code != types.CodeInvalidPayload {
					t.Errorf("err = %v, want BridgeError %s", err, types.CodeInvalidPayload)
				}
			}
		})
	}
}
