package events

import (
	"encoding/json"
	"fmt"
)

// wireEvent covers the superset of fields the handled event kinds carry.
type wireEvent struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Name   string `json:"name"`
	Delta  string `json:"delta"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Parse decodes one raw inbound frame into a typed event. A frame that is
// not valid JSON is an error; a valid frame of an unhandled type parses into
// Unknown.
func Parse(raw []byte) (Event, error) {
	var wire wireEvent
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse engine event: %w", err)
	}

	switch Kind(wire.Type) {
	case KindFunctionCallArgumentsDelta:
		return FunctionCallArgumentsDelta{
			InvocationID: wire.CallID,
			Name:         wire.Name,
			Delta:        wire.Delta,
		}, nil
	case KindFunctionCallArgumentsDone:
		return FunctionCallArgumentsDone{
			InvocationID: wire.CallID,
			Name:         wire.Name,
		}, nil
	case KindCallEnded:
		return CallEnded{}, nil
	case KindResponseError:
		return ResponseError{Message: wire.Error.Message}, nil
	}

	return Unknown{Type: wire.Type}, nil
}
