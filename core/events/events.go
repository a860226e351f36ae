// Package events defines the inbound events the conversational engine sends
// over the duplex connection, parsed into typed values. Only the kinds the
// session controller reacts to get their own type; everything else parses
// into Unknown and is ignored upstream.
package events

// Kind identifies an inbound engine event type.
type Kind string

const (
	// KindFunctionCallArgumentsDelta carries a fragment of a tool call's
	// argument text.
	KindFunctionCallArgumentsDelta Kind = "response.function_call_arguments.delta"
	// KindFunctionCallArgumentsDone marks a tool call's arguments complete.
	KindFunctionCallArgumentsDone Kind = "response.function_call_arguments.done"
	// KindCallEnded is the provider-issued signal that the call is over.
	KindCallEnded Kind = "realtime.call.ended"
	// KindResponseError is an engine-issued fatal response error.
	KindResponseError Kind = "response.error"
)

// Event is one parsed inbound engine event.
type Event interface {
	Kind() Kind
}

// FunctionCallArgumentsDelta is a streamed fragment of one tool invocation's
// argument text. Name is only populated on the first fragment for an
// invocation, sometimes not at all.
type FunctionCallArgumentsDelta struct {
	InvocationID string
	Name         string
	Delta        string
}

func (FunctionCallArgumentsDelta) Kind() Kind { return KindFunctionCallArgumentsDelta }

// FunctionCallArgumentsDone marks an invocation's argument stream complete.
// The full payload is only trustworthy once this arrives.
type FunctionCallArgumentsDone struct {
	InvocationID string
	Name         string
}

func (FunctionCallArgumentsDone) Kind() Kind { return KindFunctionCallArgumentsDone }

// CallEnded is the provider-side end-of-call signal.
type CallEnded struct{}

func (CallEnded) Kind() Kind { return KindCallEnded }

// ResponseError is a fatal error reported by the engine for the current
// response.
type ResponseError struct {
	Message string
}

func (ResponseError) Kind() Kind { return KindResponseError }

// Unknown is any event type the controller does not handle.
type Unknown struct {
	Type string
}

func (u Unknown) Kind() Kind { return Kind(u.Type) }
