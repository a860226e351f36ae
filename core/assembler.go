package orchestration

import (
	"encoding/json"
	"strings"

	"github.com/donext/calls-core/core/tools"
)

// pendingToolCall accumulates streamed argument fragments for one
// invocation until its completion event arrives.
type pendingToolCall struct {
	name string
	args strings.Builder
}

// assembler reassembles tool calls from the engine's fragment stream.
// It is only ever touched from the session's event loop, so it needs no
// locking.
type assembler struct {
	pending  map[string]*pendingToolCall
	consumed map[string]struct{}
}

func newAssembler() assembler {
	return assembler{
		pending:  map[string]*pendingToolCall{},
		consumed: map[string]struct{}{},
	}
}

func (a *assembler) appendFragment(invocationID, name, delta string) {
	call, ok := a.pending[invocationID]
	if !ok {
		call = &pendingToolCall{}
		a.pending[invocationID] = call
	}
	if name != "" {
		call.name = name
	}
	call.args.WriteString(delta)
}

// complete finalizes an invocation. The second return is false for an
// invocation id that was already handed off, so a duplicate completion
// event dispatches nothing. A completion with no prior fragments yields
// an empty argument structure; so does accumulated text that is not
// valid JSON, since the tool itself reports any missing argument.
func (a *assembler) complete(invocationID, name string) (tools.Call, bool) {
	if _, done := a.consumed[invocationID]; done {
		return tools.Call{}, false
	}
	a.consumed[invocationID] = struct{}{}

	call := tools.Call{InvocationID: invocationID, Name: name, Arguments: "{}"}
	pending, ok := a.pending[invocationID]
	if !ok {
		return call, true
	}
	delete(a.pending, invocationID)

	if pending.name != "" {
		call.Name = pending.name
	}
	if args := pending.args.String(); json.Valid([]byte(args)) {
		call.Arguments = args
	}
	return call, true
}
