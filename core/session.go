// Package orchestration runs the realtime side of one inbound call: it
// owns the duplex connection to the conversational engine, reassembles
// streamed tool calls, dispatches them, and winds the call down through
// every channel that might keep it alive.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donext/calls-core/core/events"
	"github.com/donext/calls-core/core/tools"
)

// State is the session lifecycle. Ended is terminal.
type State int

const (
	StateConnecting State = iota
	StateActive
	StateEnding
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// EngineConn is the duplex connection surface the session drives.
// [realtime.Conn] satisfies it.
type EngineConn interface {
	ReadEvent() (events.Event, error)
	SendAssistantMessage(text string) error
	SendFunctionOutput(invocationID, output string) error
	CreateResponse() error
	CancelResponse() error
	DisableTurnDetection() error
	SetReadDeadline(t time.Time) error
	Close() error
	Closed() bool
}

// Dispatcher executes one assembled tool call.
type Dispatcher interface {
	Dispatch(ctx context.Context, sess tools.Session, call tools.Call) tools.Result
}

// EngineControl hangs up the engine side of a call over its REST
// surface. [realtime.CallControl] satisfies it.
type EngineControl interface {
	Hangup(ctx context.Context, callID string) error
}

// Telephony hangs up the provider leg of a call. [twilio.Client]
// satisfies it.
type Telephony interface {
	Hangup(ctx context.Context, callSID string) error
}

// CallSession is the runtime state for one active inbound call. Its
// event loop is single-threaded: an event is fully processed, including
// any backend call it triggers, before the next one is read.
type CallSession struct {
	id         string
	conn       EngineConn
	dispatcher Dispatcher
	caller     tools.Session

	state     State
	assembler assembler

	terminateOnce sync.Once
	options       sessionOptions
}

func NewCallSession(conn EngineConn, dispatcher Dispatcher, caller tools.Session, opts ...SessionOption) *CallSession {
	s := &CallSession{
		id:         uuid.NewString(),
		conn:       conn,
		dispatcher: dispatcher,
		caller:     caller,
		state:      StateConnecting,
		assembler:  newAssembler(),
		options: sessionOptions{
			gracePeriod:    2 * time.Second,
			closingMessage: "כל טוב ולהתראות",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *CallSession) State() State {
	return s.state
}

// Run drives the event loop until the call ends. It returns nil for
// every orderly ending; a connection loss mid-call returns the read
// error, and no wind-down is attempted since the peer is unreachable.
func (s *CallSession) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "call session")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.String("session.role", s.caller.Role.String()),
		attribute.Int("session.campaign_id", s.caller.CampaignID),
	)

	// Request the opening turn so the engine speaks first.
	if err := s.conn.CreateResponse(); err != nil {
		s.state = StateEnded
		err = fmt.Errorf("failed to request opening turn: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.state = StateActive
	logger.InfoContext(ctx, "call session active", "session_id", s.id, "role", s.caller.Role)

	for s.state == StateActive {
		if s.options.idleTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.options.idleTimeout))
		}

		event, err := s.conn.ReadEvent()
		if err != nil {
			return s.handleReadError(ctx, span, err)
		}

		switch e := event.(type) {
		case events.FunctionCallArgumentsDelta:
			if e.InvocationID == "" {
				continue
			}
			s.assembler.appendFragment(e.InvocationID, e.Name, e.Delta)

		case events.FunctionCallArgumentsDone:
			if e.InvocationID == "" {
				logger.WarnContext(ctx, "tool completion without an invocation id ignored")
				continue
			}
			call, ok := s.assembler.complete(e.InvocationID, e.Name)
			if !ok {
				logger.WarnContext(ctx, "duplicate tool completion ignored", "invocation_id", e.InvocationID)
				continue
			}
			s.handleToolCall(ctx, call)

		case events.CallEnded:
			logger.InfoContext(ctx, "call ended by provider")
			s.state = StateEnding
			if err := s.conn.Close(); err != nil {
				logger.WarnContext(ctx, "failed to close connection after call end", "error", err)
			}
			s.state = StateEnded

		case events.ResponseError:
			logger.ErrorContext(ctx, "engine reported fatal error", "message", e.Message)
			span.SetStatus(codes.Error, "engine error: "+e.Message)
			s.state = StateEnding
			if err := s.conn.Close(); err != nil {
				logger.WarnContext(ctx, "failed to close connection after engine error", "error", err)
			}
			s.state = StateEnded

		case events.Unknown:
			// Audio frames, transcripts and other kinds the session
			// does not act on.
		}
	}

	return nil
}

// handleToolCall delivers the tool result back to the engine. Every
// invocation, refusals included, gets a function output followed by a
// response request; end_call additionally winds the call down.
func (s *CallSession) handleToolCall(ctx context.Context, call tools.Call) {
	result := s.dispatcher.Dispatch(ctx, s.caller, call)

	if err := s.conn.SendFunctionOutput(call.InvocationID, result.Output); err != nil {
		logger.ErrorContext(ctx, "failed to deliver tool result", "tool", call.Name, "error", err)
	}
	if err := s.conn.CreateResponse(); err != nil {
		logger.ErrorContext(ctx, "failed to request response turn", "tool", call.Name, "error", err)
	}

	if result.EndCall {
		s.state = StateEnding
		s.terminate(ctx)
		s.state = StateEnded
	}
}

func (s *CallSession) handleReadError(ctx context.Context, span trace.Span, err error) error {
	if s.conn.Closed() {
		s.state = StateEnded
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		logger.InfoContext(ctx, "idle timeout reached, ending call")
		s.state = StateEnding
		_ = s.conn.SetReadDeadline(time.Time{})
		s.terminate(ctx)
		s.state = StateEnded
		return nil
	}

	// The peer is unreachable, so no wind-down is possible.
	s.state = StateEnded
	err = fmt.Errorf("connection to engine lost: %w", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
