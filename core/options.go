package orchestration

import "time"

type sessionOptions struct {
	engineControl EngineControl
	engineCallID  string

	telephony      Telephony
	providerCallID string

	gracePeriod    time.Duration
	idleTimeout    time.Duration
	closingMessage string
}

type SessionOption func(*CallSession)

// WithEngineControl lets the wind-down hang up the engine side of the
// call over its REST surface.
func WithEngineControl(control EngineControl, callID string) SessionOption {
	return func(s *CallSession) {
		s.options.engineControl = control
		s.options.engineCallID = callID
	}
}

// WithTelephony lets the wind-down hang up the provider leg of the
// call. Without it the provider is left to drop the call on its own.
func WithTelephony(telephony Telephony, providerCallID string) SessionOption {
	return func(s *CallSession) {
		s.options.telephony = telephony
		s.options.providerCallID = providerCallID
	}
}

// WithGracePeriod overrides how long the wind-down waits for the
// closing message to be delivered before hanging up.
func WithGracePeriod(d time.Duration) SessionOption {
	return func(s *CallSession) {
		s.options.gracePeriod = d
	}
}

// WithIdleTimeout ends the call after a stretch with no inbound events.
// Zero disables the timeout.
func WithIdleTimeout(d time.Duration) SessionOption {
	return func(s *CallSession) {
		s.options.idleTimeout = d
	}
}

// WithClosingMessage overrides the spoken goodbye.
func WithClosingMessage(text string) SessionOption {
	return func(s *CallSession) {
		s.options.closingMessage = text
	}
}
