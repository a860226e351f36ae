package orchestration

import (
	"context"
	"time"
)

// terminate ends the call through every channel that might keep it
// alive. Each step is best-effort and independent of the previous
// step's outcome; the whole sequence runs at most once per session.
func (s *CallSession) terminate(ctx context.Context) {
	s.terminateOnce.Do(func() {
		ctx, span := tracer.Start(ctx, "terminate call")
		defer span.End()

		if err := s.conn.SendAssistantMessage(s.options.closingMessage); err != nil {
			logger.WarnContext(ctx, "failed to send closing message", "error", err)
		}
		if err := s.conn.CreateResponse(); err != nil {
			logger.WarnContext(ctx, "failed to request closing turn", "error", err)
		}

		if err := s.conn.DisableTurnDetection(); err != nil {
			logger.WarnContext(ctx, "failed to disable turn detection", "error", err)
		}
		if err := s.conn.CancelResponse(); err != nil {
			logger.WarnContext(ctx, "failed to cancel in-flight response", "error", err)
		}

		// Give the engine a moment to speak the closing message.
		select {
		case <-time.After(s.options.gracePeriod):
		case <-ctx.Done():
		}

		if s.options.engineControl != nil && s.options.engineCallID != "" {
			if err := s.options.engineControl.Hangup(ctx, s.options.engineCallID); err != nil {
				logger.WarnContext(ctx, "engine hangup failed", "error", err)
			}
		}
		if s.options.telephony != nil && s.options.providerCallID != "" {
			if err := s.options.telephony.Hangup(ctx, s.options.providerCallID); err != nil {
				logger.WarnContext(ctx, "provider hangup failed", "call_sid", s.options.providerCallID, "error", err)
			}
		}

		if err := s.conn.Close(); err != nil {
			logger.WarnContext(ctx, "failed to close engine connection", "error", err)
		}

		logger.InfoContext(ctx, "call terminated")
	})
}
