package tecdsa

import (
	"go.uber.org/zap"
)

// ZapTraceHandler writes trace events as structured zap log lines. Steps of
// a healthy run log at debug level; failures log at warn.
type ZapTraceHandler struct {
	logger *zap.Logger
}

// NewZapTraceHandler creates a handler logging to logger, or to a no-op
// logger when logger is nil.
func NewZapTraceHandler(logger *zap.Logger) *ZapTraceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTraceHandler{logger: logger.With(zap.String("component", "tecdsa"))}
}

func baseFields(event *TraceEvent) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.EventID),
		zap.String("event", string(event.EventType)),
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session", event.SessionID), zap.Int("attempt", event.Attempt))
	}
	if event.CurveName != "" {
		fields = append(fields, zap.String("curve", event.CurveName))
	}
	if event.Participant != 0 {
		fields = append(fields, zap.Uint32("participant", uint32(event.Participant)))
	}
	if len(event.Participants) > 0 {
		ids := make([]uint32, len(event.Participants))
		for i, p := range event.Participants {
			ids[i] = uint32(p)
		}
		fields = append(fields, zap.Uint32s("participants", ids))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

func (h *ZapTraceHandler) OnSharesGenerated(event *TraceEvent) {
	h.logger.Info("shares generated", baseFields(event)...)
}

func (h *ZapTraceHandler) OnNonceAgreed(event *TraceEvent) {
	h.logger.Debug("nonce agreed", baseFields(event)...)
}

func (h *ZapTraceHandler) OnPartialSignature(event *TraceEvent) {
	h.logger.Debug("partial signature", baseFields(event)...)
}

func (h *ZapTraceHandler) OnRecoveryCandidate(event *RecoveryCandidateEvent) {
	fields := append(baseFields(&event.TraceEvent),
		zap.Uint8("recovery_id", event.RecoveryID),
		zap.Bool("matched", event.Matched),
	)
	if event.Recovered != "" {
		fields = append(fields, zap.String("recovered", event.Recovered))
	}
	h.logger.Debug("recovery candidate", fields...)
}

func (h *ZapTraceHandler) OnSignatureCombined(event *CombineEvent) {
	fields := append(baseFields(&event.TraceEvent),
		zap.String("r", event.R),
		zap.String("s", event.S),
		zap.Uint8("v", event.V),
		zap.Bool("canonicalized", event.Canonicalized),
		zap.Duration("duration", event.Duration),
	)
	h.logger.Info("signature combined", fields...)
}

func (h *ZapTraceHandler) OnAttemptFailed(event *TraceEvent) {
	h.logger.Warn("signing attempt failed", baseFields(event)...)
}
