package tecdsa

import (
	"crypto/rand"
	"fmt"
	"time"
)

// TraceEventType represents the type of trace event
type TraceEventType string

const (
	// Dealer events
	TraceEventSharesGenerated TraceEventType = "shares_generated"

	// Signing events
	TraceEventNonceAgreed       TraceEventType = "nonce_agreed"
	TraceEventPartialSignature  TraceEventType = "partial_signature"
	TraceEventRecoveryCandidate TraceEventType = "recovery_candidate"
	TraceEventSignatureCombined TraceEventType = "signature_combined"
	TraceEventAttemptFailed     TraceEventType = "attempt_failed"
)

// TraceEvent is a structured record of one step of sharing or signing. It
// never carries secret material: no shares, no nonce.
type TraceEvent struct {
	// Event metadata
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
	EventType TraceEventType `json:"event_type"`

	// Signing event context
	SessionID string `json:"session_id,omitempty"`
	Attempt   int    `json:"attempt,omitempty"`
	CurveName string `json:"curve_name,omitempty"`

	// Participant information
	Participant  ParticipantIndex   `json:"participant,omitempty"`
	Participants []ParticipantIndex `json:"participants,omitempty"`

	// Success/failure information
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RecoveryCandidateEvent reports one public-key recovery attempt of the
// recovery-id search.
type RecoveryCandidateEvent struct {
	TraceEvent

	RecoveryID byte   `json:"recovery_id"`
	Matched    bool   `json:"matched"`
	Recovered  string `json:"recovered,omitempty"` // compressed hex, empty when recovery failed
}

// CombineEvent reports a successfully combined signature.
type CombineEvent struct {
	TraceEvent

	R             string        `json:"r"`
	S             string        `json:"s"`
	V             byte          `json:"v"`
	Canonicalized bool          `json:"canonicalized"` // s was replaced by n - s
	Duration      time.Duration `json:"duration"`
}

// TraceHandler receives trace events. Partial signers run concurrently, so
// implementations must be safe for concurrent use.
type TraceHandler interface {
	// OnSharesGenerated is called after a dealer split a key
	OnSharesGenerated(event *TraceEvent)

	// OnNonceAgreed is called once per attempt with r, before any partial is computed
	OnNonceAgreed(event *TraceEvent)

	// OnPartialSignature is called for every computed partial
	OnPartialSignature(event *TraceEvent)

	// OnRecoveryCandidate is called for each recovery id tried
	OnRecoveryCandidate(event *RecoveryCandidateEvent)

	// OnSignatureCombined is called when a combined signature is accepted
	OnSignatureCombined(event *CombineEvent)

	// OnAttemptFailed is called when an attempt fails, retried or not
	OnAttemptFailed(event *TraceEvent)
}

// NullTraceHandler is a no-op implementation of TraceHandler
type NullTraceHandler struct{}

func (n *NullTraceHandler) OnSharesGenerated(event *TraceEvent)               {}
func (n *NullTraceHandler) OnNonceAgreed(event *TraceEvent)                   {}
func (n *NullTraceHandler) OnPartialSignature(event *TraceEvent)              {}
func (n *NullTraceHandler) OnRecoveryCandidate(event *RecoveryCandidateEvent) {}
func (n *NullTraceHandler) OnSignatureCombined(event *CombineEvent)           {}
func (n *NullTraceHandler) OnAttemptFailed(event *TraceEvent)                 {}

func traceOrNull(h TraceHandler) TraceHandler {
	if h == nil {
		return &NullTraceHandler{}
	}
	return h
}

// TraceEventBuilder helps construct trace events with proper defaults
type TraceEventBuilder struct {
	event *TraceEvent
}

// NewTraceEventBuilder creates a new trace event builder
func NewTraceEventBuilder(eventType TraceEventType) *TraceEventBuilder {
	return &TraceEventBuilder{
		event: &TraceEvent{
			EventID:   generateEventID(),
			Timestamp: time.Now(),
			EventType: eventType,
			Success:   true,
			Metadata:  make(map[string]interface{}),
		},
	}
}

// WithSession sets the signing session and attempt number
func (b *TraceEventBuilder) WithSession(sessionID string, attempt int) *TraceEventBuilder {
	b.event.SessionID = sessionID
	b.event.Attempt = attempt
	return b
}

// WithCurve sets the curve name for the event
func (b *TraceEventBuilder) WithCurve(curveName string) *TraceEventBuilder {
	b.event.CurveName = curveName
	return b
}

// WithParticipant sets the single participant the event is about
func (b *TraceEventBuilder) WithParticipant(index ParticipantIndex) *TraceEventBuilder {
	b.event.Participant = index
	return b
}

// WithParticipants sets the participant set of the event
func (b *TraceEventBuilder) WithParticipants(indices []ParticipantIndex) *TraceEventBuilder {
	b.event.Participants = indices
	return b
}

// WithError marks the event as failed and sets error information
func (b *TraceEventBuilder) WithError(err error) *TraceEventBuilder {
	b.event.Success = false
	if err != nil {
		b.event.Error = err.Error()
	}
	return b
}

// WithMetadata adds metadata to the event
func (b *TraceEventBuilder) WithMetadata(key string, value interface{}) *TraceEventBuilder {
	b.event.Metadata[key] = value
	return b
}

// Build returns the constructed trace event
func (b *TraceEventBuilder) Build() *TraceEvent {
	return b.event
}

// BuildRecoveryCandidate returns a RecoveryCandidateEvent
func (b *TraceEventBuilder) BuildRecoveryCandidate(recoveryID byte, matched bool, recovered Point) *RecoveryCandidateEvent {
	event := &RecoveryCandidateEvent{
		TraceEvent: *b.event,
		RecoveryID: recoveryID,
		Matched:    matched,
	}
	if recovered != nil {
		event.Recovered = fmt.Sprintf("%x", recovered.CompressedBytes())
	}
	return event
}

// BuildCombine returns a CombineEvent
func (b *TraceEventBuilder) BuildCombine(sig *CombinedSignature, canonicalized bool, duration time.Duration) *CombineEvent {
	return &CombineEvent{
		TraceEvent:    *b.event,
		R:             sig.RHex(),
		S:             sig.SHex(),
		V:             sig.V,
		Canonicalized: canonicalized,
		Duration:      duration,
	}
}

// generateEventID generates a unique event ID from a timestamp and 4 random bytes
func generateEventID() string {
	timestamp := time.Now().Format("20060102150405.000000")

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("%s.%d", timestamp, time.Now().UnixNano()%10000)
	}

	return fmt.Sprintf("%s.%x", timestamp, randomBytes)
}
