package tecdsa

import (
	"strings"
)

// DefaultMaxNonceAttempts bounds how often one signing event re-agrees on a
// nonce before giving up.
const DefaultMaxNonceAttempts = 8

// Config holds the parameters of a threshold key and its signing sessions
type Config struct {
	Curve            CurveType `json:"curve"`
	Threshold        int       `json:"threshold"`
	Participants     int       `json:"participants"`
	MaxNonceAttempts int       `json:"max_nonce_attempts"`

	// StrictValidation applies ThresholdValidator policy in addition to
	// 1 <= t <= n.
	StrictValidation bool `json:"strict_validation"`
}

// DefaultConfig returns a 2-of-3 secp256k1 configuration
func DefaultConfig() *Config {
	return &Config{
		Curve:            Secp256k1,
		Threshold:        2,
		Participants:     3,
		MaxNonceAttempts: DefaultMaxNonceAttempts,
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if _, err := NewCurve(c.Curve); err != nil {
		return err
	}
	if c.Threshold < 1 || c.Threshold > c.Participants {
		return ErrInvalidThreshold.
			WithContext("threshold", c.Threshold).
			WithContext("participants", c.Participants)
	}
	if c.MaxNonceAttempts < 1 {
		return ErrConfigurationMismatch.
			WithContext("max_nonce_attempts", c.MaxNonceAttempts).
			WithDetails("at least one nonce attempt is required")
	}

	if c.StrictValidation {
		result := NewDefaultThresholdValidator().ValidateThresholdParameters(c.Participants, c.Threshold)
		if !result.Valid {
			return ErrConfigurationMismatch.WithDetails("%s", strings.Join(result.Errors, "; "))
		}
	}
	return nil
}
