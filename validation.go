package tecdsa

import (
	"fmt"
	"math"
)

// SecurityLevel represents the security level of threshold parameters
type SecurityLevel string

const (
	SecurityLevelLow    SecurityLevel = "low"
	SecurityLevelMedium SecurityLevel = "medium"
	SecurityLevelHigh   SecurityLevel = "high"
)

// DefaultByzantineRatio is the threshold share of participants needed to
// tolerate a Byzantine minority.
const DefaultByzantineRatio = 2.0 / 3.0

// ValidationResult contains the result of parameter validation
type ValidationResult struct {
	Valid                   bool          `json:"valid"`
	SecurityLevel           SecurityLevel `json:"security_level"`
	ByzantineFaultTolerance bool          `json:"byzantine_fault_tolerance"`
	Warnings                []string      `json:"warnings,omitempty"`
	Errors                  []string      `json:"errors,omitempty"`
	Recommendations         []string      `json:"recommendations,omitempty"`
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:           true,
		SecurityLevel:   SecurityLevelMedium,
		Warnings:        []string{},
		Errors:          []string{},
		Recommendations: []string{},
	}
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ThresholdValidator applies deployment policy on top of the hard 1 <= t <= n
// rule enforced by GenerateShares.
type ThresholdValidator struct {
	MinParticipants     int     `json:"min_participants"`
	MinThreshold        int     `json:"min_threshold"`
	MaxThreshold        int     `json:"max_threshold"`
	ByzantineRatio      float64 `json:"byzantine_ratio"`
	RecommendedMinRatio float64 `json:"recommended_min_ratio"`
	RecommendedMaxRatio float64 `json:"recommended_max_ratio"`
}

// NewDefaultThresholdValidator creates a validator with secure default parameters
func NewDefaultThresholdValidator() *ThresholdValidator {
	return &ThresholdValidator{
		MinParticipants:     3,
		MinThreshold:        2,
		MaxThreshold:        1000,
		ByzantineRatio:      DefaultByzantineRatio,
		RecommendedMinRatio: 0.51,
		RecommendedMaxRatio: 0.80,
	}
}

// ValidateThresholdParameters validates threshold and participant parameters
func (tv *ThresholdValidator) ValidateThresholdParameters(participantCount, threshold int) *ValidationResult {
	result := newValidationResult()

	if threshold <= 0 {
		result.fail("threshold must be positive")
	}
	if participantCount <= 0 {
		result.fail("participant count must be positive")
	}
	if threshold > participantCount {
		result.fail("threshold cannot exceed participant count")
	}
	if !result.Valid {
		result.SecurityLevel = SecurityLevelLow
		return result
	}

	if participantCount < tv.MinParticipants {
		result.fail("minimum %d participants required for security", tv.MinParticipants)
	}
	if threshold < tv.MinThreshold {
		result.fail("minimum threshold of %d required", tv.MinThreshold)
	}
	if threshold > tv.MaxThreshold {
		result.fail("threshold exceeds maximum of %d", tv.MaxThreshold)
	}
	if !result.Valid {
		result.SecurityLevel = SecurityLevelLow
		return result
	}

	thresholdRatio := float64(threshold) / float64(participantCount)

	byzantineThreshold := int(float64(participantCount) * tv.ByzantineRatio)
	if threshold >= byzantineThreshold {
		result.ByzantineFaultTolerance = true
		result.SecurityLevel = SecurityLevelHigh
	}

	if thresholdRatio < tv.RecommendedMinRatio {
		result.SecurityLevel = SecurityLevelLow
		result.Warnings = append(result.Warnings, "threshold ratio is below recommended minimum for security")
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("consider increasing threshold to at least %d", int(math.Ceil(float64(participantCount)*tv.RecommendedMinRatio))))
	} else if thresholdRatio > tv.RecommendedMaxRatio {
		result.Warnings = append(result.Warnings, "threshold ratio is high, may affect availability")
	}

	if threshold == participantCount {
		result.Warnings = append(result.Warnings, "threshold equals participant count - no fault tolerance")
		result.Recommendations = append(result.Recommendations, "consider reducing threshold to allow for signer outages")
	}

	return result
}

// ValidateParticipants checks a signing set for duplicate and reserved indices
func ValidateParticipants(participants []ParticipantIndex) *ValidationResult {
	result := newValidationResult()

	if len(participants) == 0 {
		result.fail("participant list cannot be empty")
		return result
	}

	seen := make(map[ParticipantIndex]bool, len(participants))
	duplicates := []ParticipantIndex{}
	for _, participant := range participants {
		if participant == 0 {
			result.fail("participant index 0 is reserved for the secret")
		}
		if seen[participant] {
			duplicates = append(duplicates, participant)
		}
		seen[participant] = true
	}

	if len(duplicates) > 0 {
		result.fail("duplicate participants found: %v", duplicates)
	}

	return result
}

// ValidateSigningSet validates the participants of one signing event against
// the key's threshold.
func ValidateSigningSet(threshold int, participants []ParticipantIndex) error {
	result := ValidateParticipants(participants)
	if !result.Valid {
		return ErrDegenerateInterpolationSet.WithDetails("%v", result.Errors)
	}
	if len(participants) < threshold {
		return ErrInsufficientPartials.
			WithContext("have", len(participants)).
			WithContext("need", threshold)
	}
	return nil
}

// SecurityAssessment provides a detailed security assessment
type SecurityAssessment struct {
	OverallRating           SecurityLevel `json:"overall_rating"`
	ByzantineFaultTolerance bool          `json:"byzantine_fault_tolerance"`
	FaultTolerance          int           `json:"fault_tolerance"`   // signers that may be offline
	AttackResistance        int           `json:"attack_resistance"` // shares needed to forge
	AvailabilityRisk        string        `json:"availability_risk"`
	SecurityRecommendations []string      `json:"security_recommendations"`
}

// AssessSecurity rates an (n, t) sharing
func AssessSecurity(participantCount, threshold int) *SecurityAssessment {
	if participantCount <= 0 || threshold <= 0 || threshold > participantCount {
		return &SecurityAssessment{
			OverallRating:           SecurityLevelLow,
			AvailabilityRisk:        "critical - invalid parameters",
			SecurityRecommendations: []string{"threshold must satisfy 1 <= t <= n"},
		}
	}

	faultTolerance := participantCount - threshold
	assessment := &SecurityAssessment{
		FaultTolerance:          faultTolerance,
		AttackResistance:        threshold,
		SecurityRecommendations: []string{},
	}

	byzantineThreshold := int(float64(participantCount) * DefaultByzantineRatio)
	assessment.ByzantineFaultTolerance = threshold >= byzantineThreshold

	thresholdRatio := float64(threshold) / float64(participantCount)
	switch {
	case threshold == 1 || thresholdRatio < 0.5:
		assessment.OverallRating = SecurityLevelLow
	case thresholdRatio >= 0.67:
		assessment.OverallRating = SecurityLevelHigh
	default:
		assessment.OverallRating = SecurityLevelMedium
	}

	switch {
	case faultTolerance == 0:
		assessment.AvailabilityRisk = "critical - no fault tolerance"
	case faultTolerance == 1:
		assessment.AvailabilityRisk = "high - single point of failure"
	case faultTolerance <= 3:
		assessment.AvailabilityRisk = "medium - limited fault tolerance"
	default:
		assessment.AvailabilityRisk = "low - good fault tolerance"
	}

	if !assessment.ByzantineFaultTolerance {
		assessment.SecurityRecommendations = append(assessment.SecurityRecommendations,
			"Consider increasing threshold for Byzantine fault tolerance")
	}
	if faultTolerance < 2 {
		assessment.SecurityRecommendations = append(assessment.SecurityRecommendations,
			"Consider adding more participants or reducing threshold for better availability")
	}

	return assessment
}
