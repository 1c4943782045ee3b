package core

import (
	"context"
	"time"
)

type (
	// OfferSnapshot is the minimal value object shuttled across the
	// client-feedback boundary; it carries everything the external AI
	// collaborator needs to react to a proposed settlement amount.
	OfferSnapshot struct {
		SimulationID     string  `json:"simulation_id"`
		TeamID           string  `json:"team_id"`
		Role             string  `json:"role"`
		Amount           float64 `json:"amount"`
		Justification    string  `json:"justification"`
		NonMonetaryTerms string  `json:"non_monetary_terms,omitempty"`
		RoundNumber      int     `json:"round_number"`
		TotalRounds      int     `json:"total_rounds"`
	}

	// ClientFeedback is the external collaborator's reaction to an offer.
	ClientFeedback struct {
		MoodLevel         string        `json:"mood_level"` // very_satisfied|satisfied|neutral|unhappy|very_unhappy
		FeedbackText      string        `json:"feedback_text"`
		SatisfactionScore int           `json:"satisfaction_score"`
		StrategicGuidance string        `json:"strategic_guidance"`
		Cost              float64       `json:"cost"`
		ResponseTime      time.Duration `json:"response_time"`
	}

	// ClientFeedbackService is any service that can generate AI client feedback.
	// Callers must treat failures as recoverable and fall back to rule-based
	// reactions; errors from GenerateFeedback never reach end users.
	ClientFeedbackService interface {
		Enabled() bool
		GenerateFeedback(ctx context.Context, snap OfferSnapshot) (ClientFeedback, error)
	}
)
