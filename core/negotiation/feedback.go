package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/mazungumzo/core"
)

// client reaction sources
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// external mood levels -> three-valued classification
var moodClassifications = map[string]Classification{
	"very_satisfied": Pleased,
	"satisfied":      Pleased,
	"neutral":        Neutral,
	"unhappy":        Concerned,
	"very_unhappy":   Concerned,
}

// ClientReaction is what a team sees when they test an amount against their
// simulated client.
type ClientReaction struct {
	Reaction          Classification `json:"reaction"`
	Message           string         `json:"message"`
	Source            string         `json:"source"`
	SatisfactionScore *int           `json:"satisfaction_score,omitempty"`
}

// ClientReaction consults the external AI collaborator when enabled and falls
// back to the rule-based reaction on disablement or any failure. External
// failures are logged and absorbed, never surfaced to the caller.
func (svc *service) ClientReaction(ctx context.Context, actor Actor, simulationID string, rr ReactionRequest) (ClientReaction, error) {
	sim, err := svc.repo.GetSimulationByID(ctx, simulationID)
	if err != nil {
		return ClientReaction{}, err
	}
	role, err := sim.TeamRole(rr.TeamID)
	if err != nil {
		return ClientReaction{}, core.NewValidationError(err,
			core.FieldError{Field: "team_id", Error: err.Error()})
	}

	reaction, ok := svc.aiReaction(ctx, sim, role, rr)
	if !ok {
		fb := FallbackReaction(role, rr.Amount, sim.Ranges())
		reaction = ClientReaction{
			Reaction: fb.Reaction,
			Message:  fb.Message,
			Source:   SourceFallback,
		}
	}

	svc.recordActivity(eventClientReactionServed, actor, map[string]interface{}{
		"simulation_id": sim.ID,
		"team_id":       rr.TeamID,
		"source":        reaction.Source,
	})
	return reaction, nil
}

// aiReaction attempts the external collaborator within a bounded timeout;
// ok=false means the caller should fall back.
func (svc *service) aiReaction(ctx context.Context, sim Simulation, role Role, rr ReactionRequest) (ClientReaction, bool) {
	if svc.clientSvc == nil || !svc.clientSvc.Enabled() || !sim.Config.ClientFeedbackEnabled {
		return ClientReaction{}, false
	}

	timeout := svc.conf.ClientFeedback.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fb, err := svc.clientSvc.GenerateFeedback(ctx, core.OfferSnapshot{
		SimulationID:     sim.ID,
		TeamID:           rr.TeamID,
		Role:             string(role),
		Amount:           rr.Amount,
		Justification:    rr.Justification,
		NonMonetaryTerms: rr.NonMonetaryTerms,
		RoundNumber:      sim.CurrentRound,
		TotalRounds:      sim.TotalRounds,
	})
	if err != nil {
		svc.logWarn(fmt.Sprintf("client feedback service failed; using rule-based reaction: %v", err), err)
		return ClientReaction{}, false
	}

	cls, known := moodClassifications[fb.MoodLevel]
	if !known {
		svc.logWarn(fmt.Sprintf("client feedback service returned unknown mood level %q; using rule-based reaction", fb.MoodLevel))
		return ClientReaction{}, false
	}

	score := fb.SatisfactionScore
	return ClientReaction{
		Reaction:          cls,
		Message:           fb.FeedbackText,
		Source:            SourceAI,
		SatisfactionScore: &score,
	}, true
}

func (svc *service) logWarn(msg string, args ...interface{}) {
	if svc.logger == nil {
		return
	}
	svc.logger.Warn(msg, args...)
}
