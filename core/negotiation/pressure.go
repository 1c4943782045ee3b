package negotiation

// Timeline pressure bands
const (
	PressureCritical = "Critical"
	PressureHigh     = "High"
	PressureMedium   = "Medium"
	PressureLow      = "Low"
)

// Satisfaction labels used when composing a mood indicator.
const (
	SatisfactionVeryHigh = "Very High"
	SatisfactionHigh     = "High"
	SatisfactionModerate = "Moderate"
	SatisfactionLow      = "Low"
	SatisfactionVeryLow  = "Very Low"
)

var (
	pressureLevels = map[string]int{
		PressureCritical: 5,
		PressureHigh:     4,
		PressureMedium:   3,
		PressureLow:      2,
	}

	// qualitative satisfaction -> numeric confidence (2-9)
	satisfactionConfidence = map[string]int{
		SatisfactionVeryHigh: 9,
		SatisfactionHigh:     7,
		SatisfactionModerate: 5,
		SatisfactionLow:      3,
		SatisfactionVeryLow:  2,
	}

	// qualitative satisfaction -> numeric score (2-10)
	satisfactionScore = map[string]int{
		SatisfactionVeryHigh: 10,
		SatisfactionHigh:     8,
		SatisfactionModerate: 6,
		SatisfactionLow:      4,
		SatisfactionVeryLow:  2,
	}
)

// TimelinePressure derives the urgency band from how many rounds remain.
func TimelinePressure(sim Simulation) string {
	remaining := sim.TotalRounds - sim.CurrentRound
	switch {
	case remaining <= 1:
		return PressureCritical
	case remaining <= 2:
		return PressureHigh
	case remaining <= 3:
		return PressureMedium
	default:
		return PressureLow
	}
}

// PressureLevel maps a pressure band to its numeric level.
func PressureLevel(pressure string) int {
	if lvl, ok := pressureLevels[pressure]; ok {
		return lvl
	}
	return 1
}

// SatisfactionConfidence maps a qualitative satisfaction label to a numeric
// confidence; unknown labels land on the moderate band.
func SatisfactionConfidence(label string) int {
	if c, ok := satisfactionConfidence[label]; ok {
		return c
	}
	return satisfactionConfidence[SatisfactionModerate]
}

// SatisfactionScore maps a qualitative satisfaction label to a numeric score;
// unknown labels land on the moderate band.
func SatisfactionScore(label string) int {
	if s, ok := satisfactionScore[label]; ok {
		return s
	}
	return satisfactionScore[SatisfactionModerate]
}

// Reaction is the simulated client's response to a proposed amount.
type Reaction struct {
	Reaction Classification `json:"reaction"`
	Message  string         `json:"message"`
}

var fallbackMessages = map[Role]map[Classification]string{
	RolePlaintiff: {
		Pleased:   "The client is pleased. This amount meets their expectations for fair compensation.",
		Neutral:   "The client finds this amount acceptable, though they hoped for more.",
		Concerned: "The client is concerned. This amount falls below what they consider a fair minimum.",
	},
	RoleDefendant: {
		Pleased:   "The client is pleased. Settling at this amount keeps exposure well under control.",
		Neutral:   "The client can live with this amount, though it is more than they hoped to pay.",
		Concerned: "The client is concerned. This amount exceeds what they are prepared to pay.",
	},
}

// FallbackReaction produces the rule-based client reaction for a proposed
// amount; used whenever the external AI collaborator is disabled or fails.
func FallbackReaction(role Role, amount float64, r Ranges) Reaction {
	cls := ClassifyAmount(role, amount, r)
	return Reaction{
		Reaction: cls,
		Message:  fallbackMessages[role][cls],
	}
}

// PressureReport composes timeline pressure with a mood indicator for the
// status dashboards.
type PressureReport struct {
	TimelinePressure  string `json:"timeline_pressure"`
	PressureLevel     int    `json:"pressure_level"`
	Mood              string `json:"mood"`
	Confidence        int    `json:"confidence"`
	Satisfaction      string `json:"satisfaction"`
	SatisfactionScore int    `json:"satisfaction_score"`
}

// satisfactionFromProbability buckets a settlement probability into a
// qualitative satisfaction label.
func satisfactionFromProbability(probability int) string {
	switch {
	case probability >= 80:
		return SatisfactionVeryHigh
	case probability >= 60:
		return SatisfactionHigh
	case probability >= 40:
		return SatisfactionModerate
	case probability >= 20:
		return SatisfactionLow
	default:
		return SatisfactionVeryLow
	}
}

// moodFromSatisfaction collapses a satisfaction label into the three-valued
// mood shared with client reactions.
func moodFromSatisfaction(label string) Classification {
	switch label {
	case SatisfactionVeryHigh, SatisfactionHigh:
		return Pleased
	case SatisfactionModerate:
		return Neutral
	default:
		return Concerned
	}
}
