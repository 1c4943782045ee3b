package negotiation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mazungumzo/core"
)

// Simulation statuses
type Status string

const (
	StatusSetup       Status = "setup"
	StatusActive      Status = "active"
	StatusPaused      Status = "paused"
	StatusCompleted   Status = "completed"
	StatusArbitration Status = "arbitration"
)

// Team roles
type Role string

const (
	RolePlaintiff Role = "plaintiff"
	RoleDefendant Role = "defendant"
)

// Opposing returns the other side of the table.
func (r Role) Opposing() Role {
	if r == RolePlaintiff {
		return RoleDefendant
	}
	return RolePlaintiff
}

// Round statuses
type RoundStatus string

const (
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
)

// Offer types
type OfferType string

const (
	OfferTypeInitialDemand OfferType = "initial_demand"
	OfferTypeCounterOffer  OfferType = "counteroffer"
)

// Actor identifies who issued a command. Authentication and authorization
// happen outside this core; handlers thread the actor in explicitly.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SimulationConfig holds per-simulation settings, validated once at creation.
type SimulationConfig struct {
	RoundDuration         time.Duration `json:"round_duration"`
	ClientFeedbackEnabled bool          `json:"client_feedback_enabled"`
}

// Simulation is one run of a bilateral settlement negotiation between a
// plaintiff team and a defendant team over a bounded number of rounds.
// It is created in `setup` and mutated only through lifecycle commands.
type Simulation struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Status       Status `json:"status"`
	CurrentRound int    `json:"current_round"`
	TotalRounds  int    `json:"total_rounds"`

	PlaintiffTeamID       string `json:"plaintiff_team_id"`
	DefendantTeamID       string `json:"defendant_team_id"`
	PlaintiffContactEmail string `json:"plaintiff_contact_email,omitempty"`
	DefendantContactEmail string `json:"defendant_contact_email,omitempty"`

	PlaintiffMinAcceptable float64 `json:"plaintiff_min_acceptable"`
	PlaintiffIdeal         float64 `json:"plaintiff_ideal"`
	DefendantIdeal         float64 `json:"defendant_ideal"`
	DefendantMaxAcceptable float64 `json:"defendant_max_acceptable"`

	PressureEscalationRate float64          `json:"pressure_escalation_rate"`
	Config                 SimulationConfig `json:"config"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

func (s Simulation) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusArbitration
}

// TeamRole resolves the role a team plays in this simulation.
func (s Simulation) TeamRole(teamID string) (Role, error) {
	switch teamID {
	case s.PlaintiffTeamID:
		return RolePlaintiff, nil
	case s.DefendantTeamID:
		return RoleDefendant, nil
	}
	return "", ErrTeamNotInSimulation
}

// Teams maps each role to its team ID.
func (s Simulation) Teams() map[Role]string {
	return map[Role]string{
		RolePlaintiff: s.PlaintiffTeamID,
		RoleDefendant: s.DefendantTeamID,
	}
}

func (s Simulation) Ranges() Ranges {
	return Ranges{
		PlaintiffMin:   s.PlaintiffMinAcceptable,
		PlaintiffIdeal: s.PlaintiffIdeal,
		DefendantIdeal: s.DefendantIdeal,
		DefendantMax:   s.DefendantMaxAcceptable,
	}
}

// Round is a bounded negotiation cycle within a simulation; at most one is
// active per simulation at any time.
type Round struct {
	ID           string      `json:"id"`
	SimulationID string      `json:"simulation_id"`
	Number       int         `json:"round_number"`
	Deadline     time.Time   `json:"deadline"`
	Status       RoundStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`    // UTC
	CompletedAt  *time.Time  `json:"completed_at"`  // UTC
}

func (r Round) IsActive() bool {
	return r.Status == RoundStatusActive
}

// Offer is a settlement amount plus terms submitted by one team in a round.
// Offers are immutable; a later offer by the same team in the same round
// supersedes earlier ones for analysis.
type Offer struct {
	ID               string    `json:"id"`
	RoundID          string    `json:"round_id"`
	TeamID           string    `json:"team_id"`
	Role             Role      `json:"role"`
	Amount           float64   `json:"amount"`
	Justification    string    `json:"justification"`
	NonMonetaryTerms string    `json:"non_monetary_terms,omitempty"`
	Type             OfferType `json:"offer_type"`
	SubmittedBy      string    `json:"submitted_by"`
	SubmittedAt      time.Time `json:"submitted_at"` // UTC
}

// NewSimulation contains information needed to create a new Simulation.
// Range consistency is re-checked at start time; creation only rejects
// structurally invalid input (see validators.go for the struct-level checks).
type NewSimulation struct {
	Title       string `json:"title" validate:"required"`
	TotalRounds int    `json:"total_rounds" validate:"required,min=1"`

	PlaintiffTeamID       string `json:"plaintiff_team_id" validate:"required"`
	DefendantTeamID       string `json:"defendant_team_id" validate:"required"`
	PlaintiffContactEmail string `json:"plaintiff_contact_email" validate:"omitempty,email"`
	DefendantContactEmail string `json:"defendant_contact_email" validate:"omitempty,email"`

	PlaintiffMinAcceptable float64 `json:"plaintiff_min_acceptable" validate:"gt=0"`
	PlaintiffIdeal         float64 `json:"plaintiff_ideal" validate:"gt=0"`
	DefendantIdeal         float64 `json:"defendant_ideal" validate:"gt=0"`
	DefendantMaxAcceptable float64 `json:"defendant_max_acceptable" validate:"gt=0"`

	PressureEscalationRate float64 `json:"pressure_escalation_rate" validate:"omitempty,gt=0"`

	RoundDuration         time.Duration `json:"round_duration" validate:"omitempty,gt=0"`
	ClientFeedbackEnabled bool          `json:"client_feedback_enabled"`
}

func (ns *NewSimulation) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.PlaintiffTeamID = core.CleanString(ns.PlaintiffTeamID)
	ns.DefendantTeamID = core.CleanString(ns.DefendantTeamID)
	ns.PlaintiffContactEmail = core.CleanString(ns.PlaintiffContactEmail, true /* lower */)
	ns.DefendantContactEmail = core.CleanString(ns.DefendantContactEmail, true /* lower */)
	return validate.Struct(ns)
}

// NewOffer defines what a team provides when submitting an offer; the round
// and offer type come from the endpoint, the actor from the request context.
type NewOffer struct {
	TeamID           string  `json:"team_id" validate:"required"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	Justification    string  `json:"justification" validate:"required"`
	NonMonetaryTerms string  `json:"non_monetary_terms"`
}

func (no *NewOffer) Validate(validate *validator.Validate) error {
	no.TeamID = core.CleanString(no.TeamID)
	no.Justification = core.CleanString(no.Justification)
	no.NonMonetaryTerms = core.CleanString(no.NonMonetaryTerms)
	return validate.Struct(no)
}

// ReactionRequest asks for the simulated client's reaction to an amount a
// team is considering offering; nothing is persisted.
type ReactionRequest struct {
	TeamID           string  `json:"team_id" validate:"required"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	Justification    string  `json:"justification"`
	NonMonetaryTerms string  `json:"non_monetary_terms"`
}

func (rr *ReactionRequest) Validate(validate *validator.Validate) error {
	rr.TeamID = core.CleanString(rr.TeamID)
	rr.Justification = core.CleanString(rr.Justification)
	return validate.Struct(rr)
}

// StatusInfo is the composite state a caller needs to drive the lifecycle UI.
type StatusInfo struct {
	Status           Status   `json:"status"`
	CurrentRound     int      `json:"current_round"`
	TotalRounds      int      `json:"total_rounds"`
	AllowedActions   []string `json:"allowed_actions"`
	ValidationErrors []string `json:"validation_errors"`
}
