package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mazungumzo/core"
	"github.com/trezcool/mazungumzo/core/negotiation"
)

type negotiationRepository struct {
	db *DB
}

var _ negotiation.Repository = (*negotiationRepository)(nil)

func NewNegotiationRepository(db *DB) negotiation.Repository {
	return &negotiationRepository{db: db}
}

// trapNoRowsErr converts sql.ErrNoRows to the domain sentinel.
func trapNoRowsErr(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

// simulationRow mirrors the simulation table.
type simulationRow struct {
	ID                     string       `db:"id"`
	Title                  string       `db:"title"`
	Status                 string       `db:"status"`
	CurrentRound           int          `db:"current_round"`
	TotalRounds            int          `db:"total_rounds"`
	PlaintiffTeamID        string       `db:"plaintiff_team_id"`
	DefendantTeamID        string       `db:"defendant_team_id"`
	PlaintiffContactEmail  string       `db:"plaintiff_contact_email"`
	DefendantContactEmail  string       `db:"defendant_contact_email"`
	PlaintiffMinAcceptable float64      `db:"plaintiff_min_acceptable"`
	PlaintiffIdeal         float64      `db:"plaintiff_ideal"`
	DefendantIdeal         float64      `db:"defendant_ideal"`
	DefendantMaxAcceptable float64      `db:"defendant_max_acceptable"`
	PressureEscalationRate float64      `db:"pressure_escalation_rate"`
	RoundDurationSecs      int64        `db:"round_duration_secs"`
	ClientFeedbackEnabled  bool         `db:"client_feedback_enabled"`
	StartDate              sql.NullTime `db:"start_date"`
	EndDate                sql.NullTime `db:"end_date"`
	CreatedAt              time.Time    `db:"created_at"`
	UpdatedAt              time.Time    `db:"updated_at"`
}

func newSimulationRow(sim negotiation.Simulation) simulationRow {
	return simulationRow{
		ID:                     sim.ID,
		Title:                  sim.Title,
		Status:                 string(sim.Status),
		CurrentRound:           sim.CurrentRound,
		TotalRounds:            sim.TotalRounds,
		PlaintiffTeamID:        sim.PlaintiffTeamID,
		DefendantTeamID:        sim.DefendantTeamID,
		PlaintiffContactEmail:  sim.PlaintiffContactEmail,
		DefendantContactEmail:  sim.DefendantContactEmail,
		PlaintiffMinAcceptable: sim.PlaintiffMinAcceptable,
		PlaintiffIdeal:         sim.PlaintiffIdeal,
		DefendantIdeal:         sim.DefendantIdeal,
		DefendantMaxAcceptable: sim.DefendantMaxAcceptable,
		PressureEscalationRate: sim.PressureEscalationRate,
		RoundDurationSecs:      int64(sim.Config.RoundDuration / time.Second),
		ClientFeedbackEnabled:  sim.Config.ClientFeedbackEnabled,
		StartDate:              nullTime(sim.StartDate),
		EndDate:                nullTime(sim.EndDate),
		CreatedAt:              sim.CreatedAt,
		UpdatedAt:              sim.UpdatedAt,
	}
}

func (row simulationRow) simulation() negotiation.Simulation {
	return negotiation.Simulation{
		ID:                     row.ID,
		Title:                  row.Title,
		Status:                 negotiation.Status(row.Status),
		CurrentRound:           row.CurrentRound,
		TotalRounds:            row.TotalRounds,
		PlaintiffTeamID:        row.PlaintiffTeamID,
		DefendantTeamID:        row.DefendantTeamID,
		PlaintiffContactEmail:  row.PlaintiffContactEmail,
		DefendantContactEmail:  row.DefendantContactEmail,
		PlaintiffMinAcceptable: row.PlaintiffMinAcceptable,
		PlaintiffIdeal:         row.PlaintiffIdeal,
		DefendantIdeal:         row.DefendantIdeal,
		DefendantMaxAcceptable: row.DefendantMaxAcceptable,
		PressureEscalationRate: row.PressureEscalationRate,
		Config: negotiation.SimulationConfig{
			RoundDuration:         time.Duration(row.RoundDurationSecs) * time.Second,
			ClientFeedbackEnabled: row.ClientFeedbackEnabled,
		},
		StartDate: timePtr(row.StartDate),
		EndDate:   timePtr(row.EndDate),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

const simulationColumns = `id, title, status, current_round, total_rounds,
plaintiff_team_id, defendant_team_id, plaintiff_contact_email, defendant_contact_email,
plaintiff_min_acceptable, plaintiff_ideal, defendant_ideal, defendant_max_acceptable,
pressure_escalation_rate, round_duration_secs, client_feedback_enabled,
start_date, end_date, created_at, updated_at`

func (repo *negotiationRepository) CreateSimulation(ctx context.Context, sim negotiation.Simulation, exec ...core.DBExecutor) (negotiation.Simulation, error) {
	sim.ID = uuid.New().String()
	row := newSimulationRow(sim)
	q := `
INSERT INTO simulation (` + simulationColumns + `)
VALUES (:id, :title, :status, :current_round, :total_rounds,
        :plaintiff_team_id, :defendant_team_id, :plaintiff_contact_email, :defendant_contact_email,
        :plaintiff_min_acceptable, :plaintiff_ideal, :defendant_ideal, :defendant_max_acceptable,
        :pressure_escalation_rate, :round_duration_secs, :client_feedback_enabled,
        :start_date, :end_date, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.getExec(exec...), q, row); err != nil {
		return negotiation.Simulation{}, errors.Wrap(err, "inserting simulation")
	}
	return sim, nil
}

func (repo *negotiationRepository) getSimulation(ctx context.Context, id, suffix string, exec ...core.DBExecutor) (negotiation.Simulation, error) {
	var row simulationRow
	q := `SELECT ` + simulationColumns + ` FROM simulation WHERE id = $1` + suffix
	if err := sqlx.GetContext(ctx, repo.db.getExec(exec...), &row, q, id); err != nil {
		return negotiation.Simulation{}, trapNoRowsErr(err, negotiation.ErrSimulationNotFound)
	}
	return row.simulation(), nil
}

func (repo *negotiationRepository) GetSimulationByID(ctx context.Context, id string, exec ...core.DBExecutor) (negotiation.Simulation, error) {
	return repo.getSimulation(ctx, id, "", exec...)
}

func (repo *negotiationRepository) GetSimulationForUpdate(ctx context.Context, id string, exec ...core.DBExecutor) (negotiation.Simulation, error) {
	return repo.getSimulation(ctx, id, " FOR UPDATE", exec...)
}

func (repo *negotiationRepository) UpdateSimulation(ctx context.Context, sim negotiation.Simulation, exec ...core.DBExecutor) (negotiation.Simulation, error) {
	row := newSimulationRow(sim)
	q := `
UPDATE simulation
SET title                    = :title,
    status                   = :status,
    current_round            = :current_round,
    total_rounds             = :total_rounds,
    plaintiff_team_id        = :plaintiff_team_id,
    defendant_team_id        = :defendant_team_id,
    plaintiff_contact_email  = :plaintiff_contact_email,
    defendant_contact_email  = :defendant_contact_email,
    plaintiff_min_acceptable = :plaintiff_min_acceptable,
    plaintiff_ideal          = :plaintiff_ideal,
    defendant_ideal          = :defendant_ideal,
    defendant_max_acceptable = :defendant_max_acceptable,
    pressure_escalation_rate = :pressure_escalation_rate,
    round_duration_secs      = :round_duration_secs,
    client_feedback_enabled  = :client_feedback_enabled,
    start_date               = :start_date,
    end_date                 = :end_date,
    updated_at               = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db.getExec(exec...), q, row)
	if err != nil {
		return negotiation.Simulation{}, errors.Wrap(err, "updating simulation")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return negotiation.Simulation{}, negotiation.ErrSimulationNotFound
	}
	return sim, nil
}

// roundRow mirrors the negotiation_round table.
type roundRow struct {
	ID           string       `db:"id"`
	SimulationID string       `db:"simulation_id"`
	Number       int          `db:"round_number"`
	Deadline     time.Time    `db:"deadline"`
	Status       string       `db:"status"`
	CreatedAt    time.Time    `db:"created_at"`
	CompletedAt  sql.NullTime `db:"completed_at"`
}

func newRoundRow(rnd negotiation.Round) roundRow {
	return roundRow{
		ID:           rnd.ID,
		SimulationID: rnd.SimulationID,
		Number:       rnd.Number,
		Deadline:     rnd.Deadline,
		Status:       string(rnd.Status),
		CreatedAt:    rnd.CreatedAt,
		CompletedAt:  nullTime(rnd.CompletedAt),
	}
}

func (row roundRow) round() negotiation.Round {
	return negotiation.Round{
		ID:           row.ID,
		SimulationID: row.SimulationID,
		Number:       row.Number,
		Deadline:     row.Deadline,
		Status:       negotiation.RoundStatus(row.Status),
		CreatedAt:    row.CreatedAt,
		CompletedAt:  timePtr(row.CompletedAt),
	}
}

const roundColumns = `id, simulation_id, round_number, deadline, status, created_at, completed_at`

func (repo *negotiationRepository) CreateRound(ctx context.Context, rnd negotiation.Round, exec ...core.DBExecutor) (negotiation.Round, error) {
	rnd.ID = uuid.New().String()
	q := `
INSERT INTO negotiation_round (` + roundColumns + `)
VALUES (:id, :simulation_id, :round_number, :deadline, :status, :created_at, :completed_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.getExec(exec...), q, newRoundRow(rnd)); err != nil {
		return negotiation.Round{}, errors.Wrap(err, "inserting round")
	}
	return rnd, nil
}

func (repo *negotiationRepository) GetRoundByID(ctx context.Context, id string, exec ...core.DBExecutor) (negotiation.Round, error) {
	var row roundRow
	q := `SELECT ` + roundColumns + ` FROM negotiation_round WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.db.getExec(exec...), &row, q, id); err != nil {
		return negotiation.Round{}, trapNoRowsErr(err, negotiation.ErrRoundNotFound)
	}
	return row.round(), nil
}

func (repo *negotiationRepository) GetActiveRound(ctx context.Context, simulationID string, exec ...core.DBExecutor) (negotiation.Round, error) {
	var row roundRow
	q := `SELECT ` + roundColumns + ` FROM negotiation_round WHERE simulation_id = $1 AND status = 'active'`
	if err := sqlx.GetContext(ctx, repo.db.getExec(exec...), &row, q, simulationID); err != nil {
		return negotiation.Round{}, trapNoRowsErr(err, negotiation.ErrRoundNotFound)
	}
	return row.round(), nil
}

func (repo *negotiationRepository) QueryRoundsBySimulation(ctx context.Context, simulationID string, exec ...core.DBExecutor) ([]negotiation.Round, error) {
	var rows []roundRow
	q := `SELECT ` + roundColumns + ` FROM negotiation_round WHERE simulation_id = $1 ORDER BY round_number`
	if err := sqlx.SelectContext(ctx, repo.db.getExec(exec...), &rows, q, simulationID); err != nil {
		return nil, errors.Wrap(err, "querying rounds")
	}
	rounds := make([]negotiation.Round, 0, len(rows))
	for _, row := range rows {
		rounds = append(rounds, row.round())
	}
	return rounds, nil
}

func (repo *negotiationRepository) UpdateRound(ctx context.Context, rnd negotiation.Round, exec ...core.DBExecutor) (negotiation.Round, error) {
	q := `
UPDATE negotiation_round
SET deadline     = :deadline,
    status       = :status,
    completed_at = :completed_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db.getExec(exec...), q, newRoundRow(rnd))
	if err != nil {
		return negotiation.Round{}, errors.Wrap(err, "updating round")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return negotiation.Round{}, negotiation.ErrRoundNotFound
	}
	return rnd, nil
}

// offerRow mirrors the settlement_offer table.
type offerRow struct {
	ID               string    `db:"id"`
	RoundID          string    `db:"round_id"`
	TeamID           string    `db:"team_id"`
	Role             string    `db:"role"`
	Amount           float64   `db:"amount"`
	Justification    string    `db:"justification"`
	NonMonetaryTerms string    `db:"non_monetary_terms"`
	Type             string    `db:"offer_type"`
	SubmittedBy      string    `db:"submitted_by"`
	SubmittedAt      time.Time `db:"submitted_at"`
}

func (row offerRow) offer() negotiation.Offer {
	return negotiation.Offer{
		ID:               row.ID,
		RoundID:          row.RoundID,
		TeamID:           row.TeamID,
		Role:             negotiation.Role(row.Role),
		Amount:           row.Amount,
		Justification:    row.Justification,
		NonMonetaryTerms: row.NonMonetaryTerms,
		Type:             negotiation.OfferType(row.Type),
		SubmittedBy:      row.SubmittedBy,
		SubmittedAt:      row.SubmittedAt,
	}
}

const offerColumns = `id, round_id, team_id, role, amount, justification, non_monetary_terms, offer_type, submitted_by, submitted_at`

func (repo *negotiationRepository) CreateOffer(ctx context.Context, off negotiation.Offer, exec ...core.DBExecutor) (negotiation.Offer, error) {
	off.ID = uuid.New().String()
	row := offerRow{
		ID:               off.ID,
		RoundID:          off.RoundID,
		TeamID:           off.TeamID,
		Role:             string(off.Role),
		Amount:           off.Amount,
		Justification:    off.Justification,
		NonMonetaryTerms: off.NonMonetaryTerms,
		Type:             string(off.Type),
		SubmittedBy:      off.SubmittedBy,
		SubmittedAt:      off.SubmittedAt,
	}
	q := `
INSERT INTO settlement_offer (` + offerColumns + `)
VALUES (:id, :round_id, :team_id, :role, :amount, :justification, :non_monetary_terms, :offer_type, :submitted_by, :submitted_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.getExec(exec...), q, row); err != nil {
		return negotiation.Offer{}, errors.Wrap(err, "inserting offer")
	}
	return off, nil
}

func (repo *negotiationRepository) QueryOffersByRound(ctx context.Context, roundID string, exec ...core.DBExecutor) ([]negotiation.Offer, error) {
	var rows []offerRow
	q := `SELECT ` + offerColumns + ` FROM settlement_offer WHERE round_id = $1 ORDER BY submitted_at, id`
	if err := sqlx.SelectContext(ctx, repo.db.getExec(exec...), &rows, q, roundID); err != nil {
		return nil, errors.Wrap(err, "querying offers")
	}
	return offerRowsToOffers(rows), nil
}

func (repo *negotiationRepository) QueryOffersBySimulation(ctx context.Context, simulationID string, exec ...core.DBExecutor) ([]negotiation.Offer, error) {
	var rows []offerRow
	q := `
SELECT o.id, o.round_id, o.team_id, o.role, o.amount, o.justification, o.non_monetary_terms, o.offer_type, o.submitted_by, o.submitted_at
FROM settlement_offer o
         JOIN negotiation_round r ON r.id = o.round_id
WHERE r.simulation_id = $1
ORDER BY o.submitted_at, o.id`
	if err := sqlx.SelectContext(ctx, repo.db.getExec(exec...), &rows, q, simulationID); err != nil {
		return nil, errors.Wrap(err, "querying offers")
	}
	return offerRowsToOffers(rows), nil
}

func offerRowsToOffers(rows []offerRow) []negotiation.Offer {
	offers := make([]negotiation.Offer, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, row.offer())
	}
	return offers
}
