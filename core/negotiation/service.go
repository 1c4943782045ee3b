package negotiation

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mazungumzo/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrSimulationNotFound  = errors.New("simulation not found")
	ErrRoundNotFound       = errors.New("negotiation round not found")
	ErrTeamNotInSimulation = errors.New("team has no role in this simulation")
	ErrNoOpposingOffer     = errors.New("no opposing offer to counter")
	ErrRoundNotAdvanceable = errors.New("round cannot be advanced")
)

// InvalidTransitionError signals a lifecycle command issued from a state that
// forbids it; the simulation is left unchanged.
type InvalidTransitionError struct {
	Action  string
	Status  Status
	Allowed []Status
}

func (err *InvalidTransitionError) Error() string {
	allowed := make([]string, 0, len(err.Allowed))
	for _, s := range err.Allowed {
		allowed = append(allowed, string(s))
	}
	return fmt.Sprintf("can only %s %s simulations; simulation is %s",
		err.Action, strings.Join(allowed, " or "), err.Status)
}

func newInvalidTransition(action string, status Status, allowed ...Status) error {
	return &InvalidTransitionError{Action: action, Status: status, Allowed: allowed}
}

// NotReadyError lists every failing readiness check blocking start.
type NotReadyError struct {
	Failures []string
}

func (err *NotReadyError) Error() string {
	return "simulation is not ready to start: " + strings.Join(err.Failures, "; ")
}

// activity event types
const (
	eventSimulationCreated    = "simulation.created"
	eventSimulationStarted    = "simulation.started"
	eventSimulationPaused     = "simulation.paused"
	eventSimulationResumed    = "simulation.resumed"
	eventSimulationCompleted  = "simulation.completed"
	eventArbitrationTriggered = "simulation.arbitration_triggered"
	eventRoundAdvanced        = "round.advanced"
	eventOfferSubmitted       = "offer.submitted"
	eventClientReactionServed = "client.reaction_served"
)

// lifecycle actions allowed per status, exposed through GetStatus
var allowedActions = map[Status][]string{
	StatusSetup:       {"start"},
	StatusActive:      {"pause", "complete", "arbitrate", "advance_round", "submit_offer"},
	StatusPaused:      {"resume", "complete", "arbitrate"},
	StatusCompleted:   {},
	StatusArbitration: {},
}

type (
	Repository interface {
		CreateSimulation(ctx context.Context, sim Simulation, exec ...core.DBExecutor) (Simulation, error)
		GetSimulationByID(ctx context.Context, id string, exec ...core.DBExecutor) (Simulation, error)
		// GetSimulationForUpdate locks the simulation for the duration of the
		// enclosing transaction, serializing lifecycle commands against
		// concurrent offer submissions.
		GetSimulationForUpdate(ctx context.Context, id string, exec ...core.DBExecutor) (Simulation, error)
		UpdateSimulation(ctx context.Context, sim Simulation, exec ...core.DBExecutor) (Simulation, error)

		CreateRound(ctx context.Context, rnd Round, exec ...core.DBExecutor) (Round, error)
		GetRoundByID(ctx context.Context, id string, exec ...core.DBExecutor) (Round, error)
		// GetActiveRound returns ErrRoundNotFound when no round is active.
		GetActiveRound(ctx context.Context, simulationID string, exec ...core.DBExecutor) (Round, error)
		// QueryRoundsBySimulation returns rounds ordered by ascending round number.
		QueryRoundsBySimulation(ctx context.Context, simulationID string, exec ...core.DBExecutor) ([]Round, error)
		UpdateRound(ctx context.Context, rnd Round, exec ...core.DBExecutor) (Round, error)

		CreateOffer(ctx context.Context, off Offer, exec ...core.DBExecutor) (Offer, error)
		// QueryOffersByRound returns offers ordered by ascending submission time.
		QueryOffersByRound(ctx context.Context, roundID string, exec ...core.DBExecutor) ([]Offer, error)
		QueryOffersBySimulation(ctx context.Context, simulationID string, exec ...core.DBExecutor) ([]Offer, error)
	}

	Service interface {
		Create(ctx context.Context, actor Actor, ns NewSimulation) (Simulation, error)
		GetByID(ctx context.Context, id string) (Simulation, error)
		GetStatus(ctx context.Context, id string) (StatusInfo, error)

		Start(ctx context.Context, actor Actor, id string) (Simulation, error)
		Pause(ctx context.Context, actor Actor, id string) (Simulation, error)
		Resume(ctx context.Context, actor Actor, id string) (Simulation, error)
		Complete(ctx context.Context, actor Actor, id string) (Simulation, error)
		TriggerArbitration(ctx context.Context, actor Actor, id string) (Simulation, error)
		AdvanceRound(ctx context.Context, actor Actor, id string) (Simulation, error)

		QueryRounds(ctx context.Context, simulationID string) ([]Round, error)
		QueryOffers(ctx context.Context, roundID string) ([]Offer, error)
		SubmitOffer(ctx context.Context, actor Actor, roundID string, no NewOffer) (Offer, error)
		SubmitCounterOffer(ctx context.Context, actor Actor, roundID string, no NewOffer) (Offer, error)

		Pressure(ctx context.Context, simulationID string) (PressureReport, error)
		Convergence(ctx context.Context, simulationID string) (ConvergenceReport, error)
		ClientReaction(ctx context.Context, actor Actor, simulationID string, rr ReactionRequest) (ClientReaction, error)
	}

	service struct {
		db        core.DB
		repo      Repository
		mailSvc   core.EmailService
		clientSvc core.ClientFeedbackService
		activity  core.ActivityLogger
		logger    core.Logger
		conf      *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(
	db core.DB,
	repo Repository,
	mailSvc core.EmailService,
	clientSvc core.ClientFeedbackService,
	activity core.ActivityLogger,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		db:        db,
		repo:      repo,
		mailSvc:   mailSvc,
		clientSvc: clientSvc,
		activity:  activity,
		logger:    logger,
		conf:      conf,
	}
}

// runTx executes fn inside a single transaction so that a state transition
// either fully applies or is fully rejected. The opened transactor is
// forwarded to fn for repository calls.
func (svc *service) runTx(ctx context.Context, fn func(exec ...core.DBExecutor) error) error {
	if svc.db == nil {
		// in-memory repositories serialize internally and need no transaction
		return fn()
	}
	tx, err := svc.db.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (svc *service) Create(ctx context.Context, actor Actor, ns NewSimulation) (Simulation, error) {
	now := nowFunc().UTC()
	roundDuration := ns.RoundDuration
	if roundDuration <= 0 {
		roundDuration = svc.conf.Negotiation.RoundDuration
	}
	sim := Simulation{
		Title:                  ns.Title,
		Status:                 StatusSetup,
		CurrentRound:           1,
		TotalRounds:            ns.TotalRounds,
		PlaintiffTeamID:        ns.PlaintiffTeamID,
		DefendantTeamID:        ns.DefendantTeamID,
		PlaintiffContactEmail:  ns.PlaintiffContactEmail,
		DefendantContactEmail:  ns.DefendantContactEmail,
		PlaintiffMinAcceptable: ns.PlaintiffMinAcceptable,
		PlaintiffIdeal:         ns.PlaintiffIdeal,
		DefendantIdeal:         ns.DefendantIdeal,
		DefendantMaxAcceptable: ns.DefendantMaxAcceptable,
		PressureEscalationRate: ns.PressureEscalationRate,
		Config: SimulationConfig{
			RoundDuration:         roundDuration,
			ClientFeedbackEnabled: ns.ClientFeedbackEnabled,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	sim, err := svc.repo.CreateSimulation(ctx, sim)
	if err != nil {
		return Simulation{}, err
	}
	svc.recordActivity(eventSimulationCreated, actor, map[string]interface{}{"simulation_id": sim.ID})
	return sim, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Simulation, error) {
	return svc.repo.GetSimulationByID(ctx, id)
}

func (svc *service) GetStatus(ctx context.Context, id string) (StatusInfo, error) {
	sim, err := svc.repo.GetSimulationByID(ctx, id)
	if err != nil {
		return StatusInfo{}, err
	}
	actions := allowedActions[sim.Status]
	if actions == nil {
		actions = []string{}
	}
	fails := readinessFailures(sim)
	if fails == nil {
		fails = []string{}
	}
	return StatusInfo{
		Status:           sim.Status,
		CurrentRound:     sim.CurrentRound,
		TotalRounds:      sim.TotalRounds,
		AllowedActions:   actions,
		ValidationErrors: fails,
	}, nil
}

// readinessFailures lists every check blocking start, not just the first.
func readinessFailures(sim Simulation) []string {
	var fails []string
	if sim.PlaintiffTeamID == "" {
		fails = append(fails, "no plaintiff team assigned")
	}
	if sim.DefendantTeamID == "" {
		fails = append(fails, "no defendant team assigned")
	}
	fails = append(fails, sim.Ranges().ConsistencyErrors()...)
	if sim.TotalRounds < 1 {
		fails = append(fails, "total rounds must be at least 1")
	}
	return fails
}

func (svc *service) Start(ctx context.Context, actor Actor, id string) (Simulation, error) {
	var (
		sim Simulation
		rnd Round
	)
	err := svc.runTx(ctx, func(exec ...core.DBExecutor) error {
		var err error
		if sim, err = svc.repo.GetSimulationForUpdate(ctx, id, exec...); err != nil {
			return err
		}
		if sim.Status != StatusSetup {
			return newInvalidTransition("start", sim.Status, StatusSetup)
		}
		if fails := readinessFailures(sim); len(fails) > 0 {
			return &NotReadyError{Failures: fails}
		}

		now := nowFunc().UTC()
		sim.Status = StatusActive
		sim.StartDate = &now
		sim.CurrentRound = 1
		sim.UpdatedAt = now
		if sim, err = svc.repo.UpdateSimulation(ctx, sim, exec...); err != nil {
			return err
		}
		rnd, err = svc.openRound(ctx, sim, 1, exec...)
		return err
	})
	if err != nil {
		return Simulation{}, err
	}

	svc.recordActivity(eventSimulationStarted, actor, map[string]interface{}{"simulation_id": sim.ID})
	svc.notifyRoundOpened(sim, rnd)
	return sim, nil
}

// transition applies a pure status toggle valid only from the allowed statuses.
func (svc *service) transition(
	ctx context.Context,
	id, action string,
	allowed []Status,
	mutate func(sim *Simulation, now time.Time),
) (Simulation, error) {
	var sim Simulation
	err := svc.runTx(ctx, func(exec ...core.DBExecutor) error {
		var err error
		if sim, err = svc.repo.GetSimulationForUpdate(ctx, id, exec...); err != nil {
			return err
		}
		var ok bool
		for _, status := range allowed {
			if sim.Status == status {
				ok = true
				break
			}
		}
		if !ok {
			return newInvalidTransition(action, sim.Status, allowed...)
		}

		now := nowFunc().UTC()
		mutate(&sim, now)
		sim.UpdatedAt = now
		sim, err = svc.repo.UpdateSimulation(ctx, sim, exec...)
		return err
	})
	return sim, err
}

func (svc *service) Pause(ctx context.Context, actor Actor, id string) (Simulation, error) {
	sim, err := svc.transition(ctx, id, "pause", []Status{StatusActive}, func(sim *Simulation, _ time.Time) {
		sim.Status = StatusPaused
	})
	if err != nil {
		return Simulation{}, err
	}
	svc.recordActivity(eventSimulationPaused, actor, map[string]interface{}{"simulation_id": sim.ID})
	return sim, nil
}

func (svc *service) Resume(ctx context.Context, actor Actor, id string) (Simulation, error) {
	sim, err := svc.transition(ctx, id, "resume", []Status{StatusPaused}, func(sim *Simulation, _ time.Time) {
		sim.Status = StatusActive
	})
	if err != nil {
		return Simulation{}, err
	}
	svc.recordActivity(eventSimulationResumed, actor, map[string]interface{}{"simulation_id": sim.ID})
	return sim, nil
}

func (svc *service) Complete(ctx context.Context, actor Actor, id string) (Simulation, error) {
	sim, err := svc.transition(ctx, id, "complete", []Status{StatusActive, StatusPaused}, func(sim *Simulation, now time.Time) {
		sim.Status = StatusCompleted
		sim.EndDate = &now
	})
	if err != nil {
		return Simulation{}, err
	}
	svc.recordActivity(eventSimulationCompleted, actor, map[string]interface{}{"simulation_id": sim.ID})
	svc.notifyClosed(sim)
	return sim, nil
}

func (svc *service) TriggerArbitration(ctx context.Context, actor Actor, id string) (Simulation, error) {
	sim, err := svc.transition(ctx, id, "arbitrate", []Status{StatusActive, StatusPaused}, func(sim *Simulation, now time.Time) {
		sim.Status = StatusArbitration
		sim.EndDate = &now
	})
	if err != nil {
		return Simulation{}, err
	}
	svc.recordActivity(eventArbitrationTriggered, actor, map[string]interface{}{"simulation_id": sim.ID})
	svc.notifyClosed(sim)
	return sim, nil
}

func (svc *service) recordActivity(eventType string, actor Actor, meta map[string]interface{}) {
	if svc.activity == nil {
		return
	}
	svc.activity.Record(eventType, actor.ID, meta)
}

func (svc *service) contactAddresses(sim Simulation) []mail.Address {
	var addrs []mail.Address
	if sim.PlaintiffContactEmail != "" {
		addrs = append(addrs, mail.Address{Address: sim.PlaintiffContactEmail})
	}
	if sim.DefendantContactEmail != "" {
		addrs = append(addrs, mail.Address{Address: sim.DefendantContactEmail})
	}
	return addrs
}

func (svc *service) notifyRoundOpened(sim Simulation, rnd Round) {
	if svc.mailSvc == nil {
		return
	}
	addrs := svc.contactAddresses(sim)
	if len(addrs) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           addrs,
		Subject:      fmt.Sprintf("Round %d of %d is open: %s", rnd.Number, sim.TotalRounds, sim.Title),
		TemplateName: "round-opened",
		TemplateData: struct {
			SimulationTitle string
			RoundNumber     int
			TotalRounds     int
			Deadline        time.Time
		}{sim.Title, rnd.Number, sim.TotalRounds, rnd.Deadline},
	})
}

func (svc *service) notifyClosed(sim Simulation) {
	if svc.mailSvc == nil {
		return
	}
	addrs := svc.contactAddresses(sim)
	if len(addrs) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           addrs,
		Subject:      fmt.Sprintf("Negotiation closed: %s", sim.Title),
		TemplateName: "simulation-closed",
		TemplateData: struct {
			SimulationTitle string
			Outcome         string
		}{sim.Title, string(sim.Status)},
	})
}
