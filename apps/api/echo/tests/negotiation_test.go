package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/mazungumzo/core/negotiation"
)

func Test_negotiationApi_create(t *testing.T) {
	tests := []httpTest{
		{name: "actor required", method: http.MethodPost, path: "/v1/simulations", noActor: true, wantCode: http.StatusBadRequest},
		{name: "empty body", method: http.MethodPost, path: "/v1/simulations", body: []byte("{}"), wantCode: http.StatusBadRequest},
		{name: "created", method: http.MethodPost, path: "/v1/simulations", wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if body == nil {
				body = newSimulationBody(t)
			}
			rec := do(t, tt.method, tt.path, tt.noActor, body)
			checkCode(t, rec, tt.wantCode)

			if tt.noActor {
				checkData(t, rec, marchallObj(t, httpErr{Error: "X-Actor-ID header is required"}))
			}
			if tt.wantCode == http.StatusCreated {
				var sim negotiation.Simulation
				unmarshalBody(t, rec, &sim)
				if sim.ID == "" || sim.Status != negotiation.StatusSetup {
					t.Errorf("unexpected simulation: %+v", sim)
				}
			}
		})
	}
}

func Test_negotiationApi_create_sameTeam(t *testing.T) {
	body := marchallObj(t, negotiation.NewSimulation{
		Title:                  "Same team on both sides",
		TotalRounds:            3,
		PlaintiffTeamID:        "team-p",
		DefendantTeamID:        "team-p",
		PlaintiffMinAcceptable: 150000,
		PlaintiffIdeal:         300000,
		DefendantIdeal:         100000,
		DefendantMaxAcceptable: 250000,
	})
	rec := do(t, http.MethodPost, "/v1/simulations", false, body)
	checkCode(t, rec, http.StatusBadRequest)

	var fldErrs map[string]string
	unmarshalBody(t, rec, &fldErrs)
	if _, ok := fldErrs["defendant_team_id"]; !ok {
		t.Errorf("field errors = %v, want defendant_team_id flagged", fldErrs)
	}
}

func Test_negotiationApi_retrieveAndStatus(t *testing.T) {
	sim := createSimulation(t)

	rec := do(t, http.MethodGet, "/v1/simulations/"+sim.ID, false)
	checkCode(t, rec, http.StatusOK)

	rec = do(t, http.MethodGet, "/v1/simulations/lol", false)
	checkCode(t, rec, http.StatusNotFound)

	rec = do(t, http.MethodGet, "/v1/simulations/"+sim.ID+"/status", false)
	checkCode(t, rec, http.StatusOK)
	var info negotiation.StatusInfo
	unmarshalBody(t, rec, &info)
	if info.Status != negotiation.StatusSetup {
		t.Errorf("Status = %v, want %v", info.Status, negotiation.StatusSetup)
	}
	if len(info.AllowedActions) != 1 || info.AllowedActions[0] != "start" {
		t.Errorf("AllowedActions = %v, want [start]", info.AllowedActions)
	}
}

func Test_negotiationApi_lifecycle(t *testing.T) {
	sim := createSimulation(t)

	// pause before start: conflict
	rec := do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/pause", false)
	checkCode(t, rec, http.StatusConflict)

	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/start", false)
	checkCode(t, rec, http.StatusOK)
	unmarshalBody(t, rec, &sim)
	if sim.Status != negotiation.StatusActive {
		t.Fatalf("Status = %v, want %v", sim.Status, negotiation.StatusActive)
	}

	// starting twice: conflict
	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/start", false)
	checkCode(t, rec, http.StatusConflict)

	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/pause", false)
	checkCode(t, rec, http.StatusOK)

	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/resume", false)
	checkCode(t, rec, http.StatusOK)

	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/complete", false)
	checkCode(t, rec, http.StatusOK)
	unmarshalBody(t, rec, &sim)
	if sim.Status != negotiation.StatusCompleted || sim.EndDate == nil {
		t.Errorf("unexpected simulation after complete: %+v", sim)
	}
}

func Test_negotiationApi_start_notReady(t *testing.T) {
	body := marchallObj(t, negotiation.NewSimulation{
		Title:                  "Inconsistent ranges",
		TotalRounds:            3,
		PlaintiffTeamID:        "team-p",
		DefendantTeamID:        "team-d",
		PlaintiffMinAcceptable: 400000, // above ideal
		PlaintiffIdeal:         300000,
		DefendantIdeal:         100000,
		DefendantMaxAcceptable: 250000,
	})
	rec := do(t, http.MethodPost, "/v1/simulations", false, body)
	checkCode(t, rec, http.StatusCreated)
	var sim negotiation.Simulation
	unmarshalBody(t, rec, &sim)

	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/start", false)
	checkCode(t, rec, http.StatusConflict)

	var resp struct {
		Error    string   `json:"error"`
		Failures []string `json:"failures"`
	}
	unmarshalBody(t, rec, &resp)
	if len(resp.Failures) != 1 {
		t.Errorf("failures = %v, want the range inconsistency listed", resp.Failures)
	}
}

func Test_negotiationApi_arbitrate(t *testing.T) {
	sim := startSimulation(t)

	rec := do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/arbitrate", false)
	checkCode(t, rec, http.StatusOK)
	unmarshalBody(t, rec, &sim)
	if sim.Status != negotiation.StatusArbitration || sim.EndDate == nil {
		t.Errorf("unexpected simulation after arbitrate: %+v", sim)
	}
}

func Test_negotiationApi_advanceRound(t *testing.T) {
	sim := startSimulation(t)

	rec := do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/advance-round", false)
	checkCode(t, rec, http.StatusOK)
	unmarshalBody(t, rec, &sim)
	if sim.CurrentRound != 2 {
		t.Errorf("CurrentRound = %d, want 2", sim.CurrentRound)
	}

	// exhaust the rounds; the final advance conflicts
	for sim.CurrentRound < sim.TotalRounds {
		rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/advance-round", false)
		checkCode(t, rec, http.StatusOK)
		unmarshalBody(t, rec, &sim)
	}
	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/advance-round", false)
	checkCode(t, rec, http.StatusConflict)
}

func Test_negotiationApi_offers(t *testing.T) {
	sim := startSimulation(t)
	roundID := activeRoundID(t, sim.ID)

	offerBody := marchallObj(t, negotiation.NewOffer{
		TeamID:        "team-p",
		Amount:        300000,
		Justification: "full damages plus costs",
	})
	counterBody := marchallObj(t, negotiation.NewOffer{
		TeamID:        "team-d",
		Amount:        120000,
		Justification: "limited liability",
	})

	// counter-offer before any offer: conflict
	rec := do(t, http.MethodPost, "/v1/rounds/"+roundID+"/counter-offers", false, counterBody)
	checkCode(t, rec, http.StatusConflict)

	rec = do(t, http.MethodPost, "/v1/rounds/"+roundID+"/offers", false, offerBody)
	checkCode(t, rec, http.StatusCreated)
	var off negotiation.Offer
	unmarshalBody(t, rec, &off)
	if off.Type != negotiation.OfferTypeInitialDemand || off.Role != negotiation.RolePlaintiff {
		t.Errorf("unexpected offer: %+v", off)
	}

	rec = do(t, http.MethodPost, "/v1/rounds/"+roundID+"/counter-offers", false, counterBody)
	checkCode(t, rec, http.StatusCreated)
	unmarshalBody(t, rec, &off)
	if off.Type != negotiation.OfferTypeCounterOffer {
		t.Errorf("Type = %v, want %v", off.Type, negotiation.OfferTypeCounterOffer)
	}

	rec = do(t, http.MethodGet, "/v1/rounds/"+roundID+"/offers", false)
	checkCode(t, rec, http.StatusOK)
	var offers []negotiation.Offer
	unmarshalBody(t, rec, &offers)
	if len(offers) != 2 {
		t.Errorf("offers = %d, want 2", len(offers))
	}

	// validation: unknown team
	rec = do(t, http.MethodPost, "/v1/rounds/"+roundID+"/offers", false, marchallObj(t, negotiation.NewOffer{
		TeamID: "team-x", Amount: 100, Justification: "lol",
	}))
	checkCode(t, rec, http.StatusBadRequest)

	// validation: incomplete payload
	rec = do(t, http.MethodPost, "/v1/rounds/"+roundID+"/offers", false, []byte("{}"))
	checkCode(t, rec, http.StatusBadRequest)

	// unknown round
	rec = do(t, http.MethodPost, "/v1/rounds/lol/offers", false, offerBody)
	checkCode(t, rec, http.StatusNotFound)
}

func Test_negotiationApi_analysis(t *testing.T) {
	sim := startSimulation(t)
	roundID := activeRoundID(t, sim.ID)

	rec := do(t, http.MethodPost, "/v1/rounds/"+roundID+"/offers", false, marchallObj(t, negotiation.NewOffer{
		TeamID: "team-p", Amount: 250000, Justification: "claim",
	}))
	checkCode(t, rec, http.StatusCreated)
	rec = do(t, http.MethodPost, "/v1/rounds/"+roundID+"/counter-offers", false, marchallObj(t, negotiation.NewOffer{
		TeamID: "team-d", Amount: 150000, Justification: "counter",
	}))
	checkCode(t, rec, http.StatusCreated)

	rec = do(t, http.MethodGet, "/v1/simulations/"+sim.ID+"/convergence", false)
	checkCode(t, rec, http.StatusOK)
	var conv negotiation.ConvergenceReport
	unmarshalBody(t, rec, &conv)
	if conv.Gap == nil || *conv.Gap != 100000 {
		t.Errorf("Gap = %v, want 100000", conv.Gap)
	}
	if conv.GapPercentage == nil || *conv.GapPercentage != 40.0 {
		t.Errorf("GapPercentage = %v, want 40.0", conv.GapPercentage)
	}
	if conv.MovementTrend != negotiation.TrendInsufficientData {
		t.Errorf("MovementTrend = %v, want %v", conv.MovementTrend, negotiation.TrendInsufficientData)
	}

	rec = do(t, http.MethodGet, "/v1/simulations/"+sim.ID+"/pressure", false)
	checkCode(t, rec, http.StatusOK)
	var pressure negotiation.PressureReport
	unmarshalBody(t, rec, &pressure)
	if pressure.TimelinePressure != negotiation.PressureLow {
		t.Errorf("TimelinePressure = %v, want %v", pressure.TimelinePressure, negotiation.PressureLow)
	}
	if pressure.PressureLevel != 2 {
		t.Errorf("PressureLevel = %d, want 2", pressure.PressureLevel)
	}
}

func Test_negotiationApi_clientReaction(t *testing.T) {
	sim := startSimulation(t)

	rec := do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/client-reaction", false, marchallObj(t, negotiation.ReactionRequest{
		TeamID: "team-p",
		Amount: 320000,
	}))
	checkCode(t, rec, http.StatusOK)
	var reaction negotiation.ClientReaction
	unmarshalBody(t, rec, &reaction)
	if reaction.Source != negotiation.SourceFallback {
		t.Errorf("Source = %v, want %v", reaction.Source, negotiation.SourceFallback)
	}
	if reaction.Reaction != negotiation.Pleased {
		t.Errorf("Reaction = %v, want %v", reaction.Reaction, negotiation.Pleased)
	}

	// unknown team
	rec = do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/client-reaction", false, marchallObj(t, negotiation.ReactionRequest{
		TeamID: "team-x",
		Amount: 320000,
	}))
	checkCode(t, rec, http.StatusBadRequest)
}

func Test_home(t *testing.T) {
	rec := do(t, http.MethodGet, "/", false)
	checkCode(t, rec, http.StatusOK)
}
