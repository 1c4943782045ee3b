package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/mazungumzo/apps/api/echo"
	"github.com/trezcool/mazungumzo/core"
	"github.com/trezcool/mazungumzo/core/negotiation"
	activitysvc "github.com/trezcool/mazungumzo/services/activity"
	emailsvc "github.com/trezcool/mazungumzo/services/email"
	"github.com/trezcool/mazungumzo/storage/database/dummy"
)

var (
	app    echoapi.Server
	negSvc negotiation.Service
)

// testLogger satisfies core.Logger with the std logger; nothing is shipped
// anywhere during tests.
type testLogger struct {
	std *log.Logger
}

func (l testLogger) Enable(bool)                        {}
func (l testLogger) Debug(msg string, _ ...interface{}) { l.std.Println("DEBUG:", msg) }
func (l testLogger) Info(msg string, _ ...interface{})  { l.std.Println("INFO:", msg) }
func (l testLogger) Warn(msg string, _ ...interface{})  { l.std.Println("WARN:", msg) }
func (l testLogger) Error(msg string, _ ...interface{}) { l.std.Println("ERROR:", msg) }
func (l testLogger) Fatal(msg string, _ ...interface{}) { l.std.Fatal(msg) }

func TestMain(m *testing.M) {
	conf := &core.Config{
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Mazungumzo",
		WorkDir:          core.Getwd(),
		DefaultFromEmail: mail.Address{Name: "Mazungumzo", Address: "noreply@localhost"},
		Negotiation:      core.NegotiationConfig{RoundDuration: 48 * time.Hour},
		ClientFeedback:   core.ClientFeedbackConfig{Timeout: time.Second},
	}
	logger := testLogger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags)}

	// set up services over in-memory repos
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	activity := activitysvc.NewMockLogger()
	negSvc = negotiation.NewService(nil, dummy.NewNegotiationRepository(), mailSvc, nil, activity, logger, conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	negotiation.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// set up server
	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			NegotiationSvc: negSvc,
			Validate:       validate,
			Translator:     translator,
		},
	)

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	noActor  bool
	wantCode int
}

func newActorRequest(method, path string, noActor bool, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if !noActor {
		req.Header.Set("X-Actor-ID", "instructor-1")
		req.Header.Set("X-Actor-Name", "Prof. Amani")
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarshalBody(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshalBody(%s): %v", rec.Body.String(), err)
	}
}

func do(t *testing.T, method, path string, noActor bool, data ...[]byte) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newActorRequest(method, path, noActor, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("code = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkData(t *testing.T, rec *httptest.ResponseRecorder, wantData []byte) {
	t.Helper()
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(wantData))
	}
}

func newSimulationBody(t *testing.T) []byte {
	return marchallObj(t, negotiation.NewSimulation{
		Title:                  "Mwangi v. Kano Logistics",
		TotalRounds:            5,
		PlaintiffTeamID:        "team-p",
		DefendantTeamID:        "team-d",
		PlaintiffMinAcceptable: 150000,
		PlaintiffIdeal:         300000,
		DefendantIdeal:         100000,
		DefendantMaxAcceptable: 250000,
	})
}

// createSimulation creates and returns a fresh simulation through the API.
func createSimulation(t *testing.T) negotiation.Simulation {
	t.Helper()
	rec := do(t, http.MethodPost, "/v1/simulations", false, newSimulationBody(t))
	checkCode(t, rec, http.StatusCreated)
	var sim negotiation.Simulation
	unmarshalBody(t, rec, &sim)
	return sim
}

func startSimulation(t *testing.T) negotiation.Simulation {
	t.Helper()
	sim := createSimulation(t)
	rec := do(t, http.MethodPost, "/v1/simulations/"+sim.ID+"/start", false)
	checkCode(t, rec, http.StatusOK)
	unmarshalBody(t, rec, &sim)
	return sim
}

func activeRoundID(t *testing.T, simID string) string {
	t.Helper()
	rec := do(t, http.MethodGet, "/v1/simulations/"+simID+"/rounds", false)
	checkCode(t, rec, http.StatusOK)
	var rounds []negotiation.Round
	unmarshalBody(t, rec, &rounds)
	for _, rnd := range rounds {
		if rnd.IsActive() {
			return rnd.ID
		}
	}
	t.Fatal("no active round")
	return ""
}
