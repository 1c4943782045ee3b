package negotiation

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mazungumzo/core"
)

var (
	distinctTeamsTag  = "distinctteams"
	distinctTeamsText = "plaintiff and defendant must be different teams"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newSimulationStructValidation, NewSimulation{})
	core.RegisterCustomTranslation(validate, translator, distinctTeamsTag, distinctTeamsText)
}

// newSimulationStructValidation does struct level validation on NewSimulation.
// Range consistency is deliberately not checked here: ranges may still be
// adjusted while the simulation is in setup and only block start.
func newSimulationStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewSimulation)
	if !ok {
		return
	}
	if ns.PlaintiffTeamID != "" && ns.PlaintiffTeamID == ns.DefendantTeamID {
		sl.ReportError(ns.DefendantTeamID, "defendant_team_id", "DefendantTeamID", distinctTeamsTag, "")
	}
}
