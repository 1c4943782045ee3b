package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mazungumzo/core/negotiation"
)

// Actor identification headers. Authentication happens upstream; the gateway
// forwards the authenticated principal in these headers.
const (
	actorIDHeader   = "X-Actor-ID"
	actorNameHeader = "X-Actor-Name"

	actorContextKey = "actor"
)

var errActorRequired = echo.NewHTTPError(http.StatusBadRequest, actorIDHeader+" header is required")

// actorMiddleware extracts the acting principal from the request headers and
// stores it in the context for handlers and error reporting.
func actorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(actorContextKey, negotiation.Actor{
				ID:   ctx.Request().Header.Get(actorIDHeader),
				Name: ctx.Request().Header.Get(actorNameHeader),
			})
			return next(ctx)
		}
	}
}

func getContextActor(ctx echo.Context) negotiation.Actor {
	if actor, ok := ctx.Get(actorContextKey).(negotiation.Actor); ok {
		return actor
	}
	return negotiation.Actor{}
}

// requireContextActor is used by mutating endpoints; commands must be
// attributable to someone.
func requireContextActor(ctx echo.Context) (negotiation.Actor, error) {
	actor := getContextActor(ctx)
	if actor.ID == "" {
		return negotiation.Actor{}, errActorRequired
	}
	return actor, nil
}
