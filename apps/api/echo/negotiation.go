package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazungumzo/core/negotiation"
)

type negotiationApi struct {
	svc      negotiation.Service
	validate *validator.Validate
}

func registerNegotiationAPI(g *echo.Group, svc negotiation.Service, validate *validator.Validate) {
	api := negotiationApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/simulations")
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/status", api.status)
	dg.GET("/pressure", api.pressure)
	dg.GET("/convergence", api.convergence)
	dg.GET("/rounds", api.queryRounds)
	dg.POST("/start", api.start)
	dg.POST("/pause", api.pause)
	dg.POST("/resume", api.resume)
	dg.POST("/complete", api.complete)
	dg.POST("/arbitrate", api.arbitrate)
	dg.POST("/advance-round", api.advanceRound)
	dg.POST("/client-reaction", api.clientReaction)

	rg := g.Group("/rounds/:id")
	rg.GET("/offers", api.queryOffers)
	rg.POST("/offers", api.submitOffer)
	rg.POST("/counter-offers", api.submitCounterOffer)
}

// Handlers

func (api *negotiationApi) create(ctx echo.Context) error {
	actor, err := requireContextActor(ctx)
	if err != nil {
		return err
	}

	var data negotiation.NewSimulation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSimulation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sim, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating simulation")
	}

	return ctx.JSON(http.StatusCreated, sim)
}

func (api *negotiationApi) retrieve(ctx echo.Context) error {
	sim, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sim)
}

func (api *negotiationApi) status(ctx echo.Context) error {
	info, err := api.svc.GetStatus(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, info)
}

// lifecycle commands

type lifecycleCommand func(ctx echo.Context, actor negotiation.Actor, id string) (negotiation.Simulation, error)

func (api *negotiationApi) lifecycle(ctx echo.Context, cmd lifecycleCommand) error {
	actor, err := requireContextActor(ctx)
	if err != nil {
		return err
	}
	sim, err := cmd(ctx, actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sim)
}

func (api *negotiationApi) start(ctx echo.Context) error {
	return api.lifecycle(ctx, func(ctx echo.Context, actor negotiation.Actor, id string) (negotiation.Simulation, error) {
		return api.svc.Start(ctx.Request().Context(), actor, id)
	})
}

func (api *negotiationApi) pause(ctx echo.Context) error {
	return api.lifecycle(ctx, func(ctx echo.Context, actor negotiation.Actor, id string) (negotiation.Simulation, error) {
		return api.svc.Pause(ctx.Request().Context(), actor, id)
	})
}

func (api *negotiationApi) resume(ctx echo.Context) error {
	return api.lifecycle(ctx, func(ctx echo.Context, actor negotiation.Actor, id string) (negotiation.Simulation, error) {
		return api.svc.Resume(ctx.Request().Context(), actor, id)
	})
}

func (api *negotiationApi) complete(ctx echo.Context) error {
	return api.lifecycle(ctx, func(ctx echo.Context, actor negotiation.Actor, id string) (negotiation.Simulation, error) {
		return api.svc.Complete(ctx.Request().Context(), actor, id)
	})
}

func (api *negotiationApi) arbitrate(ctx echo.Context) error {
	return api.lifecycle(ctx, func(ctx echo.Context, actor negotiation.Actor, id string) (negotiation.Simulation, error) {
		return api.svc.TriggerArbitration(ctx.Request().Context(), actor, id)
	})
}

func (api *negotiationApi) advanceRound(ctx echo.Context) error {
	return api.lifecycle(ctx, func(ctx echo.Context, actor negotiation.Actor, id string) (negotiation.Simulation, error) {
		return api.svc.AdvanceRound(ctx.Request().Context(), actor, id)
	})
}

// analysis

func (api *negotiationApi) pressure(ctx echo.Context) error {
	report, err := api.svc.Pressure(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *negotiationApi) convergence(ctx echo.Context) error {
	report, err := api.svc.Convergence(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *negotiationApi) clientReaction(ctx echo.Context) error {
	actor, err := requireContextActor(ctx)
	if err != nil {
		return err
	}

	var data negotiation.ReactionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReactionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reaction, err := api.svc.ClientReaction(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reaction)
}

// rounds & offers

func (api *negotiationApi) queryRounds(ctx echo.Context) error {
	rounds, err := api.svc.QueryRounds(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if rounds == nil {
		rounds = []negotiation.Round{}
	}
	return ctx.JSON(http.StatusOK, rounds)
}

func (api *negotiationApi) queryOffers(ctx echo.Context) error {
	offers, err := api.svc.QueryOffers(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if offers == nil {
		offers = []negotiation.Offer{}
	}
	return ctx.JSON(http.StatusOK, offers)
}

type submitFunc func(ctx context.Context, actor negotiation.Actor, roundID string, no negotiation.NewOffer) (negotiation.Offer, error)

func (api *negotiationApi) submitOffer(ctx echo.Context) error {
	return api.submit(ctx, api.svc.SubmitOffer)
}

func (api *negotiationApi) submitCounterOffer(ctx echo.Context) error {
	return api.submit(ctx, api.svc.SubmitCounterOffer)
}

func (api *negotiationApi) submit(ctx echo.Context, fn submitFunc) error {
	actor, err := requireContextActor(ctx)
	if err != nil {
		return err
	}

	var data negotiation.NewOffer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOffer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	off, err := fn(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, off)
}
