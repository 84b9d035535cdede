package controller

import (
	"fmt"

	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/pkg/serverutils"
	"library-assistant-be/internal/service"
	"library-assistant-be/pkg/rag/recommend"

	"github.com/gofiber/fiber/v2"
)

type IRecommendationController interface {
	RegisterRoutes(r fiber.Router)
	Recommend(ctx *fiber.Ctx) error
	AvailableThemes(ctx *fiber.Ctx) error
	AvailableMoods(ctx *fiber.Ctx) error
}

type recommendationController struct {
	recommendations service.IRecommendationService
	catalogue       service.ICatalogueService
}

func NewRecommendationController(recommendations service.IRecommendationService, catalogue service.ICatalogueService) IRecommendationController {
	return &recommendationController{recommendations: recommendations, catalogue: catalogue}
}

func (c *recommendationController) RegisterRoutes(r fiber.Router) {
	u := r.Group("/users/me")
	u.Use(serverutils.JwtMiddleware)
	u.Get("/recommendations", c.Recommend)

	p := r.Group("/preferences")
	p.Get("/available-themes", c.AvailableThemes)
	p.Get("/available-moods", c.AvailableMoods)
}

func (c *recommendationController) Recommend(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 10)
	if limit < constant.MinBookLimit || limit > constant.MaxBookLimit {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("limit must be between %d and %d", constant.MinBookLimit, constant.MaxBookLimit))
	}

	res, err := c.recommendations.Recommend(ctx.UserContext(), serverutils.UserID(ctx), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get recommendations", res))
}

func (c *recommendationController) facet(ctx *fiber.Ctx, facet recommend.Facet) error {
	res, err := c.catalogue.Facet(ctx.UserContext(), facet, ctx.QueryInt("limit", recommend.DefaultFacetLimit))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get "+string(facet), res))
}

func (c *recommendationController) AvailableThemes(ctx *fiber.Ctx) error {
	return c.facet(ctx, recommend.FacetThemes)
}

func (c *recommendationController) AvailableMoods(ctx *fiber.Ctx) error {
	return c.facet(ctx, recommend.FacetMoods)
}
