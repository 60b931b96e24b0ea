package category

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/categories", h.getCategories)
	app.Get("/api/v1/categories/:id<int>/products", h.getCategoryProducts)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", maxLimit)
	items, err := h.service.List(c.UserContext(), limit)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getCategoryProducts(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	items, err := h.service.Products(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}
