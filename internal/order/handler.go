package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/chat-shop-backend/internal/apperr"
	"github.com/wichananm65/chat-shop-backend/internal/user"
)

type Handler struct {
	converter *Converter
	service   *Service
}

func NewHandler(c *Converter, s *Service) *Handler {
	return &Handler{converter: c, service: s}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/api/v1/orders", h.convert)
	app.Get("/api/v1/orders/:id<int>", h.getOrder)
	app.Get("/api/v1/users/:chatID<int>/orders", h.listByUser)
}

// RegisterAdminRoutes exposes the back-office order endpoints.
func (h *Handler) RegisterAdminRoutes(app fiber.Router) {
	app.Get("/api/v1/admin/orders", h.listAll)
	app.Put("/api/v1/admin/orders/:id<int>/status", h.setStatus)
}

type convertRequest struct {
	ChatID int64 `json:"chatId"`
}

type convertResponse struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	Status      Status `json:"status"`
	TotalAmount int64  `json:"totalAmount"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) convert(c *fiber.Ctx) error {
	payload := new(convertRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ChatID <= 0 {
		return apperr.Respond(c, user.ErrInvalidChatID)
	}

	o, err := h.converter.Convert(c.UserContext(), payload.ChatID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(convertResponse{
		ID:          o.ID,
		Number:      o.Number,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
	})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	o, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) listByUser(c *fiber.Ctx) error {
	chatID, err := user.ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	orders, err := h.service.ListOrdersByUser(c.UserContext(), chatID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) setStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	o, err := h.service.SetStatus(c.UserContext(), id, payload.Status)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}
