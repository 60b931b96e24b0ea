package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

type registerRequest struct {
	ChatID    int64  `json:"chatId"`
	FirstName string `json:"firstName"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/api/v1/users", h.register)
	app.Get("/api/v1/users", h.getUsers)
	app.Get("/api/v1/users/:chatID<int>", h.getUser)
	app.Patch("/api/v1/users/:chatID<int>", h.updateProfile)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Register(c.UserContext(), User{
		ChatID:    payload.ChatID,
		FirstName: payload.FirstName,
		Address:   payload.Address,
		Phone:     payload.Phone,
	})
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	chatID, err := ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	u, err := h.service.GetByChatID(c.UserContext(), chatID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(u)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	chatID, err := ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	var payload ProfileUpdate
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.UpdateProfile(c.UserContext(), chatID, payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

// ChatIDParam reads the :chatID route parameter. Cart and order handlers
// share it so every route validates the external identity the same way.
func ChatIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("chatID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidChatID
	}
	return id, nil
}
