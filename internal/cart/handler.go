package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/chat-shop-backend/internal/apperr"
	"github.com/wichananm65/chat-shop-backend/internal/user"
)

// Handler exposes the cart of a chat user over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/api/v1/cart/:chatID<int>", h.viewCart)
	app.Delete("/api/v1/cart/:chatID<int>", h.clearCart)
	app.Post("/api/v1/cart/:chatID<int>/items", h.addItem)
	app.Put("/api/v1/cart/:chatID<int>/items/:itemID<int>", h.setQuantity)
	app.Delete("/api/v1/cart/:chatID<int>/items/:itemID<int>", h.removeItem)
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	chatID, err := user.ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}

	line, err := h.service.AddItem(c.UserContext(), chatID, payload.ProductID, qty)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

func (h *Handler) viewCart(c *fiber.Ctx) error {
	chatID, err := user.ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	view, err := h.service.ViewCart(c.UserContext(), chatID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	chatID, err := user.ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	itemID, err := strconv.ParseInt(c.Params("itemID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid itemID"})
	}
	payload := new(setQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	line, err := h.service.SetQuantity(c.UserContext(), chatID, itemID, payload.Quantity)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(line)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	chatID, err := user.ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	itemID, err := strconv.ParseInt(c.Params("itemID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid itemID"})
	}
	if err := h.service.RemoveItem(c.UserContext(), chatID, itemID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	chatID, err := user.ChatIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if err := h.service.Clear(c.UserContext(), chatID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
