package order_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/chat-shop-backend/internal/order"
)

func newOrderApp(t *testing.T) (*fiber.App, shop) {
	t.Helper()
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	app := fiber.New()
	h := order.NewHandler(s.converter, s.ledger)
	h.RegisterRoutes(app)
	h.RegisterAdminRoutes(app)
	return app, s
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestOrderRoutes_ConvertAndRead(t *testing.T) {
	app, s := newOrderApp(t)

	res, _ := app.Test(jsonRequest("POST", "/api/v1/orders", `{"chatId":42}`))
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for empty cart, got %d", res.StatusCode)
	}

	s.fill(t)
	res, _ = app.Test(jsonRequest("POST", "/api/v1/orders", `{"chatId":42}`))
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created struct {
		ID          int64  `json:"id"`
		Number      string `json:"number"`
		Status      string `json:"status"`
		TotalAmount int64  `json:"totalAmount"`
	}
	json.NewDecoder(res.Body).Decode(&created)
	if created.ID == 0 || created.Number == "" || created.Status != "NEW" || created.TotalAmount != 150 {
		t.Fatalf("unexpected create response %+v", created)
	}

	res, _ = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/v1/orders/%d", created.ID), nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var got order.Order
	json.NewDecoder(res.Body).Decode(&got)
	if got.Number != created.Number || len(got.Products) != 2 {
		t.Fatalf("unexpected order %+v", got)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/users/42/orders", nil))
	var mine []order.Order
	json.NewDecoder(res.Body).Decode(&mine)
	if len(mine) != 1 {
		t.Fatalf("expected one order for user, got %d", len(mine))
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/orders/999", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestOrderRoutes_AdminStatus(t *testing.T) {
	app, s := newOrderApp(t)
	o := placeOrder(t, s)
	path := fmt.Sprintf("/api/v1/admin/orders/%d/status", o.ID)

	res, _ := app.Test(jsonRequest("PUT", path, `{"status":"shipped"}`))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", res.StatusCode)
	}

	res, _ = app.Test(jsonRequest("PUT", path, `{"status":"IN_PROGRESS"}`))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var updated order.Order
	json.NewDecoder(res.Body).Decode(&updated)
	if updated.Status != order.StatusInProgress || updated.StatusLabel != "В ОБРАБОТКЕ" {
		t.Fatalf("unexpected order %+v", updated)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/admin/orders", nil))
	var all []order.Order
	json.NewDecoder(res.Body).Decode(&all)
	if len(all) != 1 || all[0].Status != order.StatusInProgress {
		t.Fatalf("unexpected admin list %+v", all)
	}
}

func TestOrderRoutes_BadInput(t *testing.T) {
	app, _ := newOrderApp(t)

	res, _ := app.Test(jsonRequest("POST", "/api/v1/orders", `{"chatId":0}`))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	res, _ = app.Test(jsonRequest("POST", "/api/v1/orders", `{`))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}
