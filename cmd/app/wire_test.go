package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/chat-shop-backend/internal/config"
	"github.com/wichananm65/chat-shop-backend/internal/metrics"
	"github.com/wichananm65/chat-shop-backend/internal/order"
)

func newTestApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	m := metrics.NewRegistry()
	b, err := openBackend(context.Background(), cfg, m)
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	t.Cleanup(b.Close)
	return newApp(cfg, b, m)
}

func post(app *fiber.App, path, body string) (int, []byte) {
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		return 0, nil
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}

func TestApp_CartToOrderFlow(t *testing.T) {
	app := newTestApp(t, config.Config{AutoRegisterUsers: true, OrderTotalMode: config.TotalModeDistinct})

	res, _ := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected healthy, got %d", res.StatusCode)
	}

	if code, _ := post(app, "/api/v1/cart/42/items", `{"productId":1,"quantity":2}`); code != fiber.StatusCreated {
		t.Fatalf("add item: %d", code)
	}
	if code, _ := post(app, "/api/v1/cart/42/items", `{"productId":3}`); code != fiber.StatusCreated {
		t.Fatalf("add item: %d", code)
	}

	code, body := post(app, "/api/v1/orders", `{"chatId":42}`)
	if code != fiber.StatusCreated {
		t.Fatalf("convert: %d %s", code, body)
	}
	var created struct {
		TotalAmount int64 `json:"totalAmount"`
	}
	json.Unmarshal(body, &created)
	if created.TotalAmount != 150 {
		t.Fatalf("expected distinct total 150, got %d", created.TotalAmount)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	metricsBody, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(metricsBody), "shop_orders_created_total 1") {
		t.Fatalf("metrics missing order counter:\n%s", metricsBody)
	}
}

func TestApp_WeightedTotalAndStrictStatus(t *testing.T) {
	app := newTestApp(t, config.Config{
		AutoRegisterUsers:      true,
		OrderTotalMode:         config.TotalModeWeighted,
		ForwardOnlyOrderStatus: true,
	})

	post(app, "/api/v1/cart/7/items", `{"productId":1,"quantity":2}`)
	post(app, "/api/v1/cart/7/items", `{"productId":3}`)
	_, body := post(app, "/api/v1/orders", `{"chatId":7}`)
	var created struct {
		ID          int64 `json:"id"`
		TotalAmount int64 `json:"totalAmount"`
	}
	json.Unmarshal(body, &created)
	if created.TotalAmount != 250 {
		t.Fatalf("expected weighted total 250, got %d", created.TotalAmount)
	}

	put := func(status string) int {
		req := httptest.NewRequest("PUT", "/api/v1/admin/orders/"+strconv.FormatInt(created.ID, 10)+"/status", bytes.NewBufferString(`{"status":"`+status+`"}`))
		req.Header.Set("Content-Type", "application/json")
		res, _ := app.Test(req)
		return res.StatusCode
	}
	if code := put("SENT"); code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := put("NEW"); code != fiber.StatusConflict {
		t.Fatalf("expected 409 for backwards transition, got %d", code)
	}
}

func TestApp_AutoRegistrationDisabled(t *testing.T) {
	app := newTestApp(t, config.Config{AutoRegisterUsers: false})

	code, _ := post(app, "/api/v1/orders", `{"chatId":99}`)
	if code != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", code)
	}
}

func TestOrderOptions(t *testing.T) {
	opts := orderOptions(config.Config{OrderTotalMode: config.TotalModeWeighted, ForwardOnlyOrderStatus: true}, nil)
	products := []order.OrderedProduct{{Price: 100, Quantity: 2}}
	if opts.Total(products) != 200 {
		t.Fatalf("expected weighted policy")
	}
	if err := opts.Transitions.Check(order.StatusSent, order.StatusNew); err == nil {
		t.Fatalf("expected forward-only transitions")
	}
}
