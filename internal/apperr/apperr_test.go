package apperr

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHTTPStatus(t *testing.T) {
	emptyCart := fmt.Errorf("%w: cart is empty", ErrConflict)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, fiber.StatusOK},
		{"not found", fmt.Errorf("%w: order", ErrNotFound), fiber.StatusNotFound},
		{"validation", fmt.Errorf("%w: quantity", ErrValidation), fiber.StatusBadRequest},
		{"conflict wrapped twice", fmt.Errorf("convert: %w", emptyCart), fiber.StatusConflict},
		{"persistence", Persistence("insert order", errors.New("boom")), fiber.StatusInternalServerError},
		{"unknown", errors.New("who knows"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestPersistence(t *testing.T) {
	if Persistence("noop", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	cause := errors.New("connection reset")
	err := Persistence("select cart", cause)
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, cause) {
		t.Fatalf("expected error to match both kind and cause, got %v", err)
	}
}

func TestRespond_HidesPersistenceDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return Respond(c, Persistence("select", errors.New("password=secret")))
	})
	res, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if strings.Contains(string(b), "secret") {
		t.Fatalf("response leaked storage error: %s", b)
	}
}
