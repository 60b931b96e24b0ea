package product

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestProductRoutes(t *testing.T) {
	seed := []Product{
		{ID: 12, Name: "Tea", Price: 260, CategoryID: 1},
		{ID: 3, Name: "Coffee", Price: 400, CategoryID: 2},
	}
	pHandler := NewHandler(NewService(NewInMemoryRepository(seed)))
	app := fiber.New()
	pHandler.RegisterPublicRoutes(app)

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/products/:id<int>"] {
		t.Fatalf("expected route '/api/v1/products/:id<int>' to be registered")
	}

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	var list []Product
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].ID != 3 {
		t.Fatalf("expected two products ordered by id, got %+v", list)
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/12", nil))
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for existing product, got %d", res2.StatusCode)
	}
	var p Product
	json.NewDecoder(res2.Body).Decode(&p)
	if p.Price != 260 {
		t.Fatalf("unexpected product %+v", p)
	}

	res3, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/99", nil))
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing product, got %d", res3.StatusCode)
	}
}

func TestInMemoryRepository_PutAssignsIDs(t *testing.T) {
	repo := NewInMemoryRepository([]Product{{ID: 5, Name: "A"}})
	p := repo.Put(Product{Name: "B"})
	if p.ID != 6 {
		t.Fatalf("expected next id 6, got %d", p.ID)
	}
	if err := repo.Delete(5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(5); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
