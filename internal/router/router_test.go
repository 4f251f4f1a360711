package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBuildAdminPermissionCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	noop := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/api/v1/admin/auth/login", noop)
	r.GET("/api/v1/admin/orders", noop)
	r.PATCH("/api/v1/admin/orders/:id/status", noop)
	r.GET("/api/v1/admin/authz/roles", noop)
	r.POST("/api/v1/admin/promotions", noop)
	r.GET("/api/v1/products", noop)

	items := buildAdminPermissionCatalog(r)
	if len(items) != 4 {
		t.Fatalf("catalog size want 4 got %d: %+v", len(items), items)
	}
	want := []adminPermissionCatalogItem{
		{Module: "authz", Method: "GET", Object: "/admin/authz/roles", Permission: "GET:/admin/authz/roles"},
		{Module: "orders", Method: "GET", Object: "/admin/orders", Permission: "GET:/admin/orders"},
		{Module: "orders", Method: "PATCH", Object: "/admin/orders/:id/status", Permission: "PATCH:/admin/orders/:id/status"},
		{Module: "promotions", Method: "POST", Object: "/admin/promotions", Permission: "POST:/admin/promotions"},
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d want %+v got %+v", i, want[i], items[i])
		}
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"":                                   "system",
		"/admin":                             "admin",
		"/admin/authz/roles/:role":           "authz",
		"/admin/maintenance/promotion-sweep": "maintenance",
		"/orders":                            "orders",
	}
	for input, want := range cases {
		if got := deriveAdminPermissionModule(input); got != want {
			t.Fatalf("deriveAdminPermissionModule(%q) want %q got %q", input, want, got)
		}
	}
}
