package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/foodtruck-next/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	cases := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{constants.RoleEmployee, "/api/v1/admin/orders", "GET", true},
		{constants.RoleEmployee, "/api/v1/admin/orders/42", "get", true},
		{constants.RoleEmployee, "/api/v1/admin/orders/42/status", "PATCH", true},
		{constants.RoleEmployee, "/api/v1/admin/orders/42/estimated-time", "PATCH", true},
		{constants.RoleEmployee, "/api/v1/admin/orders/stream", "GET", true},
		{constants.RoleEmployee, "/api/v1/admin/promotions/7", "DELETE", true},
		{constants.RoleEmployee, "/api/v1/admin/products/7/image", "POST", true},
		{constants.RoleEmployee, "/api/v1/admin/orders/42", "DELETE", false},
		{constants.RoleEmployee, "/api/v1/admin/maintenance/promotion-sweep", "POST", false},
		{constants.RoleAdmin, "/api/v1/admin/maintenance/promotion-sweep", "POST", true},
		{constants.RoleAdmin, "/api/v1/admin/orders/42/status", "PATCH", true},
		{constants.RoleUser, "/api/v1/admin/orders", "GET", false},
		{"", "/api/v1/admin/orders", "GET", false},
	}
	for _, tc := range cases {
		got, err := svc.EnforceRole(tc.role, tc.object, tc.action)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.action, tc.object, err)
		}
		if got != tc.want {
			t.Fatalf("enforce %s %s %s want=%v got=%v", tc.role, tc.action, tc.object, tc.want, got)
		}
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	before, err := svc.GetRolePolicies(constants.RoleEmployee)
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	after, err := svc.GetRolePolicies(constants.RoleEmployee)
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(before) == 0 || len(before) != len(after) {
		t.Fatalf("policies changed after re-bootstrap: before=%d after=%d", len(before), len(after))
	}
}

func TestAdminInheritsEmployeePolicies(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	policies, err := svc.GetRolePolicies(constants.RoleAdmin)
	if err != nil {
		t.Fatalf("get admin policies failed: %v", err)
	}
	var hasWildcard, hasInherited bool
	for _, policy := range policies {
		if policy.Object == "/admin/*" && policy.Action == "*" {
			hasWildcard = true
		}
		if policy.Object == "/admin/orders/:id/status" && policy.Action == "PATCH" {
			hasInherited = true
		}
	}
	if !hasWildcard || !hasInherited {
		t.Fatalf("unexpected admin policies: %+v", policies)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := map[string]string{
		"":                       "/",
		"/api/v1":                "/",
		"/api/v1/admin/orders":   "/admin/orders",
		"admin/products":         "/admin/products",
		" /admin/categories/1 ":  "/admin/categories/1",
	}
	for input, want := range cases {
		if got := NormalizeObject(input); got != want {
			t.Fatalf("normalize %q want %q got %q", input, want, got)
		}
	}
}
