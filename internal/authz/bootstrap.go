package authz

import (
	"fmt"

	"github.com/foodtruck-next/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleEmployee,
			Policies: []Policy{
				{Object: "/admin/auth/*", Action: "*"},
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/*", Action: "GET"},
				{Object: "/admin/orders/:id/status", Action: "PATCH"},
				{Object: "/admin/orders/:id/estimated-time", Action: "PATCH"},
				{Object: "/admin/users/:id/orders", Action: "GET"},
				{Object: "/admin/promotions", Action: "*"},
				{Object: "/admin/promotions/*", Action: "*"},
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/*", Action: "*"},
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/categories/*", Action: "*"},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleEmployee},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
