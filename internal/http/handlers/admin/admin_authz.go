package admin

import (
	"github.com/foodtruck-next/internal/authz"
	"github.com/foodtruck-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetRolePolicies 指定角色的权限（含继承）
func (h *Handler) GetRolePolicies(c *gin.Context) {
	role, err := authz.NormalizeRole(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, policies)
}

// ListBuiltinRoles 内置角色及其继承关系
func (h *Handler) ListBuiltinRoles(c *gin.Context) {
	seeds := authz.BuiltinRoleSeeds()
	roles := make([]gin.H, 0, len(seeds))
	for _, seed := range seeds {
		roles = append(roles, gin.H{
			"role":     seed.Role,
			"inherits": seed.Inherits,
		})
	}
	response.Success(c, roles)
}
