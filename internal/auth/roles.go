package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/domain"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// RequireStaffRole ensures the principal has one of the allowed roles. With
// no roles given any authenticated account passes.
func RequireStaffRole(allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, err := MustPrincipal(c)
		if err != nil {
			return err
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin is RequireStaffRole(ADMIN).
func RequireAdmin() fiber.Handler {
	return RequireStaffRole(domain.StaffRoleAdmin)
}
