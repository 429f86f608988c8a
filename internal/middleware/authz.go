package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/repository"
	"github.com/exambel/exambel-api/internal/utils"
)

// AuthorizeRoute re-evaluates the account gate on every request. A valid token
// alone is never enough: the account must still exist, must not be rejected,
// and must resolve to the destination this group serves. The response data
// always names the route the caller actually belongs on so clients can
// redirect instead of guessing.
func AuthorizeRoute(accounts repository.AccountRepository, want models.Route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", fiber.Map{
				"route": string(models.RouteSignedOut),
			})
		}

		account, err := accounts.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Fail(c, fiber.StatusUnauthorized, "account no longer exists", fiber.Map{
					"route": string(models.RouteSignedOut),
				})
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve account")
		}

		route := account.Route()
		if route == models.RouteSignedOut {
			return utils.Fail(c, fiber.StatusUnauthorized, "account access revoked", fiber.Map{
				"route": string(models.RouteSignedOut),
			})
		}
		if route != want {
			return utils.Fail(c, fiber.StatusForbidden, "wrong destination for this account", fiber.Map{
				"route": string(route),
			})
		}

		c.Locals("account", account)
		return c.Next()
	}
}

// AuthorizeDashboards admits any account that currently resolves to a
// dashboard. Surfaces shared by admins and approved teachers, such as the
// change feed, use it so a pending, rejected or deleted account is turned
// away even while its token is still valid.
func AuthorizeDashboards(accounts repository.AccountRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", fiber.Map{
				"route": string(models.RouteSignedOut),
			})
		}

		account, err := accounts.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Fail(c, fiber.StatusUnauthorized, "account no longer exists", fiber.Map{
					"route": string(models.RouteSignedOut),
				})
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve account")
		}

		switch route := account.Route(); route {
		case models.RouteAdminDashboard, models.RouteTeacherDashboard:
			c.Locals("account", account)
			return c.Next()
		case models.RouteSignedOut:
			return utils.Fail(c, fiber.StatusUnauthorized, "account access revoked", fiber.Map{
				"route": string(route),
			})
		default:
			return utils.Fail(c, fiber.StatusForbidden, "approval still pending", fiber.Map{
				"route": string(route),
			})
		}
	}
}
