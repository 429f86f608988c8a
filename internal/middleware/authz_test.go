package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/repository"
)

type stubAccountRepo struct {
	accounts map[string]models.Account
}

func (s *stubAccountRepo) CreateWithRoleAssignment(context.Context, *models.Account) (bool, error) {
	return false, nil
}

func (s *stubAccountRepo) GetByID(_ context.Context, id string) (models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (s *stubAccountRepo) List(context.Context, repository.AccountFilter) ([]models.Account, error) {
	return nil, nil
}

func (s *stubAccountRepo) CountByRole(context.Context, models.Role) (int64, error) {
	return 0, nil
}

func (s *stubAccountRepo) UpdateStatus(context.Context, string, models.Status, models.Status) error {
	return nil
}

func (s *stubAccountRepo) DeleteTeacherCascade(context.Context, string) (repository.CascadeCounts, error) {
	return repository.CascadeCounts{}, nil
}

func newAuthzApp(repo *stubAccountRepo, want models.Route, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Use(AuthorizeRoute(repo, want))
	app.Get("/", func(c *fiber.Ctx) error {
		account, _ := c.Locals("account").(models.Account)
		return c.JSON(fiber.Map{"name": account.Name})
	})
	return app
}

func routeFromResponse(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	var payload struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload.Data["route"]
}

func TestAuthorizeRouteAllowsMatchingDestination(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{
		"t1": {ID: "t1", Name: "ben", Role: models.RoleTeacher, Status: models.StatusApproved},
	}}
	app := newAuthzApp(repo, models.RouteTeacherDashboard, "t1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthorizeRouteRedirectsPendingTeacher(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{
		"t1": {ID: "t1", Role: models.RoleTeacher, Status: models.StatusPending},
	}}
	app := newAuthzApp(repo, models.RouteTeacherDashboard, "t1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, string(models.RouteAwaitingApproval), routeFromResponse(t, resp))
}

func TestAuthorizeRouteSignsOutRejectedTeacher(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{
		"t1": {ID: "t1", Role: models.RoleTeacher, Status: models.StatusRejected},
	}}
	app := newAuthzApp(repo, models.RouteTeacherDashboard, "t1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, string(models.RouteSignedOut), routeFromResponse(t, resp))
}

func TestAuthorizeRouteSignsOutMissingAccount(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{}}
	app := newAuthzApp(repo, models.RouteTeacherDashboard, "ghost")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, string(models.RouteSignedOut), routeFromResponse(t, resp))
}

func TestAuthorizeRouteRequiresAuthentication(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{}}
	app := newAuthzApp(repo, models.RouteAdminDashboard, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func newDashboardsApp(repo *stubAccountRepo, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Use(AuthorizeDashboards(repo))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthorizeDashboardsAdmitsAdminAndApprovedTeacher(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{
		"a1": {ID: "a1", Role: models.RoleAdmin, Status: models.StatusApproved},
		"t1": {ID: "t1", Role: models.RoleTeacher, Status: models.StatusApproved},
	}}

	for _, id := range []string{"a1", "t1"} {
		app := newDashboardsApp(repo, id)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestAuthorizeDashboardsBlocksPendingTeacher(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{
		"t1": {ID: "t1", Role: models.RoleTeacher, Status: models.StatusPending},
	}}
	app := newDashboardsApp(repo, "t1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, string(models.RouteAwaitingApproval), routeFromResponse(t, resp))
}

func TestAuthorizeDashboardsSignsOutRejectedTeacher(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{
		"t1": {ID: "t1", Role: models.RoleTeacher, Status: models.StatusRejected},
	}}
	app := newDashboardsApp(repo, "t1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, string(models.RouteSignedOut), routeFromResponse(t, resp))
}

func TestAuthorizeDashboardsSignsOutDeletedAccount(t *testing.T) {
	repo := &stubAccountRepo{accounts: map[string]models.Account{}}
	app := newDashboardsApp(repo, "ghost")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, string(models.RouteSignedOut), routeFromResponse(t, resp))
}
