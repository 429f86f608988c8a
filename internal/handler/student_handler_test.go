package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/service"
)

type stubStudentService struct {
	createFn     func(ctx context.Context, teacherID string, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	bulkImportFn func(ctx context.Context, teacherID, classID, grade string, source io.Reader) (dto.StudentImportResponse, error)
	listFn       func(ctx context.Context, teacherID, classID string) ([]dto.StudentResponse, error)
	deleteFn     func(ctx context.Context, teacherID, studentID string) error
}

func (s *stubStudentService) Create(ctx context.Context, teacherID string, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	return s.createFn(ctx, teacherID, payload)
}

func (s *stubStudentService) BulkImport(ctx context.Context, teacherID, classID, grade string, source io.Reader) (dto.StudentImportResponse, error) {
	return s.bulkImportFn(ctx, teacherID, classID, grade, source)
}

func (s *stubStudentService) List(ctx context.Context, teacherID, classID string) ([]dto.StudentResponse, error) {
	return s.listFn(ctx, teacherID, classID)
}

func (s *stubStudentService) Delete(ctx context.Context, teacherID, studentID string) error {
	return s.deleteFn(ctx, teacherID, studentID)
}

func newStudentApp(svc service.StudentService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/students", func(c *fiber.Ctx) error {
		c.Locals("user_id", "t1")
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	NewStudentHandler(svc, testLogger()).Register(group)
	return app
}

func TestStudentImportPlainTextBody(t *testing.T) {
	svc := &stubStudentService{
		bulkImportFn: func(_ context.Context, teacherID, classID, grade string, source io.Reader) (dto.StudentImportResponse, error) {
			require.Equal(t, "t1", teacherID)
			require.Equal(t, "c1", classID)
			require.Equal(t, "10", grade)

			body, err := io.ReadAll(source)
			require.NoError(t, err)
			require.Equal(t, "Alice\nBob\n", string(body))

			return dto.StudentImportResponse{
				Created: []dto.StudentResponse{{Name: "Alice"}, {Name: "Bob"}},
			}, nil
		},
	}
	app := newStudentApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/import?class_id=c1&grade=10", strings.NewReader("Alice\nBob\n"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.StudentImportResponse `json:"data"`
	}
	decodeBody(t, resp, &payload)
	require.Len(t, payload.Data.Created, 2)
}

func TestStudentImportRequiresClassID(t *testing.T) {
	app := newStudentApp(&stubStudentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/import", strings.NewReader("Alice\n"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStudentImportForeignClassForbidden(t *testing.T) {
	svc := &stubStudentService{
		bulkImportFn: func(context.Context, string, string, string, io.Reader) (dto.StudentImportResponse, error) {
			return dto.StudentImportResponse{}, service.ErrClassNotOwned
		},
	}
	app := newStudentApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/import?class_id=c9", strings.NewReader("Alice\n"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestStudentCreateScopedToCaller(t *testing.T) {
	svc := &stubStudentService{
		createFn: func(_ context.Context, teacherID string, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
			require.Equal(t, "t1", teacherID)
			require.Equal(t, "Dina", payload.Name)
			return dto.StudentResponse{ID: "s1", Name: payload.Name, StudentCode: "AAAA1111"}, nil
		},
	}
	app := newStudentApp(svc)

	resp := postJSON(t, app, "/api/v1/students", `{"name":"Dina","grade":"10","class_id":"c1"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestStudentDeleteNotFound(t *testing.T) {
	svc := &stubStudentService{
		deleteFn: func(context.Context, string, string) error {
			return service.ErrStudentNotFound
		},
	}
	app := newStudentApp(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/students/ghost", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
