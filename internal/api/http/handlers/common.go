package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/itops-lab/helpdesk/internal/auth"
	"github.com/itops-lab/helpdesk/internal/domain"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
	"github.com/itops-lab/helpdesk/pkg/util/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// bind parses the JSON body into req and runs its validate tags.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return validation.Struct(req)
}

func staffPrincipal(c *fiber.Ctx) (*domain.AdminUser, error) {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return nil, err
	}
	return p.User, nil
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

// pathID returns the :id route param; anything but a canonical UUID is a
// validation error.
func pathID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("id"))
	if !isUUID(id) {
		return "", apperrors.NewValidationError("invalid id", map[string]any{"id": "must be a UUID"})
	}
	return id, nil
}

// uuidQuery is optionalQuery for ID filters.
func uuidQuery(c *fiber.Ctx, key string) (*string, error) {
	v := optionalQuery(c, key)
	if v != nil && !isUUID(*v) {
		return nil, apperrors.NewValidationError("invalid query parameter", map[string]any{key: "must be a UUID"})
	}
	return v, nil
}

func isUUID(v string) bool {
	if len(v) != 36 {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func paging(c *fiber.Ctx) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.Query("page_size", strconv.Itoa(defaultPageSize)))
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// parseTime accepts RFC3339 or a bare date.
func parseTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
