package handler

import (
	"guide-exam/internal/domain"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the JSON body into dst and runs its validate tags.
// An empty body leaves dst at its zero value before validation.
func parseBody(c *fiber.Ctx, v *validation.Validator, dst interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("body", nil)}
		}
	}
	if errs := v.ValidateStruct(dst); len(errs) > 0 {
		return errs
	}
	return nil
}

// pathID returns the validated ULID path parameter name.
func pathID(c *fiber.Ctx, v *validation.Validator, name string) (string, error) {
	id := c.Params(name)
	if errs := v.ValidateSessionID(name, id); len(errs) > 0 {
		return "", errs
	}
	return id, nil
}
