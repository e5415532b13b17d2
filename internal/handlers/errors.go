package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cardkeep/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// details overrides the human readable message for an error kind on one route.
type details map[error]string

var defaultDetails = details{
	apperr.ErrDuplicateEmail:     "Email already registered.",
	apperr.ErrDuplicateDeck:      "A deck with that name already exists.",
	apperr.ErrInvalidCredentials: "Invalid email or password.",
	apperr.ErrInvalidToken:       "Invalid token.",
	apperr.ErrExpiredToken:       "Token expired.",
	apperr.ErrNotFound:           "Not found.",
	apperr.ErrConflict:           "The record was changed by another request. Reload and try again.",
	apperr.ErrUpstream:           "An upstream service is unavailable.",
	apperr.ErrStore:              "Storage is unavailable.",
}

func statusFor(kind error) int {
	switch kind {
	case apperr.ErrValidation, apperr.ErrDuplicateEmail, apperr.ErrDuplicateDeck,
		apperr.ErrInvalidCredentials, apperr.ErrInvalidToken, apperr.ErrExpiredToken:
		return fiber.StatusBadRequest
	case apperr.ErrNotFound:
		return fiber.StatusNotFound
	case apperr.ErrConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"detail": ...} with the status for its kind.
func respondError(c *fiber.Ctx, err error, overrides details) error {
	kind := apperr.Kind(err)
	status := statusFor(kind)

	detail, ok := overrides[kind]
	if !ok {
		detail, ok = defaultDetails[kind]
	}
	switch {
	case kind == apperr.ErrValidation:
		detail = err.Error()
	case !ok:
		detail = "Internal server error."
	}

	if status >= fiber.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.String("requestID", c.GetRespHeader(fiber.HeaderXRequestID)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}

// ErrorHandler renders errors that escape a handler, including Fiber's own
// (unknown route, wrong method, oversized body), in the same shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}
	return respondError(c, err, nil)
}

// StrictJSONDecoder rejects unknown fields and trailing data. It is installed
// as fiber.Config.JSONDecoder, so BodyParser uses it.
func StrictJSONDecoder(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// requestValidator parses and validates request bodies.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

// bind decodes the body into dst and validates it. Failures are wrapped
// apperr.ErrValidation.
func (rv *requestValidator) bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", apperr.ErrValidation, err)
	}
	if err := rv.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			field := e.Namespace()
			if i := strings.IndexByte(field, '.'); i >= 0 {
				field = field[i+1:]
			}
			messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", field, e.Tag()))
		}
		return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(messages, "; "))
	}
	return nil
}
