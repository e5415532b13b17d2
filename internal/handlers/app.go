package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// FiberConfig returns the Fiber settings the handlers in this package rely
// on: strict JSON decoding and {"detail": ...} error bodies.
func FiberConfig() fiber.Config {
	return fiber.Config{
		AppName:      "cardkeep",
		ErrorHandler: ErrorHandler,
		JSONDecoder:  StrictJSONDecoder,
		BodyLimit:    2 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}
