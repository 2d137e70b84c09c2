// Package api exposes the detector over a small JSON HTTP API so phone-side
// forwarders can post notification text as it arrives.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/engine"
)

const shutdownTimeout = 5 * time.Second

// Server serves the detector's operations over HTTP.
type Server struct {
	app      *fiber.App
	detector *engine.Detector
}

// New builds a server around a loaded detector and registers its routes.
func New(detector *engine.Detector) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "spice",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          handleError,
	})

	s := &Server{app: app, detector: detector}

	app.Use(recover.New())
	app.Use(logRequest)

	api := app.Group("/api")
	api.Get("/health", s.health)
	api.Post("/parse", s.parse)

	api.Get("/rules", s.listRules)
	api.Post("/rules", s.addRule)
	api.Delete("/rules/:id", s.deleteRule)

	api.Get("/categories", s.listCategories)
	api.Get("/categories/suggest", s.suggestCategories)
	api.Post("/categories/learn", s.learnCategory)

	api.Get("/banks/mappings", s.listMappings)
	api.Put("/banks/mappings", s.rememberMapping)
	api.Delete("/banks/mappings/:bank", s.forgetMapping)

	api.Get("/pending", s.listPending)
	api.Post("/pending/:id/confirm", s.confirmPending)
	api.Post("/pending/:id/dismiss", s.dismissPending)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	common.LogInfo("API listening", common.Fields{"address": addr})

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	common.LogDebug("API request", common.Fields{
		"method":   c.Method(),
		"path":     c.Path(),
		"status":   c.Response().StatusCode(),
		"duration": time.Since(start).String(),
	})
	return err
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	var userErr *common.UserError
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.Is(err, common.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.As(err, &userErr),
		errors.Is(err, common.ErrInvalidRule),
		errors.Is(err, common.ErrInvalidInput):
		code = fiber.StatusBadRequest
	}

	if code >= fiber.StatusInternalServerError {
		common.LogError(err, "API request failed", common.Fields{"path": c.Path()})
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
