package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/duck-rage/duck-rage/internal/provision"
	"github.com/duck-rage/duck-rage/internal/registry"
)

// CallRequest carries the positional arguments of a function call.
// Arguments are backend coordinates and file paths; no secret value ever
// appears in a request or response body.
type CallRequest struct {
	Args []string `json:"args"`
}

// CallResponse returns the result rows of a completed call.
type CallResponse struct {
	Function string     `json:"function"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// FunctionHandler exposes the registry's table functions over HTTP.
type FunctionHandler struct {
	logger *zap.Logger
	reg    *registry.Registry
}

func NewFunctionHandler(logger *zap.Logger, reg *registry.Registry) *FunctionHandler {
	return &FunctionHandler{logger: logger, reg: reg}
}

// List returns the registered function names.
func (h *FunctionHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"functions": h.reg.Names()})
}

// Call binds a function once and drains it, returning every emitted row.
func (h *FunctionHandler) Call(c *fiber.Ctx) error {
	name := c.Params("name")
	fn, ok := h.reg.Lookup(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown function: " + name,
		})
	}

	var req CallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	rows, err := registry.Drain(c.UserContext(), fn, req.Args)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, provision.ErrStatementExecution) {
			status = fiber.StatusBadGateway
		}
		h.logger.Warn("api.function_call_failed",
			zap.String("function", name),
			zap.Int("status", status),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(CallResponse{
		Function: name,
		Columns:  fn.Columns(),
		Rows:     rows,
	})
}
