package models

import "github.com/gofiber/fiber/v2"

// ApiResponse is the success envelope returned by every endpoint.
type ApiResponse struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// Respond writes the success envelope with the given status code.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(ApiResponse{
		Status:  status,
		Data:    data,
		Message: message,
	})
}
