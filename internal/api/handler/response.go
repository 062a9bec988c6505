package handler

import (
	"github.com/labstack/echo/v4"
)

// Envelope wraps every response body.
type Envelope struct {
	Status   int    `json:"status"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data"`
	Metadata any    `json:"metadata,omitempty"`
	Error    any    `json:"error,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{Status: code, Success: true, Message: message, Data: data})
}

func respondWithMeta(c echo.Context, code int, message string, data, meta any) error {
	return c.JSON(code, Envelope{Status: code, Success: true, Message: message, Data: data, Metadata: meta})
}
