package echoapi

import "github.com/labstack/echo/v4"

// successResponse is the uniform envelope returned by every endpoint.
type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func jsonData(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, successResponse{Success: true, Data: data})
}

func jsonMessage(ctx echo.Context, code int, data interface{}, msg string) error {
	return ctx.JSON(code, successResponse{Success: true, Data: data, Message: msg})
}
