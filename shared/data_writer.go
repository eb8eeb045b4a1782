package shared

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var JSONAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

var (
	successResponse       = mustMarshal(Response{Code: 200, Message: "Success"})
	notFoundResponse      = mustMarshal(Response{Code: 404, Message: "Not Found"})
	unauthorizedResponse  = mustMarshal(Response{Code: 401, Message: "Unauthorized"})
	internalErrorResponse = mustMarshal(Response{Code: 500, Message: "Internal Server Error"})
)

func mustMarshal(v interface{}) []byte {
	b, _ := JSONAPI.Marshal(v)
	return b
}

func ResponseJSON(c *fiber.Ctx, httpCode int, message string, data interface{}) error {
	if data == nil {
		var cached []byte
		switch {
		case httpCode == fiber.StatusOK && message == "Success":
			cached = successResponse
		case httpCode == fiber.StatusNotFound && message == "Not Found":
			cached = notFoundResponse
		case httpCode == fiber.StatusUnauthorized && message == "Unauthorized":
			cached = unauthorizedResponse
		case httpCode == fiber.StatusInternalServerError && message == "Internal Server Error":
			cached = internalErrorResponse
		}
		if cached != nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(httpCode).Send(cached)
		}
	}

	body, err := JSONAPI.Marshal(Response{
		Code:    httpCode,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(httpCode).Send(body)
}

func ResponseOK(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, fiber.StatusOK, "Success", data)
}

func ResponseNotFound(c *fiber.Ctx) error {
	return ResponseJSON(c, fiber.StatusNotFound, "Not Found", nil)
}

func ResponseUnauthorized(c *fiber.Ctx, reason string) error {
	if reason == "" {
		return ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}
	return ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", reason)
}

func ResponseInternalError(c *fiber.Ctx) error {
	return ResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
}

// ErrorHandler renders errors returned by handlers. AppErrors keep their
// status, fiber errors their code, anything else becomes a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Warn("Request failed")
		}
		return ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	return ResponseInternalError(c)
}
