package controller

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
)

// ErrorResponse is the uniform failure payload every endpoint returns.
type ErrorResponse struct {
	Status     int               `json:"status"`
	Message    string            `json:"message"`
	Path       string            `json:"path"`
	TextCode   string            `json:"text_code,omitempty"`
	Validation map[string]string `json:"validation,omitempty"`
}

// NewErrorHandler translates rich errors into the structured JSON payload.
// Unknown errors collapse to a generic 500 so internals never leak.
func NewErrorHandler(logger walks.Logger) router.ErrorHandler {
	if logger == nil {
		logger = walks.DefaultLogger()
	}

	return func(ctx router.Context, err error) error {
		status := router.StatusInternalServerError
		payload := ErrorResponse{
			Status:  status,
			Message: "Internal Server Error",
			Path:    ctx.OriginalURL(),
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			if richErr.Code > 0 {
				status = richErr.Code
			} else {
				status = statusFromCategory(richErr.Category)
			}

			payload.Status = status
			payload.Message = richErr.Message
			payload.TextCode = richErr.TextCode

			if vm := richErr.ValidationMap(); len(vm) > 0 {
				payload.Validation = vm
			}
		}

		if status >= router.StatusInternalServerError {
			logger.Error("request failed", "method", ctx.Method(), "path", ctx.OriginalURL(), "error", err)
			payload.Message = "Internal Server Error"
			payload.TextCode = ""
		}

		return ctx.JSON(status, payload)
	}
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return router.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return router.StatusForbidden
	case goerrors.CategoryNotFound:
		return router.StatusNotFound
	case goerrors.CategoryConflict:
		return router.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return router.StatusBadRequest
	default:
		return router.StatusInternalServerError
	}
}
