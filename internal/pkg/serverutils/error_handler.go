package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders any error returned by a handler as a BaseResponse.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		res := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
		res.Errors = verr.Fields
		return ctx.Status(fiber.StatusBadRequest).JSON(res)
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}

// ErrorHandlerMiddleware converts handler errors before they reach fiber's default handler.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}
