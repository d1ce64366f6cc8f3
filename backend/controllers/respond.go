package controllers

import (
	"errors"

	"eduledger/backend/services"
	"eduledger/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// serviceError translates a service-layer error into the matching HTTP
// response. Storage failures surface as 500 without leaking internals.
func serviceError(c *fiber.Ctx, err error) error {
	var se services.ServiceError
	if errors.As(err, &se) {
		return utils.Error(c, se.Status, se.Message)
	}
	return utils.InternalServerError(c, "Storage backend failure")
}

// validationDetails flattens validator errors into field -> rule messages.
func validationDetails(err error) map[string]string {
	details := make(map[string]string)
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}
