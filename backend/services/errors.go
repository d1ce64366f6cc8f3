package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries the HTTP status the controller layer should answer
// with. Storage failures are not ServiceErrors; they are wrapped and map to
// 500 at the boundary.
type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrUserNotFound(username string) error {
	return ServiceError{Status: http.StatusNotFound, Message: fmt.Sprintf("user %q not found", username)}
}

func ErrAlreadyExists(username string) error {
	return ServiceError{Status: http.StatusConflict, Message: fmt.Sprintf("user %q is already registered", username)}
}

func ErrInvalidArgument(msg string) error {
	return ServiceError{Status: http.StatusBadRequest, Message: msg}
}

// StatusOf maps an error to the HTTP status to respond with.
func StatusOf(err error) int {
	var se ServiceError
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusInternalServerError
}
