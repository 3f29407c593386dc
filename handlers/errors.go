package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskhub/database"
	"taskhub/logging"
	"taskhub/middleware"
	"taskhub/models"
	"taskhub/response"
	"taskhub/validation"

	"github.com/sirupsen/logrus"
)

// APIError is an error with a client-facing status and message.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	return e.Message
}

func badRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

func notFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

func unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message}
}

// writeError maps err onto the error envelope. Anything unrecognised is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	var verrs validation.Errors
	switch {
	case errors.As(err, &apiErr):
		response.Error(w, apiErr.Status, apiErr.Message, apiErr.Errors...)
	case errors.As(err, &verrs):
		response.Error(w, http.StatusBadRequest, "Validation error", verrs...)
	case errors.Is(err, database.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, database.ErrDuplicate):
		response.Error(w, http.StatusBadRequest, "Resource already exists")
	default:
		logging.Logger.WithFields(logrus.Fields{
			"request_id": middleware.RequestID(r),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).WithError(err).Error("Request failed")
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// mapStoreError replaces the store sentinels with resource-specific messages.
func mapStoreError(err error, notFoundMsg, duplicateMsg string) error {
	switch {
	case errors.Is(err, database.ErrNotFound) && notFoundMsg != "":
		return notFound(notFoundMsg)
	case errors.Is(err, database.ErrDuplicate) && duplicateMsg != "":
		return badRequest(duplicateMsg)
	default:
		return err
	}
}

// listParams reads page, limit and search from the query string.
// Unparsable numbers fall back to the defaults.
func listParams(r *http.Request) models.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.ListParams{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
	}.Normalize()
}
