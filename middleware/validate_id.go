package middleware

import (
	"net/http"

	"taskhub/models"
	"taskhub/response"

	"github.com/go-chi/chi/v5"
)

// ValidateObjectID rejects requests whose URL parameter is not a valid ID.
func ValidateObjectID(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !models.IsValidID(chi.URLParam(r, param)) {
				response.Error(w, http.StatusBadRequest, "Invalid ID format")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
