package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"taskhub/database"
	"taskhub/logging"
	"taskhub/models"
	"taskhub/response"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserContextKey contextKey = "user"

// Claims identifies the user a token was issued to. The role is looked up
// on every request so role changes apply without re-login.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies bearer tokens and resolves them to users.
type Authenticator struct {
	secret     []byte
	expiration time.Duration
	users      database.UserStore
	now        func() time.Time
}

func NewAuthenticator(secret string, expiration time.Duration, users database.UserStore) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		expiration: expiration,
		users:      users,
		now:        time.Now,
	}
}

func (a *Authenticator) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// RequireAuth loads the user named by the bearer token into the request
// context, or rejects the request with 401.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := a.users.UserByID(r.Context(), claims.UserID)
		if errors.Is(err, database.ErrNotFound) {
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if err != nil {
			logging.Logger.WithError(err).WithField("request_id", RequestID(r)).Error("Failed to load token user")
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				response.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if len(roles) == 0 || user.HasRole(roles...) {
				next.ServeHTTP(w, r)
				return
			}

			response.Error(w, http.StatusForbidden, "Forbidden")
		})
	}
}

func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
