package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const userIDContextKey contextKey = "userID"

// authMiddleware resolves the bearer token to a user id and checks that the
// user still exists before any handler runs.
func (r *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authz := req.Header.Get(common.AuthorizationHeaderName)
		token := strings.TrimSpace(strings.TrimPrefix(authz, common.BearerPrefix))
		if authz == "" || !strings.HasPrefix(authz, common.BearerPrefix) || token == "" {
			writeFailure(w, http.StatusUnauthorized, "No token, authorization denied", nil)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, r.secretKey)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, "Token is not valid", nil)
			return
		}

		if _, err := r.services.Users.GetByID(req.Context(), userID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				writeFailure(w, http.StatusUnauthorized, "Token is not valid", nil)
				return
			}
			r.logger.Error(req.Context(), "user lookup failed", "user", userID, "error", err)
			writeFailure(w, http.StatusInternalServerError, "Server error", nil)
			return
		}

		ctx := context.WithValue(req.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func getUserID(ctx context.Context) string {
	if v := ctx.Value(userIDContextKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (r *Router) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.maxRequestBytes > 0 && req.Body != nil {
			req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		r.logger.Debug(req.Context(), "request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(req.Context()),
		)
	})
}
