package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

const sessionCookie = "session"

type userKey string

const userIDKey userKey = "user_id"

// SignSession produces the signed cookie value "user.expiry.signature" for the
// given username.
func SignSession(secret, user string, expires time.Time) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(user)) + "." + base64.RawURLEncoding.EncodeToString([]byte(expires.UTC().Format(time.RFC3339)))
	return payload + "." + hmacSign(secret, payload)
}

// VerifySession validates a signed cookie value and returns the username.
func VerifySession(secret, value string) (string, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return "", errors.New("invalid session")
	}
	expected := hmacSign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", errors.New("invalid signature")
	}
	userRaw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", err
	}
	expiryRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}
	expires, err := time.Parse(time.RFC3339, string(expiryRaw))
	if err != nil {
		return "", err
	}
	if time.Now().After(expires) {
		return "", errors.New("session expired")
	}
	return string(userRaw), nil
}

func hmacSign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SetSessionCookie issues a session cookie for the authenticated user.
func SetSessionCookie(w http.ResponseWriter, secret, user string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    SignSession(secret, user, time.Now().Add(ttl)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Session resolves the signed cookie and, when valid, attaches the username to
// the request context. It never rejects; handlers decide what anonymous
// requests may do.
func Session(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(sessionCookie); err == nil {
				if user, err := VerifySession(secret, cookie.Value); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated username, or "".
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// RequireUser rejects requests that carry no valid session.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
