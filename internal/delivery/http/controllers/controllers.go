package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/delivery/http/middleware"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// callerID returns the authenticated user. Routes are wrapped in RequireAuth, so a
// missing principal only happens when a route is registered without it.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok || id == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.MsgUnauthorized)
		return "", false
	}
	return id, true
}

func checkLength(errs []string, field, value string, minLen, maxLen int) []string {
	n := len(strings.TrimSpace(value))
	if n < minLen || len(value) > maxLen {
		if minLen > 0 {
			return append(errs, fmt.Sprintf("%s: must be %d-%d characters", field, minLen, maxLen))
		}
		return append(errs, fmt.Sprintf("%s: must be at most %d characters", field, maxLen))
	}
	return errs
}

func checkOptionalLength(errs []string, field string, value *string, maxLen int) []string {
	if value == nil {
		return errs
	}
	return checkLength(errs, field, *value, 0, maxLen)
}

func checkEmail(errs []string, field, value string) []string {
	if !emailRegexp.MatchString(strings.TrimSpace(value)) {
		return append(errs, field+": invalid email format")
	}
	return errs
}
