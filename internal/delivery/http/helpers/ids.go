package helpers

import (
	"net/http"

	"github.com/google/uuid"
)

// ValidID reports whether s is a canonical UUID.
func ValidID(s string) bool {
	return uuid.Validate(s) == nil && len(s) == 36
}

// PathID reads a UUID path value. A malformed ID cannot name an existing row, so it
// gets the same 404 as a missing one.
func PathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if !ValidID(id) {
		WriteJSONError(w, http.StatusNotFound, MsgNotFound)
		return "", false
	}
	return id, true
}

// CheckID appends a validation message when a present ID is malformed.
func CheckID(errs []string, field string, id *string) []string {
	if id != nil && !ValidID(*id) {
		return append(errs, field+": must be a valid UUID")
	}
	return errs
}
