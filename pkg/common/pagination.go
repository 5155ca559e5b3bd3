package common

import (
	"net/http"
	"strconv"
)

// ExtractPage extracts the 1-based page query parameter, defaulting to 1.
// Page size is fixed by the idea listing contract and is not client-settable.
func ExtractPage(r *http.Request) int {
	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			return p
		}
	}
	return 1
}
