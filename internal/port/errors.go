// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-teamvault.
//
// go-teamvault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package port

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

// ErrInvalidRequest is returned for requests whose body cannot be decoded
// or that miss required fields.
var ErrInvalidRequest = errors.New("invalid request")

// mapErrorToStatusCode maps errors to HTTP status codes. The error message
// itself is surfaced verbatim in the envelope regardless of the code.
func mapErrorToStatusCode(err error) int {
	var serverErr *api.ServerError

	switch {
	case errors.Is(err, ErrInvalidRequest),
		types.IsValidationError(err),
		types.IsCryptographicError(err):
		return http.StatusBadRequest
	case types.IsStateError(err),
		errors.Is(err, types.ErrRecoveryNotComplete):
		return http.StatusConflict
	case errors.Is(err, types.ErrAccountNotFound),
		errors.Is(err, types.ErrNoRecoveryInProgress):
		return http.StatusNotFound
	case errors.As(err, &serverErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeResult writes a SUCCESS envelope.
func writeResult(w http.ResponseWriter, id string, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	msg := Message{ID: id, Status: StatusSuccess, Body: body}
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError writes an ERROR envelope carrying the error message verbatim.
func writeError(w http.ResponseWriter, id string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(mapErrorToStatusCode(err))

	msg := Message{ID: id, Status: StatusError, Error: err.Error()}
	if encErr := json.NewEncoder(w).Encode(msg); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}
