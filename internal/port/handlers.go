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
	"net/http"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-teamvault/pkg/accountrecovery"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
)

// HandlerContext carries the dependencies shared by the command handlers.
type HandlerContext struct {
	orchestrator *accountrecovery.Orchestrator
	logger       *logging.Logger
}

// NewHandlerContext creates the handler context.
func NewHandlerContext(orchestrator *accountrecovery.Orchestrator, logger *logging.Logger) *HandlerContext {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &HandlerContext{orchestrator: orchestrator, logger: logger}
}

// decode reads a JSON command body into dst.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidRequest
	}
	return nil
}

// correlationID returns the caller-chosen id, or generates one.
func correlationID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// fail logs err and writes the ERROR envelope.
func (h *HandlerContext) fail(w http.ResponseWriter, command, id string, err error) {
	h.logger.Warn("port command failed", "command", command, "error", err.Error())
	writeError(w, id, err)
}

// handleContinue serves account-recovery.continue.
func (h *HandlerContext) handleContinue(w http.ResponseWriter, r *http.Request) {
	var req ContinueRequest
	if err := decode(r, &req); err != nil {
		writeError(w, correlationID(""), err)
		return
	}
	id := correlationID(req.ID)

	if req.WorkerID == "" || req.UserID == "" || req.Domain == "" {
		writeError(w, id, ErrInvalidRequest)
		return
	}

	if err := h.orchestrator.Continue(r.Context(), req.WorkerID, req.UserID, req.Domain); err != nil {
		h.fail(w, "account-recovery.continue", id, err)
		return
	}
	writeResult(w, id, nil)
}

// handleVerifyPassphrase serves account-recovery.verify-passphrase.
func (h *HandlerContext) handleVerifyPassphrase(w http.ResponseWriter, r *http.Request) {
	var req VerifyPassphraseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, correlationID(""), err)
		return
	}
	id := correlationID(req.ID)

	if req.WorkerID == "" || req.Passphrase == "" {
		writeError(w, id, ErrInvalidRequest)
		return
	}

	if err := h.orchestrator.VerifyPassphrase(r.Context(), req.WorkerID, req.Passphrase); err != nil {
		h.fail(w, "account-recovery.verify-passphrase", id, err)
		return
	}
	writeResult(w, id, nil)
}

// handleRecoverAccount serves account-recovery.recover-account.
func (h *HandlerContext) handleRecoverAccount(w http.ResponseWriter, r *http.Request) {
	var req RecoverAccountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, correlationID(""), err)
		return
	}
	id := correlationID(req.ID)

	if req.WorkerID == "" || req.Passphrase == "" {
		writeError(w, id, ErrInvalidRequest)
		return
	}

	if err := h.orchestrator.RecoverAccount(r.Context(), req.WorkerID, req.Passphrase); err != nil {
		h.fail(w, "account-recovery.recover-account", id, err)
		return
	}
	writeResult(w, id, nil)
}

// handleRequestHelp serves account-recovery.request-help-credentials-lost.
func (h *HandlerContext) handleRequestHelp(w http.ResponseWriter, r *http.Request) {
	var req RequestHelpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, correlationID(""), err)
		return
	}
	id := correlationID(req.ID)

	if req.WorkerID == "" || req.UserID == "" || req.Domain == "" ||
		req.Username == "" || req.Passphrase == "" {
		writeError(w, id, ErrInvalidRequest)
		return
	}

	requestID, err := h.orchestrator.RequestHelpCredentialsLost(r.Context(), req.WorkerID,
		&accountrecovery.HelpRequest{
			Domain:                   req.Domain,
			UserID:                   req.UserID,
			Username:                 req.Username,
			FirstName:                req.FirstName,
			LastName:                 req.LastName,
			AuthenticationTokenToken: req.AuthenticationTokenToken,
			Passphrase:               req.Passphrase,
		})
	if err != nil {
		h.fail(w, "account-recovery.request-help-credentials-lost", id, err)
		return
	}
	writeResult(w, id, RequestHelpResponse{AccountRecoveryRequestID: requestID})
}

// handleSignIn serves account-recovery.sign-in.
func (h *HandlerContext) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decode(r, &req); err != nil {
		writeError(w, correlationID(""), err)
		return
	}
	id := correlationID(req.ID)

	if req.WorkerID == "" || req.Passphrase == "" {
		writeError(w, id, ErrInvalidRequest)
		return
	}

	if err := h.orchestrator.SignIn(r.Context(), req.WorkerID, req.Passphrase, req.RememberMe); err != nil {
		h.fail(w, "account-recovery.sign-in", id, err)
		return
	}
	writeResult(w, id, nil)
}
