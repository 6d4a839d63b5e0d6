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

// Result status values of a port command.
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Message is the response envelope of a port command. ID correlates the
// response with the originating request; Status is SUCCESS or ERROR.
type Message struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Body   interface{} `json:"body,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// CommandRequest carries the fields shared by every port command. ID is an
// opaque correlation id chosen by the caller; one is generated when absent.
// WorkerID identifies the tab/port partition owning the wizard state.
type CommandRequest struct {
	ID       string `json:"id,omitempty"`
	WorkerID string `json:"worker_id"`
}

// ContinueRequest resumes an in-flight wizard from a persisted stub.
type ContinueRequest struct {
	CommandRequest
	UserID string `json:"user_id"`
	Domain string `json:"domain"`
}

// VerifyPassphraseRequest checks the attempt passphrase without committing.
type VerifyPassphraseRequest struct {
	CommandRequest
	Passphrase string `json:"passphrase"`
}

// RecoverAccountRequest executes the escrow unwrap and finalization.
type RecoverAccountRequest struct {
	CommandRequest
	Passphrase string `json:"passphrase"`
}

// RequestHelpRequest aborts the current stub and initiates a new request.
type RequestHelpRequest struct {
	CommandRequest
	Domain                   string `json:"domain"`
	UserID                   string `json:"user_id"`
	Username                 string `json:"username"`
	FirstName                string `json:"first_name"`
	LastName                 string `json:"last_name"`
	AuthenticationTokenToken string `json:"authentication_token_token"`
	Passphrase               string `json:"passphrase"`
}

// RequestHelpResponse returns the server-assigned request id.
type RequestHelpResponse struct {
	AccountRecoveryRequestID string `json:"account_recovery_request_id"`
}

// SignInRequest authenticates the recovered user.
type SignInRequest struct {
	CommandRequest
	Passphrase string `json:"passphrase"`
	RememberMe bool   `json:"remember_me"`
}
