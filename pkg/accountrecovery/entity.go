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

package accountrecovery

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

// requestSchema constrains the shape of a fetched account recovery request.
// Semantic checks (id match, response cardinality) live in the fetcher; the
// schema only rejects structurally malformed server payloads.
const requestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "user_id"],
	"properties": {
		"id": {"type": "string", "format": "uuid"},
		"user_id": {"type": "string", "format": "uuid"},
		"status": {"type": "string"},
		"account_recovery_private_key": {
			"type": ["object", "null"],
			"required": ["data"],
			"properties": {
				"id": {"type": "string"},
				"data": {"type": "string", "minLength": 1}
			}
		},
		"account_recovery_responses": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["data"],
				"properties": {
					"id": {"type": "string"},
					"status": {"type": "string"},
					"data": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

// responseDataSchema constrains the decrypted plaintext of an approved
// response envelope.
const responseDataSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["type", "domain", "private_key_user_id", "private_key_secret"],
	"properties": {
		"type": {"type": "string", "const": "account-recovery-private-key-password-decrypted-data"},
		"version": {"type": "string"},
		"domain": {"type": "string", "minLength": 1},
		"private_key_user_id": {"type": "string", "format": "uuid"},
		"private_key_fingerprint": {"type": "string"},
		"private_key_secret": {"type": "string", "minLength": 1}
	}
}`

var (
	schemaOnce         sync.Once
	compiledRequest    *gojsonschema.Schema
	compiledResponse   *gojsonschema.Schema
	schemaCompileError error
)

func compileSchemas() {
	compiledRequest, schemaCompileError = gojsonschema.NewSchema(
		gojsonschema.NewStringLoader(requestSchema))
	if schemaCompileError != nil {
		return
	}
	compiledResponse, schemaCompileError = gojsonschema.NewSchema(
		gojsonschema.NewStringLoader(responseDataSchema))
}

// validateAgainst runs a document through a compiled schema and converts
// violations into a single ValidationError naming the entity.
func validateAgainst(schema *gojsonschema.Schema, entity string, document interface{}) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("accountrecovery: failed to encode %s for validation: %w", entity, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("accountrecovery: failed to validate %s: %w", entity, err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		details = append(details, violation.String())
	}
	return types.NewValidationError(fmt.Sprintf(
		"Could not validate entity %s. %s", entity, strings.Join(details, " ")))
}

// validateRequestDTO checks a fetched request against the request schema.
func validateRequestDTO(document interface{}) error {
	schemaOnce.Do(compileSchemas)
	if schemaCompileError != nil {
		return schemaCompileError
	}
	return validateAgainst(compiledRequest, "AccountRecoveryRequest", document)
}

// validateResponseData checks decrypted response plaintext against the
// response data schema.
func validateResponseData(document interface{}) error {
	schemaOnce.Do(compileSchemas)
	if schemaCompileError != nil {
		return schemaCompileError
	}
	return validateAgainst(compiledResponse, "AccountRecoveryResponseData", document)
}
