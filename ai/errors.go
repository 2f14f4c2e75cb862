// Copyright 2025 Chorus Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies oracle failures for retry decisions.
type FailureKind int

const (
	// FailureOther covers failures with no more specific classification.
	FailureOther FailureKind = iota
	// FailureRateLimited means the oracle rejected the call due to rate limiting.
	FailureRateLimited
	// FailureInvalidResponse means the oracle answered but the payload was
	// malformed or failed schema validation.
	FailureInvalidResponse
	// FailureTimeout means the request-level timeout was exceeded.
	FailureTimeout
)

// String returns the wire name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureInvalidResponse:
		return "invalid_response"
	case FailureTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// OracleError is a typed oracle failure. Stages match on Kind at retry
// boundaries instead of parsing error strings.
type OracleError struct {
	Kind FailureKind
	Err  error
}

// Error implements the error interface.
func (e *OracleError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oracle failure: %s", e.Kind)
	}
	return fmt.Sprintf("oracle failure (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OracleError) Unwrap() error {
	return e.Err
}

// NewOracleError wraps err with a failure kind.
func NewOracleError(kind FailureKind, err error) *OracleError {
	return &OracleError{Kind: kind, Err: err}
}

// Kind extracts the failure kind from an error chain.
// Non-oracle errors map to FailureOther.
func Kind(err error) FailureKind {
	var oe *OracleError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return FailureOther
}

// Retryable reports whether an oracle failure is worth retrying.
// Every oracle failure qualifies, including malformed payloads, which are
// often recoverable on a second attempt. Cancellation of the caller's
// context is a cooperative early-exit signal, not a retryable failure.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
