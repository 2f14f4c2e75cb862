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


// Package ai provides abstractions for the scoring oracle used by the
// query pipeline.
//
// The pipeline treats every LLM call as an opaque request/response
// collaborator: a structured prompt goes in, structured JSON or a typed
// failure comes out. This package defines the Oracle interface covering
// the pipeline's six task kinds (relevance classification, continuous
// scoring, synthesis, translation, topic matching, insight extraction),
// the value types exchanged with it, and the failure taxonomy that drives
// retry decisions.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewOracle) return
// INTERFACE types to enforce abstraction and prevent accidental coupling
// to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.OracleProvider
//
// Test utility constructors (mock.NewMockOracle) return CONCRETE types to
// enable test assertions and behavior injection via the mock's public
// fields (ClassifyFunc, CallCount, Reset, etc.).
//
// # Failure Taxonomy
//
// Every failed oracle call is wrapped in an *OracleError carrying a
// FailureKind (rate_limited, invalid_response, timeout, other). Stages
// consult Retryable/Kind at retry boundaries instead of inspecting error
// strings; schema-invalid responses are failures like any other and are
// eligible for retry.
package ai
