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


// Package openai implements the scoring oracle against OpenAI-compatible
// chat APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// Every task runs as a single chat completion in JSON mode at temperature
// zero for judgement tasks and the configured temperature for generative
// ones. Responses are fence-stripped, passed through a lightweight JSON
// repair, unmarshaled, and validated against the task schema before
// anything downstream trusts them; any of those steps failing yields an
// *ai.OracleError with kind invalid_response so the caller's retry layer
// can take another attempt.
package openai
