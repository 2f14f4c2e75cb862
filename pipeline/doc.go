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


// Package pipeline implements the multi-stage query pipeline: relevance
// classification, secondary re-ranking, one-hop context expansion,
// answer synthesis, language validation, and discussion matching, run
// per source by a sequential stage runner and fanned out across sources
// by the orchestrator.
//
// Stage-local failures degrade output quality (fewer classified items,
// no medium selections, no translation, no discussion matches) but
// never abort a run. Only a source-level fatal error yields a failed
// per-source result, and only cancellation of the caller's context
// aborts everything.
package pipeline
