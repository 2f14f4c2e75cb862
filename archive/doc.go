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


// Package archive imports exported social-media archives into storage.
//
// Archives arrive as newline-delimited JSON: one file of posts and an
// optional file of pre-computed discussion groups per source. Malformed
// or invalid lines are skipped with a warning; storage failures abort
// the import.
package archive
