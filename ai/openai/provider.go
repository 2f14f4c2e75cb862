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


package openai

import (
	"log/slog"

	"github.com/chorusqa/chorus/ai"
)

// Provider implements ai.OracleProvider using OpenAI-compatible services.
type Provider struct {
	config *ai.Config
	oracle *Oracle
	logger *slog.Logger
}

// NewProvider creates a new oracle provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.OracleProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.OracleProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	oracle, err := newOracle(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		oracle: oracle,
		logger: slog.Default().With("component", "openai-provider"),
	}, nil
}

// Oracle returns the scoring oracle service.
func (p *Provider) Oracle() ai.Oracle {
	return p.oracle
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying client doesn't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI oracle provider")
	return nil
}
