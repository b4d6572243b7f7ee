// ABOUTME: Text-generation service routing prompts to named providers
// ABOUTME: Responses are cached by (provider, prompt hash) and calls are rate limited

package llm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"golang.org/x/time/rate"

	coreerrors "rssfilter-api/core/errors"
	"rssfilter-api/core/interfaces"
)

// Service implements interfaces.TextGenerator over a registry of
// providers. A generated response is cached under
// llm:<provider>:<md5(prompt)>, so an identical prompt to the same
// provider within the cache TTL never reaches the network.
type Service struct {
	deps            interfaces.Dependencies
	providers       map[string]Provider
	defaultProvider string
	limiter         *rate.Limiter
}

// NewService creates a text-generation service. The limiter is shared
// across all providers; pass nil to disable rate limiting.
func NewService(deps interfaces.Dependencies, defaultProvider string, limiter *rate.Limiter) *Service {
	return &Service{
		deps:            deps,
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
		limiter:         limiter,
	}
}

// Register adds a provider to the registry, replacing any provider
// already registered under the same name.
func (s *Service) Register(p Provider) {
	s.providers[p.Name()] = p
}

// Providers returns the names of all registered providers.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// Generate produces text for a prompt using the named provider, or the
// default provider when name is empty.
func (s *Service) Generate(ctx context.Context, prompt, provider string) (string, error) {
	if prompt == "" {
		return "", &coreerrors.ProviderError{Provider: provider, Reason: "prompt cannot be empty"}
	}

	if provider == "" {
		provider = s.defaultProvider
	}

	p, ok := s.providers[provider]
	if !ok {
		return "", &coreerrors.ProviderError{Provider: provider, Reason: "unknown provider"}
	}

	key := cacheKey(provider, prompt)
	if s.deps.Cache != nil {
		if data, err := s.deps.Cache.Get(ctx, key); err == nil {
			return string(data), nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", &coreerrors.ProviderError{Provider: provider, Reason: err.Error()}
		}
	}

	text, err := p.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, key, []byte(text), 0); err != nil {
			s.deps.Logger.Warn("failed to cache generated text", map[string]interface{}{
				"provider": provider,
				"error":    err.Error(),
			})
		}
	}

	return text, nil
}

// cacheKey builds the response cache key for a provider and prompt
func cacheKey(provider, prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return fmt.Sprintf("llm:%s:%s", provider, hex.EncodeToString(sum[:]))
}
