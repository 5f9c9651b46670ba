package did

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Resolver resolves a single DID method to a document. Implementations talk
// to method-specific infrastructure (a universal resolver endpoint, an
// Ethereum registry contract) and must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, did string) (*Document, error)
}

type cacheEntry struct {
	doc      *Document
	cachedAt time.Time
}

// MultiResolver dispatches resolution to registered per-method resolvers and
// caches resolved documents for a bounded TTL.
//
// Eviction is lazy: entries past the TTL are treated as misses on the next
// access, there is no background sweep. Concurrent resolutions of the same
// DID may both miss and both invoke the underlying resolver; resolver calls
// are idempotent so this is bounded duplicate work, not a correctness hazard.
type MultiResolver struct {
	resolvers map[string]Resolver
	ttl       time.Duration
	validate  bool

	mu    sync.RWMutex // guards cache
	cache map[string]cacheEntry
}

// Option configures a MultiResolver.
type Option func(*MultiResolver)

// WithDocumentValidation enables JSON-Schema validation of every freshly
// resolved document before it is cached.
func WithDocumentValidation() Option {
	return func(m *MultiResolver) {
		m.validate = true
	}
}

// NewMultiResolver creates a resolver registry with the given cache TTL.
func NewMultiResolver(cacheTTL time.Duration, opts ...Option) *MultiResolver {
	m := &MultiResolver{
		resolvers: make(map[string]Resolver),
		cache:     make(map[string]cacheEntry),
		ttl:       cacheTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a resolver for a DID method. Register all resolvers before
// serving; it is not safe to call concurrently with Resolve.
func (m *MultiResolver) Register(method string, resolver Resolver) {
	m.resolvers[method] = resolver
}

// Resolve returns the document for a DID, serving from cache when a fresh
// entry exists. A cache hit never invokes the underlying resolver.
func (m *MultiResolver) Resolve(ctx context.Context, did string) (*Document, error) {
	m.mu.RLock()
	entry, ok := m.cache[did]
	m.mu.RUnlock()
	if ok && time.Since(entry.cachedAt) < m.ttl {
		return entry.doc, nil
	}

	method, err := Method(did)
	if err != nil {
		return nil, err
	}

	resolver, ok := m.resolvers[method]
	if !ok {
		return nil, fmt.Errorf("%w: no resolver for method %q", ErrResolutionFailed, method)
	}

	doc, err := resolver.Resolve(ctx, did)
	if err != nil {
		if errors.Is(err, ErrResolutionFailed) || errors.Is(err, ErrInvalidFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	if m.validate {
		if err := ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.cache[did] = cacheEntry{doc: doc, cachedAt: time.Now()}
	m.mu.Unlock()

	return doc, nil
}

// ClearCache drops all cached documents, forcing re-resolution on next
// access. Used after key rotation and in tests.
func (m *MultiResolver) ClearCache() {
	m.mu.Lock()
	m.cache = make(map[string]cacheEntry)
	m.mu.Unlock()
}
