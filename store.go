package authstate

import (
	"context"
	"sync"
)

// Snapshot is the session state visible to consumers. It is replaced
// wholesale on every mutation and safe to copy.
type Snapshot struct {
	Authenticated bool
	Principal     *Principal
	Loading       bool
	// PendingVerification marks the holding state between a deferred
	// standard login and the emailed confirmation. Not authenticated,
	// not loading.
	PendingVerification bool
}

// RoleOf returns the authenticated principal's role, or "" when anonymous
func RoleOf(snap Snapshot) Role {
	if !snap.Authenticated || snap.Principal == nil {
		return ""
	}
	return snap.Principal.Role
}

// HasAnyRole checks membership of the principal's role in the given set.
// An empty set always yields false; wildcard semantics belong to the guard.
func HasAnyRole(snap Snapshot, roles ...Role) bool {
	role := RoleOf(snap)
	if role == "" {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Subscriber observes snapshot replacements. Called synchronously after
// each mutation, in mutation order, outside the store lock: a subscriber
// may read the store or call Decide from its callback.
type Subscriber func(Snapshot)

// Store is the single source of truth for "who is logged in", reconciled
// with persisted credential storage. It is created once at process start
// and injected into every consumer; all mutation funnels through Hydrate,
// Establish, Clear and AwaitVerification.
type Store struct {
	mu          sync.Mutex
	snap        Snapshot
	generation  uint64
	domain      SessionDomain
	active      SessionDomain
	client      IdentityClient
	credentials CredentialStore
	inspector   TokenInspector
	logger      Logger
	subscribers []Subscriber
}

// NewStore returns a Store in its initial state: loading, unauthenticated.
// Hydration is bound to DomainAdmin unless WithDomain says otherwise:
// startup only ever trusts the already-confirmed admin slot.
func NewStore(client IdentityClient, credentials CredentialStore) *Store {
	return &Store{
		snap:        Snapshot{Loading: true},
		domain:      DomainAdmin,
		active:      DomainAdmin,
		client:      client,
		credentials: credentials,
		logger:      defLogger{},
	}
}

// WithLogger sets the store logger
func (s *Store) WithLogger(logger Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithDomain binds the store's hydration to a session domain
func (s *Store) WithDomain(domain SessionDomain) *Store {
	if domain.Valid() {
		s.domain = domain
		s.active = domain
	}
	return s
}

// WithTokenInspector sets a local credential pre-check used during
// hydration to evict clearly expired tokens without a network round trip.
func (s *Store) WithTokenInspector(inspector TokenInspector) *Store {
	s.inspector = inspector
	return s
}

// Snapshot returns the current session state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Domain returns the session domain hydration is bound to
func (s *Store) Domain() SessionDomain {
	return s.domain
}

// Credential returns the live bearer token, or an error when the session's
// slot holds none. Used by API wrappers that need the raw credential.
func (s *Store) Credential(ctx context.Context) (Credential, error) {
	s.mu.Lock()
	domain := s.active
	s.mu.Unlock()

	token, err := s.credentials.Get(ctx, domain)
	if err != nil {
		return Credential{}, err
	}
	if token == "" {
		return Credential{}, ErrCredentialMissing
	}
	return Credential{Token: token, Domain: domain}, nil
}

// Subscribe registers a synchronous observer of snapshot replacements
func (s *Store) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Hydrate reconstructs session state from the persisted credential slot.
// Runs once at startup; every failure mode settles into the unauthenticated
// state and is never surfaced as a hard error. Safe to race with Clear: a
// result that resolves after the session was superseded is discarded.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	gen := s.generation
	domain := s.domain
	notify := s.replaceLocked(Snapshot{Loading: true})
	s.mu.Unlock()
	notify()

	token, err := s.credentials.Get(ctx, domain)
	if err != nil || token == "" {
		if err != nil && !IsCredentialMissing(err) {
			s.logger.Error("Hydrate credential read failed", "error", err)
		}
		s.settle(gen, domain, Snapshot{})
		return
	}

	if s.inspector != nil {
		if err := s.inspector.Inspect(token); err != nil {
			if IsTokenExpiredError(err) {
				s.logger.Info("Hydrate evicting expired credential")
			} else {
				s.logger.Info("Hydrate evicting rejected credential", "error", err)
			}
			s.evict(ctx, domain)
			s.settle(gen, domain, Snapshot{})
			return
		}
	}

	principal, err := s.client.Profile(ctx, domain, token)
	if err != nil || principal == nil {
		if err != nil {
			s.logger.Info("Hydrate profile fetch failed, degrading to logged out", "error", err)
		}
		s.evict(ctx, domain)
		s.settle(gen, domain, Snapshot{})
		return
	}

	s.settle(gen, domain, Snapshot{Authenticated: true, Principal: principal})
}

// Establish stores the credential in its slot and replaces session state.
// Called after a direct login or a successful login-verification exchange.
// The storage write is best-effort: a failed write keeps the in-memory
// session alive for the process and is only logged.
func (s *Store) Establish(ctx context.Context, principal *Principal, credential Credential) {
	if principal == nil || credential.IsZero() {
		s.logger.Error("Establish called with incomplete session material")
		return
	}

	if !credential.Domain.Valid() {
		credential.Domain = s.domain
	}

	if err := s.credentials.Set(ctx, credential.Domain, credential.Token); err != nil {
		s.logger.Error("Establish credential write failed", "slot", credential.Domain.Slot(), "error", err)
	}

	s.mu.Lock()
	s.generation++
	s.active = credential.Domain
	notify := s.replaceLocked(Snapshot{Authenticated: true, Principal: principal})
	s.mu.Unlock()
	notify()
}

// Clear evicts the live session's credential slot and resets to the
// pristine unauthenticated state. Idempotent; callable with no credential
// present. Only the active slot is touched, the other domain keeps its
// session untouched.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	domain := s.active
	s.active = s.domain
	s.mu.Unlock()

	s.evict(ctx, domain)

	s.mu.Lock()
	notify := s.replaceLocked(Snapshot{})
	s.mu.Unlock()
	notify()
}

// AwaitVerification enters the third holding state: a deferred standard
// login dispatched an email and the session is waiting on possession proof.
func (s *Store) AwaitVerification() {
	s.mu.Lock()
	s.generation++
	notify := s.replaceLocked(Snapshot{PendingVerification: true})
	s.mu.Unlock()
	notify()
}

// settle applies a hydration result unless a Clear or Establish superseded
// it while the network call was in flight.
func (s *Store) settle(gen uint64, domain SessionDomain, next Snapshot) {
	s.mu.Lock()

	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("Hydrate result superseded, discarding")
		return
	}

	if next.Authenticated {
		s.active = domain
	}

	notify := s.replaceLocked(next)
	s.mu.Unlock()
	notify()
}

// replaceLocked swaps the snapshot and returns the subscriber notification,
// which the caller runs after releasing the lock so callbacks can read the
// store without deadlocking.
func (s *Store) replaceLocked(next Snapshot) func() {
	// invariant: authenticated iff a principal is present
	if next.Principal == nil {
		next.Authenticated = false
	}
	if !next.Authenticated {
		next.Principal = nil
	}

	s.snap = next

	subscribers := make([]Subscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)

	return func() {
		for _, fn := range subscribers {
			fn(next)
		}
	}
}

func (s *Store) evict(ctx context.Context, domain SessionDomain) {
	if err := s.credentials.Delete(ctx, domain); err != nil && !IsCredentialMissing(err) {
		s.logger.Error("Credential eviction failed", "slot", domain.Slot(), "error", err)
	}
}
