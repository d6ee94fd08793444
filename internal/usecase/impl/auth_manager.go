// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fitlog/config"
	"fitlog/internal/cache"
	deliverycontext "fitlog/internal/delivery/context"
	"fitlog/internal/domain/entity"
	"fitlog/internal/domain/repository"
	"fitlog/internal/domain/service"
	"fitlog/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authManager implements the AuthUsecase interface. It is the only component
// allowed to mutate the session/profile pair, and it does so by full
// replacement under a single mutex so observers always read a consistent
// snapshot.
//
// Ordering between asynchronous continuations is handled with a generation
// counter: every adoption or clearing of an identity bumps it, and a profile
// fetched on behalf of an older generation is discarded instead of
// overwriting state set by a newer event.
type authManager struct {
	identity   service.IdentityService
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	logger     *slog.Logger

	profileFetchTimeout time.Duration
	bootstrapGuard      time.Duration

	mu         sync.Mutex
	state      entity.AuthState
	generation uint64
	subs       map[int]func(entity.AuthState)
	nextSub    int
}

// NewAuthManager is the constructor for authManager.
func NewAuthManager(
	cfg *config.Config,
	identity service.IdentityService,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authManager{
		identity:            identity,
		txManager:           txManager,
		cacheStore:          cacheStore,
		logger:              logger,
		profileFetchTimeout: cfg.Session.ProfileFetchTimeout,
		bootstrapGuard:      cfg.Session.BootstrapGuard,
		state:               entity.AuthState{Phase: entity.AuthPhaseUninitialized},
		subs:                make(map[int]func(entity.AuthState)),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the manager's logger.
func (m *authManager) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, m.logger)
}

// Bootstrap resolves the initial session and profile exactly once.
func (m *authManager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	if m.state.Phase != entity.AuthPhaseUninitialized {
		m.mu.Unlock()

		return
	}
	m.generation++
	gen := m.generation
	m.stateLocked(entity.AuthState{Phase: entity.AuthPhaseBootstrapping, Loading: true})
	m.mu.Unlock()
	m.notify()

	// Independent guard: even if the identity call never settles, loading
	// must drop within the bound so the UI cannot wedge on "loading".
	guard := time.AfterFunc(m.bootstrapGuard, func() {
		if m.forceLoadingOff(gen) {
			m.logger.Warn("bootstrap guard elapsed, releasing loading state",
				slog.Duration("guard", m.bootstrapGuard))
		}
	})
	defer guard.Stop()

	m.log(ctx).Debug("bootstrapping session")

	session, err := m.identity.GetSession(ctx)
	if err != nil {
		// Never leave a half-authenticated local state behind: clear
		// locally and ask the provider to drop whatever it still holds.
		m.log(ctx).Error("session bootstrap failed, forcing sign-out", slog.Any("error", err))
		if soErr := m.identity.SignOut(ctx); soErr != nil {
			m.log(ctx).Warn("defensive sign-out failed", slog.Any("error", soErr))
		}
		m.commit(gen, entity.AuthState{Phase: entity.AuthPhaseReady})

		return
	}

	if session == nil {
		m.log(ctx).Debug("no persisted session")
		m.commit(gen, entity.AuthState{Phase: entity.AuthPhaseReady})

		return
	}

	m.log(ctx).Debug("session restored, fetching profile", slog.Any("user_id", session.UserID))
	m.commit(gen, entity.AuthState{Phase: entity.AuthPhaseBootstrapping, Session: session, Loading: true})

	profile, err := m.resolveProfile(ctx, session.UserID)
	if err != nil {
		m.log(ctx).Error("profile unavailable after bootstrap", slog.Any("error", err), slog.Any("user_id", session.UserID))
	}
	m.commit(gen, entity.AuthState{Phase: entity.AuthPhaseReady, Session: session, Profile: profile})
}

// HandleAuthEvent feeds one identity-stream event into the state machine.
func (m *authManager) HandleAuthEvent(ctx context.Context, event entity.AuthEvent) {
	m.mu.Lock()

	current := m.state.UserID()
	if event.Session != nil && current != uuid.Nil && event.Session.UserID == current {
		// Same identity, fresher tokens (e.g. a refresh). Adopt the new
		// session object but skip the profile refetch.
		st := m.state
		st.Session = event.Session
		m.stateLocked(st)
		m.mu.Unlock()
		m.notify()

		m.log(ctx).Debug("duplicate identity event ignored", slog.Any("user_id", current), slog.String("kind", string(event.Kind)))

		return
	}

	m.generation++
	gen := m.generation

	if event.Session == nil {
		m.stateLocked(entity.AuthState{Phase: entity.AuthPhaseReady})
		m.mu.Unlock()
		m.notify()
		m.cacheStore.Clear()

		m.log(ctx).Info("signed out by identity event")

		return
	}

	m.stateLocked(entity.AuthState{Phase: entity.AuthPhaseReady, Session: event.Session, Loading: true})
	m.mu.Unlock()
	m.notify()

	// All cached reads are viewer-scoped; a new identity invalidates them all.
	m.cacheStore.Clear()

	m.log(ctx).Info("identity changed, fetching profile", slog.Any("user_id", event.Session.UserID), slog.String("kind", string(event.Kind)))

	profile, err := m.resolveProfile(ctx, event.Session.UserID)
	if err != nil {
		m.log(ctx).Error("profile unavailable after identity change", slog.Any("error", err), slog.Any("user_id", event.Session.UserID))
	}
	m.commit(gen, entity.AuthState{Phase: entity.AuthPhaseReady, Session: event.Session, Profile: profile})
}

// Snapshot returns the current state.
func (m *authManager) Snapshot() entity.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// CurrentUserID implements usecase.ViewerProvider.
func (m *authManager) CurrentUserID() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Session == nil {
		return uuid.Nil, false
	}

	return m.state.Session.UserID, true
}

// Subscribe registers an observer notified after every state replacement.
func (m *authManager) Subscribe(fn func(entity.AuthState)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// RefreshProfile re-fetches the tracked user's profile. No-op while
// unauthenticated.
func (m *authManager) RefreshProfile(ctx context.Context) error {
	m.mu.Lock()
	session := m.state.Session
	gen := m.generation
	st := m.state
	m.mu.Unlock()

	if session == nil {
		return nil
	}

	profile, err := m.resolveProfile(ctx, session.UserID)
	if err != nil {
		return errors.Wrap(err, "failed to refresh profile")
	}

	st.Profile = profile
	st.Loading = false
	m.commit(gen, st)

	return nil
}

// SignIn performs the password grant. Session adoption happens through the
// identity event the provider emits on success.
func (m *authManager) SignIn(ctx context.Context, input usecase.SignInInput) error {
	if _, err := m.identity.SignInWithPassword(ctx, input.Email, input.Password); err != nil {
		m.log(ctx).Warn("sign-in failed", slog.Any("error", err))

		return errors.Wrap(err, "sign-in failed")
	}

	return nil
}

// SignUp registers a new identity.
func (m *authManager) SignUp(ctx context.Context, input usecase.SignUpInput) error {
	if _, err := m.identity.SignUp(ctx, input.Email, input.Password); err != nil {
		m.log(ctx).Warn("sign-up failed", slog.Any("error", err))

		return errors.Wrap(err, "sign-up failed")
	}

	return nil
}

// SignOut revokes the session remotely, then clears local state regardless of
// the remote outcome. The user must never appear signed in after requesting
// sign-out, even on network failure.
func (m *authManager) SignOut(ctx context.Context) error {
	if err := m.identity.SignOut(ctx); err != nil {
		m.log(ctx).Warn("remote sign-out failed, clearing local state anyway", slog.Any("error", err))
	}

	m.mu.Lock()
	m.generation++
	m.stateLocked(entity.AuthState{Phase: entity.AuthPhaseReady})
	m.mu.Unlock()
	m.notify()
	m.cacheStore.Clear()

	m.log(ctx).Info("signed out")

	return nil
}

// resolveProfile reads the profile within the configured bound,
// auto-provisioning the default row when none exists. A read that does not
// settle in time is abandoned and reported as unavailable; its eventual
// settlement is ignored.
func (m *authManager) resolveProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, m.profileFetchTimeout)
	defer cancel()

	type outcome struct {
		profile *entity.Profile
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		var profile *entity.Profile

		err := m.txManager.Execute(fetchCtx, func(repoFactory repository.RepositoryFactory) error {
			profileRepo := repoFactory.ProfileRepo()

			found, err := profileRepo.FindByID(fetchCtx, userID)
			if err != nil {
				if errors.Is(err, repository.ErrProfileNotFound) {
					// Cold session: provision the default row once and
					// adopt it.
					created := entity.NewDefaultProfile(userID)
					if err := profileRepo.Create(fetchCtx, created); err != nil {
						return errors.Wrap(err, "failed to auto-provision profile")
					}
					profile = created

					return nil
				}

				return errors.Wrap(err, "failed to find profile")
			}
			profile = found

			return nil
		})

		done <- outcome{profile: profile, err: err}
	}()

	select {
	case <-fetchCtx.Done():
		m.log(ctx).Warn("profile fetch exceeded bound, treating as unavailable",
			slog.Any("user_id", userID), slog.Duration("timeout", m.profileFetchTimeout))

		return nil, errors.Wrap(fetchCtx.Err(), "profile fetch timed out")
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}

		return out.profile, nil
	}
}

// commit replaces the state only when no newer identity has been adopted
// since gen was captured. Stale continuations are dropped here.
func (m *authManager) commit(gen uint64, next entity.AuthState) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		m.logger.Debug("dropping stale state commit")

		return
	}
	m.stateLocked(next)
	m.mu.Unlock()
	m.notify()
}

// forceLoadingOff drops the loading flag for the given generation. Reports
// whether anything changed.
func (m *authManager) forceLoadingOff(gen uint64) bool {
	m.mu.Lock()
	if gen != m.generation || !m.state.Loading {
		m.mu.Unlock()

		return false
	}
	st := m.state
	st.Loading = false
	st.Phase = entity.AuthPhaseReady
	m.stateLocked(st)
	m.mu.Unlock()
	m.notify()

	return true
}

// stateLocked replaces the state. Caller holds the mutex.
func (m *authManager) stateLocked(next entity.AuthState) {
	m.state = next
}

// notify invokes every subscriber with the current snapshot, outside the lock
// so observers may call back into the manager.
func (m *authManager) notify() {
	m.mu.Lock()
	st := m.state
	fns := make([]func(entity.AuthState), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
