// internal/application/session/role_resolver.go
package session

import (
	"context"
	"log"
	"sync"

	"littleshop/internal/domain/principal"
	"littleshop/internal/domain/profile"
	"littleshop/internal/state"
)

// RoleResolver maps the active principal to its access role, reactively.
//
// Resolution: watch the profile keyed by principal id; if it exists the
// stored role wins; if absent, write a default profile (merge, never
// overwriting unrelated fields) and report "user" immediately without
// waiting for the write. Resolve resets the published role to the default
// the instant the principal changes, so no stale role leaks forward.
type RoleResolver struct {
	profiles profile.Repository
	roles    *state.Store[profile.Role]

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    int
}

func NewRoleResolver(profiles profile.Repository) *RoleResolver {
	return &RoleResolver{
		profiles: profiles,
		roles:    state.New(profile.DefaultRole),
	}
}

// Roles is the observable role state.
func (r *RoleResolver) Roles() *state.Store[profile.Role] {
	return r.roles
}

// Current returns the last resolved role.
func (r *RoleResolver) Current() profile.Role {
	return r.roles.Get()
}

// Resolve re-runs role resolution for p, tearing down any previous
// profile watch first. Passing a zero principal just resets to the
// default role.
func (r *RoleResolver) Resolve(ctx context.Context, p principal.Principal) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	// Reset before the new profile arrives.
	r.roles.Set(profile.DefaultRole)

	if p.None() {
		return
	}

	watchCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	var createOnce sync.Once
	err := r.profiles.Watch(watchCtx, p.ID, func(snap profile.Snapshot) {
		if !r.isCurrent(gen) {
			return
		}
		if snap.Err != nil {
			// Keep the last resolved role on read failure.
			log.Printf("[session.role] profile watch error principal=%s: %v", p.ID, snap.Err)
			return
		}
		if snap.Profile == nil {
			// Lazy self-creation: default role, at most one write per
			// resolution. The role was already published as "user", so
			// nothing waits on this write to confirm.
			createOnce.Do(func() {
				prof, err := profile.New(p.ID, p.Email)
				if err != nil {
					log.Printf("[session.role] bad principal id for profile create: %v", err)
					return
				}
				if err := r.profiles.EnsureDefault(watchCtx, prof); err != nil {
					log.Printf("[session.role] profile create failed principal=%s: %v", p.ID, err)
				}
			})
			return
		}
		r.publishIfCurrent(gen, snap.Profile.Role)
	})
	if err != nil {
		log.Printf("[session.role] profile watch start failed principal=%s: %v", p.ID, err)
	}
}

// Stop tears down the current watch and resets the role.
func (r *RoleResolver) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
	r.mu.Unlock()
	r.roles.Set(profile.DefaultRole)
}

func (r *RoleResolver) isCurrent(gen int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen == gen
}

// publishIfCurrent checks the generation and publishes in the same
// critical section. A bare check-then-Set would let a Resolve for the
// next principal slip in between and the stale callback would then
// overwrite the freshly reset role.
func (r *RoleResolver) publishIfCurrent(gen int, role profile.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return
	}
	r.roles.Set(role)
}
