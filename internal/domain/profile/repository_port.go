// internal/domain/profile/repository_port.go
package profile

import "context"

// Snapshot is one delivery from a profile watch.
// Profile == nil means the document does not exist.
type Snapshot struct {
	Profile *Profile
	Err     error
}

// Repository is the outbound port for profile records.
//
// Nil policy: GetByPrincipalID returns (nil, nil) when no profile
// document exists for the principal.
type Repository interface {
	GetByPrincipalID(ctx context.Context, principalID string) (*Profile, error)

	// EnsureDefault writes {role, email} with merge semantics; unrelated
	// fields on the document are left untouched.
	EnsureDefault(ctx context.Context, p *Profile) error

	// UpdateRole merges only the role field.
	UpdateRole(ctx context.Context, principalID string, role Role) error

	// List returns every stored profile (admin use).
	List(ctx context.Context) ([]Profile, error)

	// Watch delivers a snapshot for every change to the principal's
	// profile document until ctx is cancelled. Delivery order follows
	// the store's emission order for this subscription.
	Watch(ctx context.Context, principalID string, fn func(Snapshot)) error
}
