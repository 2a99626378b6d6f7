// internal/adapters/out/firestore/profile_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"littleshop/internal/domain/profile"
)

// ProfileRepositoryFS implements profile.Repository using Firestore.
//
// Document design:
// - path: artifacts/{appId}/users/{principalId}/profile/data
// - the principal id in the path is the source of truth
// - fields: role, email
//
// List walks the "profile" collection group and recovers the principal
// id from the document path.
type ProfileRepositoryFS struct {
	Client *firestore.Client
	AppID  string
}

func NewProfileRepositoryFS(client *firestore.Client, appID string) *ProfileRepositoryFS {
	return &ProfileRepositoryFS{Client: client, AppID: appID}
}

func (r *ProfileRepositoryFS) doc(principalID string) *firestore.DocumentRef {
	return r.Client.
		Collection("artifacts").Doc(r.AppID).
		Collection("users").Doc(principalID).
		Collection("profile").Doc("data")
}

// GetByPrincipalID returns (nil, nil) if not found (nil policy).
func (r *ProfileRepositoryFS) GetByPrincipalID(ctx context.Context, principalID string) (*profile.Profile, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("profile_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return nil, errors.New("profile_repository_fs: principalID is empty")
	}

	snap, err := r.doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	return profileFromSnapshot(pid, snap), nil
}

// EnsureDefault merges {role, email}; any unrelated fields on the
// document are left untouched. Calling it for an existing profile
// re-merges the same role, so it is safe to race with concurrent
// clients of the same principal.
func (r *ProfileRepositoryFS) EnsureDefault(ctx context.Context, p *profile.Profile) error {
	if r == nil || r.Client == nil {
		return errors.New("profile_repository_fs: firestore client is nil")
	}
	if p == nil {
		return errors.New("profile_repository_fs: profile is nil")
	}

	pid := strings.TrimSpace(p.PrincipalID)
	if pid == "" {
		return errors.New("profile_repository_fs: principalID is empty")
	}

	_, err := r.doc(pid).Set(ctx, map[string]any{
		"role":  string(p.Role),
		"email": p.Email,
	}, firestore.MergeAll)
	return err
}

// UpdateRole merges only the role field.
func (r *ProfileRepositoryFS) UpdateRole(ctx context.Context, principalID string, role profile.Role) error {
	if r == nil || r.Client == nil {
		return errors.New("profile_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return errors.New("profile_repository_fs: principalID is empty")
	}

	_, err := r.doc(pid).Set(ctx, map[string]any{
		"role": string(role),
	}, firestore.MergeAll)
	return err
}

// List returns every stored profile under this app id.
func (r *ProfileRepositoryFS) List(ctx context.Context) ([]profile.Profile, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("profile_repository_fs: firestore client is nil")
	}

	prefix := "artifacts/" + r.AppID + "/users/"

	out := []profile.Profile{}
	it := r.Client.CollectionGroup("profile").Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}

		// The group query spans every app id; keep only ours and take
		// the principal id from the users/{id} path segment.
		path := snap.Ref.Path
		idx := strings.Index(path, prefix)
		if idx < 0 {
			continue
		}
		rest := path[idx+len(prefix):]
		pid, _, ok := strings.Cut(rest, "/")
		if !ok || pid == "" {
			continue
		}

		if p := profileFromSnapshot(pid, snap); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// Watch streams the profile document until ctx is cancelled. Absence is
// delivered as Profile==nil so callers can lazily create the default.
func (r *ProfileRepositoryFS) Watch(ctx context.Context, principalID string, fn func(profile.Snapshot)) error {
	if r == nil || r.Client == nil {
		return errors.New("profile_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return errors.New("profile_repository_fs: principalID is empty")
	}
	if fn == nil {
		return errors.New("profile_repository_fs: watch callback is nil")
	}

	it := r.doc(pid).Snapshots(ctx)
	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				fn(profile.Snapshot{Err: err})
				return
			}
			if !snap.Exists() {
				fn(profile.Snapshot{Profile: nil})
				continue
			}
			fn(profile.Snapshot{Profile: profileFromSnapshot(pid, snap)})
		}
	}()
	return nil
}

// profileFromSnapshot parses document data tolerantly: an unknown or
// missing role degrades to the default role instead of failing.
func profileFromSnapshot(principalID string, snap *firestore.DocumentSnapshot) *profile.Profile {
	if snap == nil {
		return nil
	}

	out := &profile.Profile{PrincipalID: principalID, Role: profile.DefaultRole}

	raw := snap.Data()
	if raw == nil {
		return out
	}

	out.Role = profile.ParseRole(asString(raw["role"]))
	out.Email = strings.TrimSpace(asString(raw["email"]))
	return out
}
