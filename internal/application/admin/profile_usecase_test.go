package admin

import (
	"context"
	"errors"
	"testing"

	"littleshop/internal/domain/profile"
)

type fakeProfileRepo struct {
	stored      map[string]profile.Profile
	roleUpdates []struct {
		principalID string
		role        profile.Role
	}
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{stored: map[string]profile.Profile{}}
}

func (f *fakeProfileRepo) GetByPrincipalID(_ context.Context, id string) (*profile.Profile, error) {
	p, ok := f.stored[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProfileRepo) EnsureDefault(_ context.Context, p *profile.Profile) error {
	f.stored[p.PrincipalID] = *p
	return nil
}

func (f *fakeProfileRepo) UpdateRole(_ context.Context, id string, role profile.Role) error {
	f.roleUpdates = append(f.roleUpdates, struct {
		principalID string
		role        profile.Role
	}{id, role})
	if p, ok := f.stored[id]; ok {
		p.Role = role
		f.stored[id] = p
	}
	return nil
}

func (f *fakeProfileRepo) List(context.Context) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(f.stored))
	for _, p := range f.stored {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfileRepo) Watch(context.Context, string, func(profile.Snapshot)) error {
	return nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) NotifyRoleChange(_ context.Context, email string, _ profile.Role) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

func TestListProfilesSuperAdminOnly(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := NewProfileAdminUsecase(repo, nil)

	if _, err := uc.ListProfiles(context.Background(), profile.RoleAdmin); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("admin must not list profiles, got %v", err)
	}
	if _, err := uc.ListProfiles(context.Background(), profile.RoleSuperAdmin); err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
}

func TestUpdateRoleSuperAdminOnly(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := NewProfileAdminUsecase(repo, nil)

	err := uc.UpdateRole(context.Background(), profile.RoleAdmin, "u1", profile.RoleAdmin)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(repo.roleUpdates) != 0 {
		t.Fatalf("no write expected on denial")
	}
}

func TestUpdateRoleValidatesRole(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := NewProfileAdminUsecase(repo, nil)

	err := uc.UpdateRole(context.Background(), profile.RoleSuperAdmin, "u1", profile.Role("owner"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown role, got %v", err)
	}
}

func TestUpdateRoleWritesAndNotifies(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.stored["u1"] = profile.Profile{PrincipalID: "u1", Role: profile.RoleUser, Email: "u1@example.com"}
	notifier := &fakeNotifier{}
	uc := NewProfileAdminUsecase(repo, notifier)

	if err := uc.UpdateRole(context.Background(), profile.RoleSuperAdmin, "u1", profile.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	if len(repo.roleUpdates) != 1 || repo.roleUpdates[0].role != profile.RoleAdmin {
		t.Fatalf("unexpected role updates: %+v", repo.roleUpdates)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != "u1@example.com" {
		t.Fatalf("expected a notification mail, got %v", notifier.sent)
	}
}

func TestNotifyFailureDoesNotFailUpdate(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.stored["u1"] = profile.Profile{PrincipalID: "u1", Role: profile.RoleUser, Email: "u1@example.com"}
	uc := NewProfileAdminUsecase(repo, &fakeNotifier{err: errors.New("smtp down")})

	if err := uc.UpdateRole(context.Background(), profile.RoleSuperAdmin, "u1", profile.RoleAdmin); err != nil {
		t.Fatalf("mail failure must not fail the role update: %v", err)
	}
}
