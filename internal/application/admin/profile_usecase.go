// internal/application/admin/profile_usecase.go
package admin

import (
	"context"
	"log"
	"strings"

	"littleshop/internal/domain/profile"
)

// RoleChangeNotifier is the outbound port for role-change notification
// mail. Best-effort: failures are logged, never surfaced to the caller.
type RoleChangeNotifier interface {
	NotifyRoleChange(ctx context.Context, email string, role profile.Role) error
}

// ProfileAdminUsecase manages profile roles. super_admin only.
type ProfileAdminUsecase struct {
	profiles profile.Repository
	notifier RoleChangeNotifier
}

func NewProfileAdminUsecase(profiles profile.Repository, notifier RoleChangeNotifier) *ProfileAdminUsecase {
	return &ProfileAdminUsecase{profiles: profiles, notifier: notifier}
}

// ListProfiles returns every stored profile.
func (uc *ProfileAdminUsecase) ListProfiles(ctx context.Context, actor profile.Role) ([]profile.Profile, error) {
	if !actor.IsSuperAdmin() {
		return nil, ErrPermissionDenied
	}
	return uc.profiles.List(ctx)
}

// UpdateRole sets another principal's role. Only the role field is
// merged; the profile document is never overwritten wholesale.
func (uc *ProfileAdminUsecase) UpdateRole(ctx context.Context, actor profile.Role, principalID string, newRole profile.Role) error {
	if !actor.IsSuperAdmin() {
		return ErrPermissionDenied
	}

	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return ErrInvalidArgument
	}
	switch newRole {
	case profile.RoleUser, profile.RoleAdmin, profile.RoleSuperAdmin:
	default:
		return ErrInvalidArgument
	}

	if err := uc.profiles.UpdateRole(ctx, pid, newRole); err != nil {
		return err
	}

	uc.notifyRoleChange(ctx, pid, newRole)
	return nil
}

func (uc *ProfileAdminUsecase) notifyRoleChange(ctx context.Context, principalID string, role profile.Role) {
	if uc.notifier == nil {
		return
	}
	prof, err := uc.profiles.GetByPrincipalID(ctx, principalID)
	if err != nil || prof == nil || strings.TrimSpace(prof.Email) == "" {
		return
	}
	if err := uc.notifier.NotifyRoleChange(ctx, prof.Email, role); err != nil {
		log.Printf("[admin.profile] role-change mail failed principal=%s: %v", principalID, err)
	}
}
