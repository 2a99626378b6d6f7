// internal/adapters/out/mail/role_change_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	"littleshop/internal/domain/profile"
)

// RoleChangeMailer notifies a user by mail when an administrator
// changes their role. It implements the notifier port of the profile
// admin usecase.
type RoleChangeMailer struct {
	client      EmailClient
	fromAddress string
}

func NewRoleChangeMailer(client EmailClient, fromAddress string) *RoleChangeMailer {
	return &RoleChangeMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
	}
}

func (m *RoleChangeMailer) NotifyRoleChange(ctx context.Context, email string, role profile.Role) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("role change mailer is not configured")
	}

	to := strings.TrimSpace(email)
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	subject := "Your Little Shop account role was updated"
	body := fmt.Sprintf(
		`Hello,

An administrator changed the role on your Little Shop account.

New role: %s

If you did not expect this change, please contact support.
`, string(role))

	return m.client.Send(ctx, m.fromAddress, to, subject, body)
}
