package recruitment

import (
	"context"
	"fmt"
)

// AuthHelper signs in through the login form.
type AuthHelper struct {
	page
}

// Login signs in with the configured credentials.
func (a *AuthHelper) Login(ctx context.Context) error {
	return a.LoginAs(ctx, a.cfg.Credentials.Username, a.cfg.Credentials.Password)
}

// LoginAs signs in and blocks until the dashboard header is visible. When
// the form or the dashboard never shows up the error satisfies
// errors.Is(err, driver.ErrTimeout).
func (a *AuthHelper) LoginAs(ctx context.Context, username, password string) (err error) {
	defer a.step("login")(&err)

	if err := a.typeInto(ctx, usernameField, username); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}
	if err := a.typeNow(ctx, passwordField, password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := a.click(ctx, submitButton); err != nil {
		return fmt.Errorf("failed to click submit: %w", err)
	}
	if _, err := a.visible(ctx, dashboardHeader); err != nil {
		return fmt.Errorf("login did not reach the dashboard: %w", err)
	}
	return nil
}
