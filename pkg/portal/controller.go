package portal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// Operation names used for metrics.
const (
	OpSignIn             = "sign_in"
	OpSignUp             = "sign_up"
	OpPasswordReset      = "password_reset"
	OpResendVerification = "resend_verification"
	OpCheckVerification  = "check_verification"
	OpSignOut            = "sign_out"
)

// Config holds the page flow settings.
type Config struct {
	LandingPath           string
	ResetReturnDelay      time.Duration
	LogoutRedirectDelay   time.Duration
	VerificationHintDelay time.Duration
	CloseRedirectDelay    time.Duration
	MinPasswordLength     int
}

// DefaultConfig returns the stock delays and landing page.
func DefaultConfig() Config {
	return Config{
		LandingPath:           "/index.html",
		ResetReturnDelay:      3 * time.Second,
		LogoutRedirectDelay:   time.Second,
		VerificationHintDelay: 3 * time.Second,
		CloseRedirectDelay:    300 * time.Millisecond,
		MinPasswordLength:     6,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LandingPath == "" {
		c.LandingPath = d.LandingPath
	}
	if c.ResetReturnDelay <= 0 {
		c.ResetReturnDelay = d.ResetReturnDelay
	}
	if c.LogoutRedirectDelay <= 0 {
		c.LogoutRedirectDelay = d.LogoutRedirectDelay
	}
	if c.VerificationHintDelay <= 0 {
		c.VerificationHintDelay = d.VerificationHintDelay
	}
	if c.CloseRedirectDelay <= 0 {
		c.CloseRedirectDelay = d.CloseRedirectDelay
	}
	if c.MinPasswordLength <= 0 {
		c.MinPasswordLength = d.MinPasswordLength
	}
	return c
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	// SendVerification requests a verification email after the account is
	// created.
	SendVerification bool
}

// Controller runs the user-initiated flows of one page. Each form has its
// own in-flight latch in the page's Latches, keyed by the page session, so
// a second submission of the same form fails fast while other forms stay
// usable.
type Controller struct {
	cfg       Config
	provider  identity.Provider
	store     profile.Store
	observer  *Observer
	presenter Presenter
	scheduler Scheduler
	page      PageContext
	logger    *slog.Logger
	metrics   Metrics
	now       func() time.Time

	latches   *Latches

	tabMu sync.Mutex
	tab   Tab
}

func (c *Controller) acquire(form Form) (func(), error) {
	return c.latches.Acquire(c.page.SessionKey, form)
}

// Tab returns the tab currently shown.
func (c *Controller) Tab() Tab {
	c.tabMu.Lock()
	defer c.tabMu.Unlock()
	return c.tab
}

func (c *Controller) showTab(t Tab) {
	c.tabMu.Lock()
	c.tab = t
	c.tabMu.Unlock()
	c.presenter.ShowTab(t, HeadlineFor(t))
}

// scheduleTab switches tabs after d, even if the user has moved on.
func (c *Controller) scheduleTab(d time.Duration, t Tab) {
	h := HeadlineFor(t)
	c.scheduler.Schedule(Transition{Kind: TransitionTab, After: d, Tab: t, Headline: &h}, func() {
		c.showTab(t)
	})
}

func (c *Controller) scheduleMessage(d time.Duration, msg Message) {
	c.scheduler.Schedule(Transition{Kind: TransitionMessage, After: d, Message: &msg}, func() {
		c.presenter.Notify(msg)
	})
}

func (c *Controller) scheduleRedirect(d time.Duration, path string) {
	c.scheduler.Schedule(Transition{Kind: TransitionRedirect, After: d, Path: path}, func() {
		c.presenter.Redirect(path)
	})
}

// fail shows a mapped error and records the outcome.
func (c *Controller) fail(op string, err error) error {
	fe := MapError(err)
	c.presenter.Notify(NewMessage(SeverityError, fe.Message))
	c.metrics.FlowCompleted(op, string(fe.Category))
	return fe
}

func (c *Controller) appendActivity(ctx context.Context, actor string, tag domain.ActivityTag, detail string) {
	err := c.store.AppendActivity(ctx, domain.ActivityRecord{
		Actor:     actor,
		Activity:  tag,
		Detail:    detail,
		Timestamp: c.now(),
		UserAgent: c.page.UserAgent,
		IP:        c.page.IP,
	})
	if err != nil {
		c.metrics.BookkeepingFailed("activity")
		c.logger.Warn("failed to append activity", "error", err, "activity", tag, "actor", actor)
	}
}

// SignIn signs the user in. An unverified account is signed straight back
// out and warned.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	release, err := c.acquire(FormSignIn)
	if err != nil {
		return err
	}
	defer release()

	email = strings.TrimSpace(email)
	if !auth.IsWellFormedEmail(email) {
		return c.fail(OpSignIn, validationError(msgInvalidEmail))
	}
	if password == "" {
		return c.fail(OpSignIn, validationError(msgPasswordRequired))
	}

	session, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		c.appendActivity(ctx, domain.Anonymous, domain.ActivityFailedLoginAttempt, email)
		return c.fail(OpSignIn, err)
	}

	if !session.EmailVerified {
		if err := c.provider.SignOut(ctx); err != nil {
			c.logger.Error("failed to sign out unverified user", "error", err, "user_id", session.UserID)
		}
		c.presenter.Notify(warning("Please verify your email address before signing in. Check your inbox for a verification link."))
		c.metrics.FlowCompleted(OpSignIn, "unverified")
		return nil
	}

	c.appendActivity(ctx, session.UserID.String(), domain.ActivitySuccessfulLogin, "")
	c.presenter.Notify(success(fmt.Sprintf("Welcome back, %s!", session.Label())))
	c.metrics.FlowCompleted(OpSignIn, "success")
	c.logger.Info("user signed in", "user_id", session.UserID)
	return nil
}

// SignUp creates an account and its profile, and optionally sends the
// verification email. A failed send only downgrades the outcome to a
// warning.
func (c *Controller) SignUp(ctx context.Context, in SignUpInput) error {
	release, err := c.acquire(FormSignUp)
	if err != nil {
		return err
	}
	defer release()

	in.Name = auth.SanitizeName(strings.TrimSpace(in.Name))
	in.Email = strings.TrimSpace(in.Email)
	if in.Password != in.ConfirmPassword {
		return c.fail(OpSignUp, validationError(msgPasswordMismatch))
	}
	if len(in.Password) < c.cfg.MinPasswordLength {
		return c.fail(OpSignUp, validationError(fmt.Sprintf(msgPasswordTooShort, c.cfg.MinPasswordLength)))
	}
	if !auth.IsWellFormedEmail(in.Email) {
		return c.fail(OpSignUp, validationError(msgInvalidEmail))
	}

	session, err := c.provider.SignUp(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return c.fail(OpSignUp, err)
	}

	seed := domain.ProfileSeed{DisplayName: in.Name, Email: in.Email, EmailVerified: session.EmailVerified}
	if _, err := c.store.CreateProfileIfAbsent(ctx, session.UserID, seed); err != nil {
		c.metrics.BookkeepingFailed("create_profile")
		c.logger.Warn("failed to create profile", "error", err, "user_id", session.UserID)
	}
	c.appendActivity(ctx, session.UserID.String(), domain.ActivityAccountCreated, "")

	outcome := "success"
	if in.SendVerification {
		if err := c.provider.SendVerificationEmail(ctx); err != nil {
			c.logger.Error("failed to send verification email", "error", err, "user_id", session.UserID)
			c.presenter.Notify(warning("Account created successfully, but verification email failed to send. You can resend it from the verification page."))
			outcome = string(DeliveryError)
		} else {
			c.presenter.Notify(success(fmt.Sprintf("Account created! Verification email sent to %s. Please check your inbox and spam folder.", in.Email)))
			c.scheduleMessage(c.cfg.VerificationHintDelay, info("If you don't receive the email within 5 minutes, try clicking \"Resend Email\" or use a different email address."))
		}
		c.showTab(TabEmailVerification)
	} else {
		name := in.Name
		if name == "" {
			name = session.Label()
		}
		c.presenter.Notify(success(fmt.Sprintf("Welcome %s! Account created successfully!", name)))
	}

	c.metrics.FlowCompleted(OpSignUp, outcome)
	c.logger.Info("account created", "user_id", session.UserID)
	return nil
}

// RequestPasswordReset sends a reset email, logs the request and returns to
// the login tab after a delay.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	release, err := c.acquire(FormReset)
	if err != nil {
		return err
	}
	defer release()

	email = strings.TrimSpace(email)
	if !auth.IsWellFormedEmail(email) {
		return c.fail(OpPasswordReset, validationError(msgInvalidEmail))
	}

	if err := c.provider.SendPasswordResetEmail(ctx, email); err != nil {
		return c.fail(OpPasswordReset, err)
	}

	c.presenter.Notify(success("Password reset email sent! Check your inbox for instructions."))

	err = c.store.AppendPasswordResetRequest(ctx, domain.PasswordResetRequest{
		Email:     auth.NormalizeEmail(email),
		Timestamp: c.now(),
		Status:    domain.PasswordResetStatusRequested,
	})
	if err != nil {
		c.metrics.BookkeepingFailed("password_reset")
		c.logger.Warn("failed to log password reset request", "error", err)
	}
	c.appendActivity(ctx, domain.Anonymous, domain.ActivityPasswordResetRequested, auth.NormalizeEmail(email))

	c.scheduleTab(c.cfg.ResetReturnDelay, TabLogin)
	c.metrics.FlowCompleted(OpPasswordReset, "success")
	return nil
}

// ResendVerification re-sends the verification email for the signed-in
// user. If the address was verified in the meantime the page is resynced
// instead.
func (c *Controller) ResendVerification(ctx context.Context) error {
	release, err := c.acquire(FormResend)
	if err != nil {
		return err
	}
	defer release()

	session, verified, err := c.reload(ctx, OpResendVerification)
	if err != nil || verified {
		return err
	}

	if err := c.provider.SendVerificationEmail(ctx); err != nil {
		return c.fail(OpResendVerification, err)
	}
	c.presenter.Notify(success("Verification email sent! Please check your inbox and spam folder."))
	c.metrics.FlowCompleted(OpResendVerification, "success")
	c.logger.Info("verification email resent", "user_id", session.UserID)
	return nil
}

// CheckVerificationStatus reloads the account and resyncs the page once the
// address is verified.
func (c *Controller) CheckVerificationStatus(ctx context.Context) error {
	release, err := c.acquire(FormResend)
	if err != nil {
		return err
	}
	defer release()

	_, verified, err := c.reload(ctx, OpCheckVerification)
	if err != nil || verified {
		return err
	}
	c.presenter.Notify(info("Your email is not verified yet. Please check your inbox for the verification link."))
	c.metrics.FlowCompleted(OpCheckVerification, "pending")
	return nil
}

// reload refreshes the session. When the address is already verified it
// resyncs the page and reports verified.
func (c *Controller) reload(ctx context.Context, op string) (*domain.Session, bool, error) {
	if c.provider.CurrentSession() == nil {
		return nil, false, c.fail(op, validationError(msgNoUserLoggedIn))
	}

	session, err := c.provider.ReloadSession(ctx)
	if err != nil {
		return nil, false, c.fail(op, err)
	}

	if session.EmailVerified {
		c.presenter.Notify(success("Email is already verified! You can now access all content."))
		c.observer.Resync(ctx, session)
		c.metrics.FlowCompleted(op, "already_verified")
		return session, true, nil
	}
	return session, false, nil
}

// SignOut logs the event, signs out and always redirects to the landing
// page after a delay.
func (c *Controller) SignOut(ctx context.Context) error {
	release, err := c.acquire(FormSignOut)
	if err != nil {
		return err
	}
	defer release()

	defer c.scheduleRedirect(c.cfg.LogoutRedirectDelay, c.cfg.LandingPath)

	if s := c.provider.CurrentSession(); s != nil {
		c.appendActivity(ctx, s.UserID.String(), domain.ActivityLogout, "")
	}

	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Error("sign out failed", "error", err)
		c.presenter.Notify(NewMessage(SeverityError, "Error signing out. Please try again."))
		fe := MapError(err)
		c.metrics.FlowCompleted(OpSignOut, string(fe.Category))
		return fe
	}

	c.presenter.Notify(success("Successfully logged out!"))
	c.metrics.FlowCompleted(OpSignOut, "success")
	return nil
}

// SwitchTab shows another tab of the login prompt.
func (c *Controller) SwitchTab(name string) error {
	t, err := ParseTab(name)
	if err != nil {
		return validationError(msgUnknownTab)
	}
	c.showTab(t)
	return nil
}

// CloseLoginPrompt leaves the gated page for the landing page.
func (c *Controller) CloseLoginPrompt() {
	c.scheduleRedirect(c.cfg.CloseRedirectDelay, c.cfg.LandingPath)
}
