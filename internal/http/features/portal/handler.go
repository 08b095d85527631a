package portal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/tendant/portfolio-gate/internal/httputil"
	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/portal"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// Config holds the page flow settings for the handler.
type Config struct {
	Flow            portal.Config
	ProtectedPaths  []string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Cookie          httputil.CookieConfig
}

// PageIDHeader lets a browser tab name its page session before it holds a
// session cookie.
const PageIDHeader = "X-Page-Id"

// Handler serves the gated page flows. Each request rebuilds the page from
// the session cookies, runs one operation and returns what the page should
// show. In-flight latches outlive the request and are shared by every page
// of the same browser session.
type Handler struct {
	logger   *slog.Logger
	identity *identity.Service
	store    profile.Store
	metrics  portal.Metrics
	config   Config
	latches  *portal.Latches
}

// NewHandler creates a new page flow handler.
func NewHandler(logger *slog.Logger, identity *identity.Service, store profile.Store, metrics portal.Metrics, config Config) *Handler {
	return &Handler{
		logger:   logger,
		identity: identity,
		store:    store,
		metrics:  metrics,
		config:   config,
		latches:  portal.NewLatches(),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Path     string `json:"path"`
}

type SignupRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirm_password"`
	SendVerification *bool  `json:"send_verification"`
	Path             string `json:"path"`
}

type ForgotRequest struct {
	Email string `json:"email"`
	Path  string `json:"path"`
}

type TabRequest struct {
	Tab  string `json:"tab"`
	Path string `json:"path"`
}

type PathRequest struct {
	Path string `json:"path"`
}

// TransitionResponse is a deferred change the browser applies after
// AfterMS milliseconds.
type TransitionResponse struct {
	Kind     portal.TransitionKind `json:"kind"`
	AfterMS  int64                 `json:"after_ms"`
	Tab      portal.Tab            `json:"tab,omitempty"`
	Headline *portal.Headline      `json:"headline,omitempty"`
	Message  *portal.Message       `json:"message,omitempty"`
	Path     string                `json:"path,omitempty"`
}

// ErrorResponse describes a failed operation.
type ErrorResponse struct {
	Category portal.Category `json:"category"`
	Message  string          `json:"message"`
}

// PageResponse is what the page should render after an operation.
type PageResponse struct {
	Tab            portal.Tab           `json:"tab"`
	Headline       portal.Headline      `json:"headline"`
	ContentVisible bool                 `json:"content_visible"`
	LoginPrompt    bool                 `json:"login_prompt"`
	Identity       portal.IdentityView  `json:"identity"`
	Messages       []portal.Message     `json:"messages"`
	Scheduled      []TransitionResponse `json:"scheduled"`
	Redirect       string               `json:"redirect,omitempty"`
	Error          *ErrorResponse       `json:"error,omitempty"`
}

// run is one request's page.
type run struct {
	page      *portal.Page
	client    *identity.Client
	hadTokens bool
	presenter *portal.RecordingPresenter
	scheduler *portal.RecordingScheduler
}

func (h *Handler) open(r *http.Request, path string) *run {
	if path == "" {
		path = r.URL.Query().Get("path")
	}
	if path == "" {
		path = "/"
	}

	client := h.identity.NewClient(identity.ClientOpts{IP: r.RemoteAddr, UserAgent: r.UserAgent()})
	access, refresh := httputil.SessionTokens(r)
	hadTokens := access != "" || refresh != ""
	if hadTokens {
		client.Restore(r.Context(), access, refresh)
	}

	presenter := portal.NewRecordingPresenter()
	scheduler := &portal.RecordingScheduler{}
	page := portal.NewPage(portal.Deps{
		Provider:  client,
		Store:     h.store,
		Presenter: presenter,
		Scheduler: scheduler,
		Logger:    h.logger,
		Metrics:   h.metrics,
		Config:    h.config.Flow,
		Latches:   h.latches,
	}, portal.PageContext{
		Path:       path,
		UserAgent:  r.UserAgent(),
		Referrer:   r.Referer(),
		IP:         r.RemoteAddr,
		SessionKey: sessionKey(r, refresh),
		Protected:  slices.Contains(h.config.ProtectedPaths, path),
	})
	return &run{page: page, client: client, hadTokens: hadTokens, presenter: presenter, scheduler: scheduler}
}

// sessionKey names the browser session behind r: the refresh token when
// there is one, else the page id header, else the client address.
func sessionKey(r *http.Request, refresh string) string {
	if refresh != "" {
		return "session:" + auth.HashToken(refresh)
	}
	if id := r.Header.Get(PageIDHeader); id != "" {
		return "page:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

// Page handles a page load. It counts as a heartbeat for a signed-in user.
// GET /v1/page?path=
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	rn := h.open(r, "")
	rn.page.Observer.Start(r.Context())
	defer rn.page.Observer.Stop()
	h.respond(w, r, rn, nil)
}

// Login handles the sign-in form.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	h.act(w, r, req.Path, func(ctx context.Context, c *portal.Controller) error {
		return c.SignIn(ctx, req.Email, req.Password)
	})
}

// Signup handles the sign-up form.
// POST /v1/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	sendVerification := true
	if req.SendVerification != nil {
		sendVerification = *req.SendVerification
	}
	h.act(w, r, req.Path, func(ctx context.Context, c *portal.Controller) error {
		return c.SignUp(ctx, portal.SignUpInput{
			Name:             req.Name,
			Email:            req.Email,
			Password:         req.Password,
			ConfirmPassword:  req.ConfirmPassword,
			SendVerification: sendVerification,
		})
	})
}

// Forgot handles the password reset request form.
// POST /v1/auth/forgot
func (h *Handler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	h.act(w, r, req.Path, func(ctx context.Context, c *portal.Controller) error {
		return c.RequestPasswordReset(ctx, req.Email)
	})
}

// ResendVerification re-sends the verification email.
// POST /v1/auth/resend-verification
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	path, ok := pathFromBody(w, r)
	if !ok {
		return
	}
	h.act(w, r, path, func(ctx context.Context, c *portal.Controller) error {
		return c.ResendVerification(ctx)
	})
}

// CheckVerification reloads the account to see whether the address was
// verified in the meantime.
// POST /v1/auth/check-verification
func (h *Handler) CheckVerification(w http.ResponseWriter, r *http.Request) {
	path, ok := pathFromBody(w, r)
	if !ok {
		return
	}
	h.act(w, r, path, func(ctx context.Context, c *portal.Controller) error {
		return c.CheckVerificationStatus(ctx)
	})
}

// Logout signs the user out.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	path, ok := pathFromBody(w, r)
	if !ok {
		return
	}
	h.act(w, r, path, func(ctx context.Context, c *portal.Controller) error {
		return c.SignOut(ctx)
	})
}

// Tab switches the login prompt tab.
// POST /v1/auth/tab
func (h *Handler) Tab(w http.ResponseWriter, r *http.Request) {
	var req TabRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	h.act(w, r, req.Path, func(_ context.Context, c *portal.Controller) error {
		return c.SwitchTab(req.Tab)
	})
}

// Close dismisses the login prompt.
// POST /v1/auth/close
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	path, ok := pathFromBody(w, r)
	if !ok {
		return
	}
	h.act(w, r, path, func(_ context.Context, c *portal.Controller) error {
		c.CloseLoginPrompt()
		return nil
	})
}

// act resumes the page without a heartbeat and runs one operation.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, path string, op func(context.Context, *portal.Controller) error) {
	rn := h.open(r, path)
	rn.page.Observer.Resume(r.Context())
	defer rn.page.Observer.Stop()

	err := op(r.Context(), rn.page.Controller)
	h.respond(w, r, rn, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, rn *run, err error) {
	snap := rn.presenter.Snapshot()
	tab := snap.Tab
	headline := snap.Headline
	if tab == "" {
		tab = rn.page.Controller.Tab()
		headline = portal.HeadlineFor(tab)
	}

	resp := PageResponse{
		Tab:            tab,
		Headline:       headline,
		ContentVisible: snap.ContentVisible,
		LoginPrompt:    snap.LoginPrompt,
		Identity:       snap.Identity,
		Messages:       snap.Messages,
		Scheduled:      transitions(rn.scheduler.Transitions()),
		Redirect:       snap.Redirect,
	}
	if resp.Messages == nil {
		resp.Messages = []portal.Message{}
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		if errors.Is(err, portal.ErrRequestInFlight) {
			resp.Error = &ErrorResponse{Category: portal.ConflictError, Message: err.Error()}
		} else {
			fe := portal.MapError(err)
			resp.Error = &ErrorResponse{Category: fe.Category, Message: fe.Message}
		}
	}

	if pair := rn.client.Tokens(); rn.hadTokens || pair.RefreshToken != "" {
		httputil.WriteSessionCookies(w, pair, h.config.AccessTokenTTL, h.config.RefreshTokenTTL, h.config.Cookie)
	}
	httputil.JSON(w, status, resp)
}

func statusFor(err error) int {
	if errors.Is(err, portal.ErrRequestInFlight) {
		return http.StatusConflict
	}
	switch portal.MapError(err).Category {
	case portal.ValidationError:
		return http.StatusBadRequest
	case portal.CredentialError:
		return http.StatusUnauthorized
	case portal.ConflictError:
		return http.StatusConflict
	case portal.RateLimitError:
		return http.StatusTooManyRequests
	case portal.DeliveryError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func transitions(in []portal.Transition) []TransitionResponse {
	out := make([]TransitionResponse, 0, len(in))
	for _, t := range in {
		out = append(out, TransitionResponse{
			Kind:     t.Kind,
			AfterMS:  t.After.Milliseconds(),
			Tab:      t.Tab,
			Headline: t.Headline,
			Message:  t.Message,
			Path:     t.Path,
		})
	}
	return out
}

// pathFromBody reads an optional {"path": ...} body. It returns false after
// writing an error response.
func pathFromBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", true
	}
	var req PathRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return "", false
	}
	return req.Path, true
}
