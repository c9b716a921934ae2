package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/trip-planner/internal/auth"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler manages registration, password login, the GitHub OAuth flow
// and the current user's profile.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister       → create an account and start a session
//   - HandleLogin          → check credentials and start a session
//   - HandleLogout         → clear the session cookie
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → exchange the code, find or create the user, start a session
//   - HandleMe / HandleUpdateMe → read and edit the signed-in user
//
// github is nil when OAuth is not configured; the server then leaves the
// /auth/github routes unmounted.
type AuthHandler struct {
	auth          *service.AuthService
	tokens        *auth.TokenService
	github        *auth.GitHubProvider
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	tokens *auth.TokenService,
	github *auth.GitHubProvider,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:          authService,
		tokens:        tokens,
		github:        github,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates an account and signs the new user in.
//
// HTTP: POST /api/register
// REQUEST BODY: {"username": "alice", "password": "...", "email": "a@example.com", "name": "Alice"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokens, h.secureCookies)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleLogin signs in with username and password.
//
// HTTP: POST /api/login
//
// Unknown usernames and wrong passwords get the same 401 so the endpoint
// does not reveal which accounts exist.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokens, h.secureCookies)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/logout
//
// Sessions are stateless JWTs, so logging out only deletes the client-side
// cookie. The token itself stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived HttpOnly cookie and into the
// authorization URL. The callback only proceeds when both match.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. Find the linked account or create one
//  4. Set the session cookie
//  5. Redirect to the app home page
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	// --- Step 1: Validate CSRF state ---
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "invalid OAuth state"})
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "invalid OAuth state"})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	// --- Step 2: Exchange code for GitHub user profile ---
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "missing OAuth code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: "authentication failed"})
		return
	}

	// --- Step 3: Find or create the local account ---
	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// --- Step 4 & 5: Session cookie, then back to the app ---
	auth.SetSessionCookie(w, result.Token, h.tokens, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the signed-in user's profile.
//
// HTTP: GET /api/user
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateMe edits email, display name or password.
//
// HTTP: PATCH /api/user
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch model.UserPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
