package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/auth"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

// RegisterInput is the body of POST /api/register.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// AuthResult bundles the user and the freshly issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService owns registration, login and profile changes.
//
//	AuthHandler → AuthService → UserRepository
//	                          ↘ TokenService, PasswordService
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// errBadCredentials is deliberately the same for an unknown username and a
// wrong password.
var errBadCredentials = apperror.Unauthenticated("invalid username or password")

// Register creates a password account and signs it in. A taken username or
// email is a Conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	var errs fieldErrors
	errs.required("username", in.Username, "username")
	if in.Username != "" {
		if n := len([]rune(in.Username)); n < MinUsernameLength || n > MaxUsernameLength {
			errs.add("username", "username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
		}
	}
	validatePassword(&errs, in.Password)
	validateEmail(&errs, in.Email)
	errs.maxLen("name", in.Name, "name", MaxNameLength)
	if err := errs.err(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Username: in.Username,
		Password: hash,
		Email:    in.Email,
		Name:     in.Name,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", in.Username, err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID), slog.String("username", user.Username))
	return s.issue(user)
}

// Login checks a username and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("username", user.Username))
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issue(user)
}

// LoginOrRegisterGitHub signs in the account linked to the GitHub profile,
// creating it on first sign-in. A GitHub login that clashes with an existing
// username gets the GitHub id appended.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up GitHub user %d: %w", ghUser.ID, err)
	}

	email := ghUser.Email
	if email == "" {
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}
	githubID := ghUser.ID
	user = &model.User{
		Username: ghUser.Login,
		Email:    email,
		Name:     ghUser.Name,
		GitHubID: &githubID,
	}

	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		if _, lookupErr := s.users.GetUserByUsername(ctx, ghUser.Login); lookupErr == nil {
			user.Username = fmt.Sprintf("%s-%d", ghUser.Login, ghUser.ID)
			err = s.users.CreateUser(ctx, user)
		}
	}
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating GitHub user %d: %w", ghUser.ID, err)
	}

	s.logger.Info("user registered via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)
	return s.issue(user)
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthenticated("no user in session")
	}
	return s.users.GetUserByID(ctx, id)
}

// UpdateProfile applies patch to the caller's own account. A new password is
// hashed before it is stored.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	if patch.IsEmpty() {
		return nil, apperror.ValidationFailed("", "no fields to update")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var errs fieldErrors
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		validateEmail(&errs, email)
		user.Email = email
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		errs.maxLen("name", name, "name", MaxNameLength)
		user.Name = name
	}
	if patch.Password != nil {
		validatePassword(&errs, *patch.Password)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if patch.Password != nil {
		hash, err := s.passwords.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("service/auth: %w", err)
		}
		user.Password = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: updating user %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
