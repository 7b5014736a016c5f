// Package authview is the login/register screen.
package authview

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"cinestream/internal/movieapi"
	"cinestream/pkg/logger"
)

const (
	InvalidCredentials = "Invalid credentials! Try again."
	MissingFields      = "Username and password are required."
)

type Mode int

const (
	Login Mode = iota
	Register
)

func (m Mode) String() string {
	if m == Register {
		return "register"
	}
	return "login"
}

// ParseMode maps a query value to a mode; anything unknown is Login.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), "register") {
		return Register
	}
	return Login
}

type API interface {
	Login(ctx context.Context, creds movieapi.Credentials) (*movieapi.LoginResponse, error)
	Register(ctx context.Context, creds movieapi.Credentials) (*movieapi.User, error)
}

// CredentialStore persists the backend token once login succeeded.
type CredentialStore interface {
	Store(cred movieapi.Credential) error
}

type Result struct {
	Authenticated bool
	Alert         string
}

type View struct {
	Mode Mode

	api      API
	log      zerolog.Logger
	validate *validator.Validate
}

func New(api API, mode Mode, log zerolog.Logger) *View {
	return &View{
		Mode:     mode,
		api:      api,
		log:      log.With().Str("component", "authview").Logger(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *View) Toggle() Mode {
	if v.Mode == Login {
		v.Mode = Register
	} else {
		v.Mode = Login
	}
	return v.Mode
}

// Submit runs login or register for the current mode.
func (v *View) Submit(ctx context.Context, store CredentialStore, creds movieapi.Credentials) Result {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := v.validate.Struct(creds); err != nil {
		return Result{Alert: MissingFields}
	}
	if v.Mode == Register {
		return v.register(ctx, store, creds)
	}
	return v.login(ctx, store, creds)
}

func (v *View) login(ctx context.Context, store CredentialStore, creds movieapi.Credentials) Result {
	resp, err := v.api.Login(ctx, creds)
	if err != nil && !errors.Is(err, movieapi.ErrRequestFailed) {
		v.log.Error().Err(err).Str("username", creds.Username).Msg("login error")
		return Result{}
	}
	if err != nil || resp == nil || strings.TrimSpace(resp.Token) == "" {
		v.log.Info().Str("username", creds.Username).Msg("login rejected")
		return Result{Alert: InvalidCredentials}
	}
	cred := movieapi.Credential(resp.Token)
	if err := store.Store(cred); err != nil {
		v.log.Error().Err(err).Msg("persist credential")
		return Result{}
	}
	v.log.Info().Str("username", creds.Username).Str("token", logger.RedactToken(resp.Token)).Msg("logged in")
	return Result{Authenticated: true}
}

// register chains into login with the same credentials. A token in the
// register response is ignored.
func (v *View) register(ctx context.Context, store CredentialStore, creds movieapi.Credentials) Result {
	user, err := v.api.Register(ctx, creds)
	if err != nil || user == nil {
		v.log.Warn().Err(err).Str("username", creds.Username).Msg("register failed")
		return Result{}
	}
	v.log.Info().Str("username", creds.Username).Int("user_id", user.ID).Msg("registered")
	return v.login(ctx, store, creds)
}
