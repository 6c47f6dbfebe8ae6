package usecase

import (
	"context"
	"net/url"
	"time"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"
	"propgen/infrastructure/utils"

	"github.com/pkg/errors"
)

const stateTTL = 10 * time.Minute

// Callback failure reasons carried back to the profile page in ?error=
const (
	ReasonMissingParams  = "missing_params"
	ReasonAccessDenied   = "access_denied"
	ReasonInvalidState   = "invalid_state"
	ReasonStateExpired   = "state_expired"
	ReasonExchangeFailed = "token_exchange_failed"
	ReasonSaveFailed     = "save_failed"
	ReasonUnsupported    = "unsupported_provider"
)

type CallbackParams struct {
	Code  string
	State string
	Error string
}

type IOAuthUsecase interface {
	GetAuthURL(ctx context.Context, provider, callerID, userID string) (string, error)
	// HandleCallback finishes the flow and returns where to send the browser
	HandleCallback(ctx context.Context, provider string, params CallbackParams) string
	PurgeExpiredStates(ctx context.Context) (int64, error)
}

type oauthUsecase struct {
	providers    map[string]repository.IOAuthProvider
	states       repository.IOAuthStateStore
	vault        repository.ITokenVault
	profiles     repository.IProfile
	appURL       string
	defaultLimit int
	now          func() time.Time
}

func NewOAuthUsecase(providers []repository.IOAuthProvider, states repository.IOAuthStateStore, vault repository.ITokenVault,
	profiles repository.IProfile, appURL string, defaultLimit int) IOAuthUsecase {
	m := make(map[string]repository.IOAuthProvider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &oauthUsecase{
		providers: m, states: states, vault: vault, profiles: profiles,
		appURL: appURL, defaultLimit: defaultLimit,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (u *oauthUsecase) GetAuthURL(ctx context.Context, provider, callerID, userID string) (string, error) {
	if callerID == "" {
		return "", domainerrors.ErrUnauthorized
	}
	if userID == "" {
		userID = callerID
	}
	if userID != callerID {
		return "", domainerrors.ErrForbidden.WithDetails("user_id does not match the signed-in user")
	}
	p, ok := u.providers[provider]
	if !ok {
		return "", domainerrors.ErrUnsupported.WithDetails(provider)
	}
	token, err := utils.RandomToken(32)
	if err != nil {
		return "", errors.Wrap(err, "generate oauth state")
	}
	now := u.now()
	if err := u.states.Create(ctx, &model.OAuthState{
		State:     token,
		UserID:    userID,
		Provider:  provider,
		ExpiresAt: now.Add(stateTTL),
		CreatedAt: now,
	}); err != nil {
		return "", err
	}
	return p.AuthCodeURL(token), nil
}

func (u *oauthUsecase) HandleCallback(ctx context.Context, provider string, params CallbackParams) string {
	lg := logger.GetLogger().WithField("provider", provider)
	p, ok := u.providers[provider]
	if !ok {
		return u.redirect("error", ReasonUnsupported)
	}
	if params.Error != "" {
		lg.WithField("error", params.Error).Warn("provider denied authorization")
		return u.redirect("error", ReasonAccessDenied)
	}
	if params.Code == "" || params.State == "" {
		return u.redirect("error", ReasonMissingParams)
	}

	state, err := u.states.Consume(ctx, params.State, provider)
	switch {
	case errors.Is(err, repository.ErrStateExpired):
		return u.redirect("error", ReasonStateExpired)
	case err != nil:
		if !errors.Is(err, repository.ErrStateNotFound) {
			lg.WithField("error", err).Error("oauth state lookup failed")
		}
		return u.redirect("error", ReasonInvalidState)
	}
	lg = lg.WithField("user_id", state.UserID)

	tokens, err := p.Connect(ctx, params.Code)
	if err != nil {
		lg.WithField("error", err).Error("oauth token exchange failed")
		return u.redirect("error", ReasonExchangeFailed)
	}
	if _, err := ensureProfile(ctx, u.profiles, state.UserID, u.defaultLimit); err != nil {
		lg.WithField("error", err).Error("profile lookup failed")
		return u.redirect("error", ReasonSaveFailed)
	}
	for _, t := range tokens {
		t.UserID = state.UserID
		if err := u.vault.UpsertToken(ctx, t); err != nil {
			lg.WithField("platform", t.Platform).WithField("error", err).Error("storing oauth token failed")
			return u.redirect("error", ReasonSaveFailed)
		}
		if err := u.profiles.SetConnection(ctx, state.UserID, model.Connection{
			Platform: t.Platform, Connected: true, AccountID: t.ProfileAccount(),
		}); err != nil {
			lg.WithField("platform", t.Platform).WithField("error", err).Error("updating profile connection failed")
			return u.redirect("error", ReasonSaveFailed)
		}
	}
	lg.WithField("accounts", len(tokens)).Info("oauth connection stored")
	return u.redirect("connected", provider)
}

func (u *oauthUsecase) PurgeExpiredStates(ctx context.Context) (int64, error) {
	return u.states.PurgeExpired(ctx)
}

func (u *oauthUsecase) redirect(key, value string) string {
	return u.appURL + "/profile?" + url.Values{key: {value}}.Encode()
}
