package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/usecase"
)

const appURL = "https://app.example.com"

type oauthFixture struct {
	states   *MockStateStore
	vault    *MockVault
	profiles *MockProfileRepo
	facebook *MockProvider
	uc       usecase.IOAuthUsecase
}

func newOAuthFixture() *oauthFixture {
	f := &oauthFixture{
		states:   new(MockStateStore),
		vault:    new(MockVault),
		profiles: new(MockProfileRepo),
		facebook: &MockProvider{name: model.PlatformFacebook},
	}
	f.uc = usecase.NewOAuthUsecase([]repository.IOAuthProvider{f.facebook}, f.states, f.vault, f.profiles, appURL, 10)
	return f
}

func TestOAuthUsecase_GetAuthURL(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := newOAuthFixture().uc.GetAuthURL(ctx, "facebook", "", "u1")
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})
	t.Run("other user", func(t *testing.T) {
		f := newOAuthFixture()
		_, err := f.uc.GetAuthURL(ctx, "facebook", "u1", "u2")
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
		f.states.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
	t.Run("unknown provider", func(t *testing.T) {
		_, err := newOAuthFixture().uc.GetAuthURL(ctx, "myspace", "u1", "u1")
		assert.ErrorIs(t, err, domainerrors.ErrUnsupported)
	})
	t.Run("stores a ten minute state", func(t *testing.T) {
		f := newOAuthFixture()
		var stored *model.OAuthState
		f.states.On("Create", mock.Anything, mock.MatchedBy(func(s *model.OAuthState) bool {
			stored = s
			return s.UserID == "u1" && s.Provider == "facebook" && len(s.State) == 64 &&
				s.ExpiresAt.Sub(s.CreatedAt) == 10*time.Minute
		})).Return(nil)

		authURL, err := f.uc.GetAuthURL(ctx, "facebook", "u1", "u1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, strings.HasSuffix(authURL, "state="+stored.State))
	})
}

func TestOAuthUsecase_CallbackRejectsBeforeExchange(t *testing.T) {
	ctx := context.Background()
	state := &model.OAuthState{State: "s1", UserID: "u1", Provider: "facebook"}
	tests := []struct {
		name    string
		params  usecase.CallbackParams
		consume func(*MockStateStore)
		want    string
	}{
		{"missing code", usecase.CallbackParams{State: "s1"}, nil, "error=missing_params"},
		{"missing state", usecase.CallbackParams{Code: "c"}, nil, "error=missing_params"},
		{"user denied", usecase.CallbackParams{Error: "access_denied", State: "s1"}, nil, "error=access_denied"},
		{"unknown state", usecase.CallbackParams{Code: "c", State: "forged"}, func(s *MockStateStore) {
			s.On("Consume", mock.Anything, "forged", "facebook").Return(nil, repository.ErrStateNotFound)
		}, "error=invalid_state"},
		{"expired state", usecase.CallbackParams{Code: "c", State: "s1"}, func(s *MockStateStore) {
			s.On("Consume", mock.Anything, "s1", "facebook").Return(state, repository.ErrStateExpired)
		}, "error=state_expired"},
		{"store failure fails closed", usecase.CallbackParams{Code: "c", State: "s1"}, func(s *MockStateStore) {
			s.On("Consume", mock.Anything, "s1", "facebook").Return(nil, errors.New("connection reset"))
		}, "error=invalid_state"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newOAuthFixture()
			if tc.consume != nil {
				tc.consume(f.states)
			}
			got := f.uc.HandleCallback(ctx, "facebook", tc.params)
			assert.Equal(t, appURL+"/profile?"+tc.want, got)
			f.facebook.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything)
			f.vault.AssertNotCalled(t, "UpsertToken", mock.Anything, mock.Anything)
		})
	}
}

func TestOAuthUsecase_CallbackReplayFails(t *testing.T) {
	f := newOAuthFixture()
	f.states.On("Consume", mock.Anything, "s1", "facebook").Return(&model.OAuthState{State: "s1", UserID: "u1", Provider: "facebook"}, nil).Once()
	f.states.On("Consume", mock.Anything, "s1", "facebook").Return(nil, repository.ErrStateNotFound).Once()
	f.facebook.On("Connect", mock.Anything, "c").Return([]*model.OAuthToken{{Platform: "facebook", AccessToken: "pt", AccountID: "page-1"}}, nil).Once()
	f.profiles.On("GetByUserID", mock.Anything, "u1").Return(&model.Profile{UserID: "u1"}, nil)
	f.vault.On("UpsertToken", mock.Anything, mock.Anything).Return(nil)
	f.profiles.On("SetConnection", mock.Anything, "u1", mock.Anything).Return(nil)

	params := usecase.CallbackParams{Code: "c", State: "s1"}
	assert.Equal(t, appURL+"/profile?connected=facebook", f.uc.HandleCallback(context.Background(), "facebook", params))
	assert.Equal(t, appURL+"/profile?error=invalid_state", f.uc.HandleCallback(context.Background(), "facebook", params))
	f.facebook.AssertNumberOfCalls(t, "Connect", 1)
}

func TestOAuthUsecase_CallbackStoresEveryToken(t *testing.T) {
	f := newOAuthFixture()
	f.states.On("Consume", mock.Anything, "s1", "facebook").Return(&model.OAuthState{State: "s1", UserID: "u1", Provider: "facebook"}, nil)
	f.facebook.On("Connect", mock.Anything, "code-1").Return([]*model.OAuthToken{
		{Platform: model.PlatformFacebook, AccessToken: "page-token", AccountID: "page-1", AccountName: "Realty"},
		{Platform: model.PlatformInstagram, AccessToken: "page-token", AccountID: "ig-9"},
	}, nil)
	f.profiles.On("GetByUserID", mock.Anything, "u1").Return(&model.Profile{UserID: "u1"}, nil)
	f.vault.On("UpsertToken", mock.Anything, mock.MatchedBy(func(t *model.OAuthToken) bool { return t.UserID == "u1" })).Return(nil).Twice()
	f.profiles.On("SetConnection", mock.Anything, "u1", model.Connection{Platform: "facebook", Connected: true, AccountID: "page-1"}).Return(nil)
	f.profiles.On("SetConnection", mock.Anything, "u1", model.Connection{Platform: "instagram", Connected: true, AccountID: "ig-9"}).Return(nil)

	got := f.uc.HandleCallback(context.Background(), "facebook", usecase.CallbackParams{Code: "code-1", State: "s1"})
	assert.Equal(t, appURL+"/profile?connected=facebook", got)
	f.vault.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestOAuthUsecase_CallbackExchangeFailure(t *testing.T) {
	f := newOAuthFixture()
	f.states.On("Consume", mock.Anything, "s1", "facebook").Return(&model.OAuthState{State: "s1", UserID: "u1", Provider: "facebook"}, nil)
	f.facebook.On("Connect", mock.Anything, "bad").Return(nil, errors.New("oauth2: invalid_grant"))

	got := f.uc.HandleCallback(context.Background(), "facebook", usecase.CallbackParams{Code: "bad", State: "s1"})
	assert.Equal(t, appURL+"/profile?error=token_exchange_failed", got)
	assert.NotContains(t, got, "invalid_grant")
	f.vault.AssertNotCalled(t, "UpsertToken", mock.Anything, mock.Anything)
}

func TestOAuthUsecase_PurgeExpiredStates(t *testing.T) {
	f := newOAuthFixture()
	f.states.On("PurgeExpired", mock.Anything).Return(int64(4), nil)
	n, err := f.uc.PurgeExpiredStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
