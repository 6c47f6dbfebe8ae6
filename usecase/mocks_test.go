package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"propgen/domain/model"
)

type MockProfileRepo struct{ mock.Mock }

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepo) Update(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepo) IncrementUsage(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockProfileRepo) SetConnection(ctx context.Context, userID string, conn model.Connection) error {
	return m.Called(ctx, userID, conn).Error(0)
}

type MockPropertyRepo struct{ mock.Mock }

func (m *MockPropertyRepo) Create(ctx context.Context, p *model.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepo) GetByID(ctx context.Context, id, userID string) (*model.Property, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Property), args.Error(1)
}

func (m *MockPropertyRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Property, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*model.Property), args.Error(1)
}

func (m *MockPropertyRepo) UpdateContent(ctx context.Context, id, userID string, captions map[string]string, hashtags []string) error {
	return m.Called(ctx, id, userID, captions, hashtags).Error(0)
}

func (m *MockPropertyRepo) MergeGeneratedImages(ctx context.Context, id, userID string, images map[string]string) error {
	return m.Called(ctx, id, userID, images).Error(0)
}

func (m *MockPropertyRepo) RecordPublish(ctx context.Context, id, userID, platform string, state model.PublishState) error {
	return m.Called(ctx, id, userID, platform, state).Error(0)
}

type MockExtractor struct{ mock.Mock }

func (m *MockExtractor) Extract(ctx context.Context, url string) (*model.Listing, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Listing), args.Error(1)
}

type MockEvents struct{ mock.Mock }

func (m *MockEvents) Publish(ctx context.Context, event model.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockStateStore struct{ mock.Mock }

func (m *MockStateStore) Create(ctx context.Context, s *model.OAuthState) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStateStore) Consume(ctx context.Context, state, provider string) (*model.OAuthState, error) {
	args := m.Called(ctx, state, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OAuthState), args.Error(1)
}

func (m *MockStateStore) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockVault struct{ mock.Mock }

func (m *MockVault) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockVault) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OAuthToken), args.Error(1)
}

type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) AuthCodeURL(state string) string {
	return "https://provider.example/auth?state=" + state
}

func (m *MockProvider) Connect(ctx context.Context, code string) ([]*model.OAuthToken, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OAuthToken), args.Error(1)
}

type MockGenerator struct{ mock.Mock }

func (m *MockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockComposer struct {
	mock.Mock
	kind model.ComposerKind
}

func (m *MockComposer) Kind() model.ComposerKind { return m.kind }

func (m *MockComposer) Compose(ctx context.Context, req model.ComposeRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
	platform string
}

func (m *MockPublisher) Platform() string { return m.platform }

func (m *MockPublisher) Publish(ctx context.Context, token *model.OAuthToken, in model.PublishInput) (*model.PublishResult, error) {
	args := m.Called(ctx, token, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublishResult), args.Error(1)
}

type MockAudit struct{ mock.Mock }

func (m *MockAudit) Record(ctx context.Context, a *model.PublishAudit) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAudit) ListByProperty(ctx context.Context, userID, propertyID string) ([]model.PublishAudit, error) {
	args := m.Called(ctx, userID, propertyID)
	return args.Get(0).([]model.PublishAudit), args.Error(1)
}
