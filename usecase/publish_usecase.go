package usecase

import (
	"context"
	"net/http"
	"time"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"
	"propgen/infrastructure/metrics"
	"propgen/infrastructure/realtime"

	"github.com/pkg/errors"
)

const (
	auditSuccess = "success"
	auditFailed  = "failed"
)

type IPublishUsecase interface {
	Publish(ctx context.Context, userID, platform string, in model.PublishInput) (*model.PublishResult, error)
	History(ctx context.Context, userID, propertyID string) ([]model.PublishAudit, error)
}

type publishUsecase struct {
	publishers   map[string]repository.ISocialPublisher
	vault        repository.ITokenVault
	profiles     repository.IProfile
	properties   repository.IProperty
	audit        repository.IPublishAudit
	events       repository.IEventPublisher
	hub          *realtime.Hub
	metrics      *metrics.Metrics
	defaultLimit int
}

type PublishDeps struct {
	Publishers   []repository.ISocialPublisher
	Vault        repository.ITokenVault
	Profiles     repository.IProfile
	Properties   repository.IProperty
	Audit        repository.IPublishAudit
	Events       repository.IEventPublisher
	Hub          *realtime.Hub
	Metrics      *metrics.Metrics
	DefaultLimit int
}

func NewPublishUsecase(d PublishDeps) IPublishUsecase {
	m := make(map[string]repository.ISocialPublisher, len(d.Publishers))
	for _, p := range d.Publishers {
		m[p.Platform()] = p
	}
	if d.Events == nil {
		d.Events = EventFanout(nil)
	}
	if d.Hub == nil {
		d.Hub = realtime.NewPublishHub()
	}
	return &publishUsecase{
		publishers: m, vault: d.Vault, profiles: d.Profiles, properties: d.Properties,
		audit: d.Audit, events: d.Events, hub: d.Hub, metrics: d.Metrics, defaultLimit: d.DefaultLimit,
	}
}

// Publish posts to one platform with the user's stored token. There is no
// idempotency key: publishing twice creates two posts.
func (u *publishUsecase) Publish(ctx context.Context, userID, platform string, in model.PublishInput) (*model.PublishResult, error) {
	lg := logger.GetLogger().WithField("user_id", userID).WithField("platform", platform).WithField("property_id", in.PropertyID)
	publisher, ok := u.publishers[platform]
	if !ok {
		return nil, domainerrors.ErrUnsupported.WithDetails(platform)
	}
	if _, err := u.properties.GetByID(ctx, in.PropertyID, userID); err != nil {
		return nil, err
	}
	token, err := u.connectedToken(ctx, userID, platform)
	if err != nil {
		return nil, err
	}

	u.hub.Broadcast(userID, realtime.PublishStatusEvent{PropertyID: in.PropertyID, Platform: platform, Status: "publishing"})
	res, err := publisher.Publish(ctx, token, in)
	u.metrics.IncPublish(platform, metrics.Outcome(err))
	if err != nil {
		lg.WithField("error", err).Error("publish failed")
		u.record(ctx, userID, platform, in, "", err)
		u.hub.Broadcast(userID, realtime.PublishStatusEvent{PropertyID: in.PropertyID, Platform: platform, Status: "failed", Error: domainerrors.ErrPublish.Message()})
		if appErr, ok := domainerrors.As(err); ok && appErr.HTTPCode() == http.StatusBadRequest {
			return nil, err
		}
		return nil, domainerrors.ErrPublish
	}

	if err := u.properties.RecordPublish(ctx, in.PropertyID, userID, platform, model.PublishState{
		PostID: res.PostID, PostURL: res.URL, PublishedAt: time.Now().UTC(),
	}); err != nil {
		lg.WithField("error", err).Error("recording publish state failed")
	}
	u.record(ctx, userID, platform, in, res.PostID, nil)
	_ = u.events.Publish(ctx, model.DomainEvent{
		Type:       model.EventPropertyPublished,
		UserID:     userID,
		PropertyID: in.PropertyID,
		Attributes: map[string]string{"platform": platform, "post_id": res.PostID},
	})
	u.hub.Broadcast(userID, realtime.PublishStatusEvent{PropertyID: in.PropertyID, Platform: platform, Status: "success", PostID: res.PostID, URL: res.URL})
	lg.WithField("post_id", res.PostID).Info("published")
	return res, nil
}

func (u *publishUsecase) History(ctx context.Context, userID, propertyID string) ([]model.PublishAudit, error) {
	if _, err := u.properties.GetByID(ctx, propertyID, userID); err != nil {
		return nil, err
	}
	return u.audit.ListByProperty(ctx, userID, propertyID)
}

// connectedToken enforces the precondition checked before any network call:
// the profile flag is set and the vault holds a token
func (u *publishUsecase) connectedToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	profile, err := ensureProfile(ctx, u.profiles, userID, u.defaultLimit)
	if err != nil {
		return nil, err
	}
	if !profile.IsConnected(platform) {
		return nil, domainerrors.NotConnected(platform)
	}
	token, err := u.vault.GetToken(ctx, userID, platform)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, domainerrors.NotConnected(platform)
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (u *publishUsecase) record(ctx context.Context, userID, platform string, in model.PublishInput, postID string, pubErr error) {
	a := &model.PublishAudit{
		PropertyID: in.PropertyID,
		UserID:     userID,
		Platform:   platform,
		Status:     auditSuccess,
		PostID:     postID,
		ImageCount: len(in.ImageURLs),
	}
	if pubErr != nil {
		a.Status = auditFailed
		a.ErrorMessage = domainerrors.ErrPublish.Message()
		if appErr, ok := domainerrors.As(pubErr); ok {
			a.ErrorMessage = appErr.Message()
		}
	}
	if err := u.audit.Record(ctx, a); err != nil {
		logger.GetLogger().WithField("error", err).Warn("publish audit failed")
	}
}
