package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/cache"
	"propgen/infrastructure/clients/facebook"
	"propgen/infrastructure/clients/gemini"
	"propgen/infrastructure/clients/instagram"
	"propgen/infrastructure/clients/tiktok"
	"propgen/infrastructure/composer"
	"propgen/infrastructure/configuration"
	"propgen/infrastructure/extractor"
	"propgen/infrastructure/logger"
	"propgen/infrastructure/metrics"
	"propgen/infrastructure/persistence"
	"propgen/infrastructure/pubsub"
	"propgen/infrastructure/realtime"
	"propgen/infrastructure/servicebus"
	"propgen/infrastructure/storage"
	"propgen/infrastructure/vault"
	httpHandler "propgen/interfaces/http"
	"propgen/server"
	"propgen/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

const (
	outboundTimeout    = 30 * time.Second
	statePurgeInterval = 15 * time.Minute
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	cfg := configuration.C

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot connect to PostgreSQL")
	}
	defer psqlDb.Close()
	if err := persistence.EnsureSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Failed ensuring schema")
	}
	logger.GetLogger().Info("PostgreSQL connected.")

	sealer, err := vault.NewSealer(cfg.Vault.Key)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Token vault key invalid; set VAULT_KEY to 32 hex-encoded bytes")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	checks := map[string]httpHandler.Check{"postgres": psqlDb.PingContext}

	redisClient := initiateRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	var states repository.IOAuthStateStore = persistence.NewOAuthStateRepository(psqlDb)
	if cfg.OAuth.StateStore == "redis" {
		if redisClient != nil {
			states = cache.NewOAuthStateStore(redisClient)
			logger.GetLogger().Info("OAuth states kept in Redis")
		} else {
			logger.GetLogger().Warn("OAUTH_STATE_STORE=redis but Redis is unavailable; using PostgreSQL")
		}
	}

	mongoDb := initiateMongo(ctx, cfg)
	if mongoDb != nil {
		defer func() { _ = mongoDb.Disconnect(context.Background()) }()
		checks["mongo"] = func(ctx context.Context) error { return mongoDb.Ping(ctx, nil) }
	}

	events := initiateEventSinks(ctx, cfg)

	gem, err := gemini.NewClient(ctx, &gemini.Config{
		APIKey:     cfg.AI.APIKey,
		Endpoint:   cfg.AI.Endpoint,
		TextModel:  cfg.AI.TextModel,
		ImageModel: cfg.AI.ImageModel,
		Timeout:    2 * time.Minute,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Gemini client unavailable; set GEMINI_API_KEY")
	}

	blobs, err := storage.NewBlobStorage(ctx, cfg.Storage.BucketURL, cfg.Storage.PublicBaseURL)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot open image bucket")
	}
	defer blobs.Close()

	fetcher := composer.NewFetcher(outboundTimeout)
	composers := []repository.IImageComposer{
		composer.NewCanvasComposer(fetcher, cfg.Composer.TemplateImageURL),
		composer.NewAIComposer(gem, fetcher, cfg.Composer.TemplateImageURL),
	}
	if cfg.Placid.APIKey != "" {
		composers = append(composers, composer.NewTemplateComposer(composer.PlacidConfig{
			APIKey:    cfg.Placid.APIKey,
			BaseURL:   cfg.Placid.BaseURL,
			Templates: cfg.Placid.Templates,
			Timeout:   outboundTimeout,
		}, fetcher))
	}

	graph := facebook.NewGraphClient(cfg.Graph.BaseURL, cfg.Graph.Version, outboundTimeout)
	tiktokClient := tiktok.NewClient(cfg.TikTok.BaseURL, outboundTimeout)

	var providers []repository.IOAuthProvider
	if fb := cfg.OAuth.Facebook; fb.ClientID != "" {
		providers = append(providers, facebook.NewOAuthProvider(fb.ClientID, fb.ClientSecret, fb.RedirectURI, fb.Scopes, graph))
	}
	if tt := cfg.OAuth.TikTok; tt.ClientID != "" {
		providers = append(providers, tiktok.NewOAuthProvider(tt.ClientID, tt.ClientSecret, tt.RedirectURI, tt.AuthURL, tt.TokenURL, tt.Scopes, tiktokClient))
	}
	if len(providers) == 0 {
		logger.GetLogger().Warn("No OAuth provider configured; connecting accounts is disabled")
	}

	profileRepository := persistence.NewProfileRepository(psqlDb)
	propertyRepository := persistence.NewPropertyRepository(psqlDb)
	tokenVault := persistence.NewOAuthTokenRepository(psqlDb, sealer)
	auditRepository := persistence.NewPublishAuditRepository(mongoDb, cfg.Database.Mongo.Name)
	hub := realtime.NewPublishHub()
	limit := cfg.App.DefaultLimit

	listingExtractor := extractor.NewExtractor(cfg.Extractor.UserAgent, cfg.Extractor.Timeout())
	if cfg.Extractor.Render {
		browser := extractor.NewBrowserFetcher(cfg.Extractor.UserAgent, cfg.Extractor.Timeout())
		defer browser.Close()
		listingExtractor.WithRenderer(browser)
		logger.GetLogger().Info("Listing pages rendered in headless Chrome")
	}
	extractionUsecase := usecase.NewExtractionUsecase(listingExtractor,
		propertyRepository, profileRepository, events, appMetrics, limit)
	contentUsecase := usecase.NewContentUsecase(gem, propertyRepository, appMetrics)
	imageUsecase := usecase.NewImageUsecase(composers, model.ComposerKind(cfg.Composer.Kind), blobs, propertyRepository, profileRepository, appMetrics)
	oauthUsecase := usecase.NewOAuthUsecase(providers, states, tokenVault, profileRepository, cfg.App.AppURL, limit)
	publishUsecase := usecase.NewPublishUsecase(usecase.PublishDeps{
		Publishers: []repository.ISocialPublisher{
			facebook.NewPublisher(graph),
			instagram.NewPublisher(graph),
			tiktok.NewPublisher(tiktokClient),
		},
		Vault:        tokenVault,
		Profiles:     profileRepository,
		Properties:   propertyRepository,
		Audit:        auditRepository,
		Events:       events,
		Hub:          hub,
		Metrics:      appMetrics,
		DefaultLimit: limit,
	})

	router := server.InitiateRouter(server.Handlers{
		Extraction: httpHandler.NewExtractionHandler(extractionUsecase),
		Content:    httpHandler.NewContentHandler(contentUsecase),
		Image:      httpHandler.NewImageHandler(imageUsecase, blobs),
		Publish:    httpHandler.NewPublishHandler(publishUsecase),
		OAuth:      httpHandler.NewOAuthHandler(oauthUsecase),
		Profile:    httpHandler.NewProfileHandler(usecase.NewProfileUsecase(profileRepository, limit), usecase.NewPropertyUsecase(propertyRepository)),
		Health:     httpHandler.NewHealthHandler(checks, cfg.Composer.Kind),
		Hub:        hub,
	}, server.RouterConfig{
		SecretKey:      cfg.App.SecretKey,
		AllowedOrigins: cfg.App.AllowedOrigins,
		Metrics:        appMetrics,
		Gatherer:       reg,
	})

	g.Go(func() error {
		ticker := time.NewTicker(statePurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				n, err := oauthUsecase.PurgeExpiredStates(ctx)
				if err != nil {
					logger.GetLogger().WithField("error", err).Warn("Purging OAuth states failed")
					continue
				}
				if n > 0 {
					logger.GetLogger().WithField("purged", n).Info("Expired OAuth states purged")
				}
			}
		}
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.GetLogger().WithFields(map[string]interface{}{"port": cfg.App.Port, "tls": cfg.App.TLSEnabled, "composer": cfg.Composer.Kind}).Info("Starting application")
	g.Go(func() error {
		var err error
		if cfg.App.TLSEnabled && cfg.App.TLSCertFile != "" && cfg.App.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.App.TLSCertFile, cfg.App.TLSKeyFile)
		} else {
			if cfg.App.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	for _, sink := range events {
		if c, ok := sink.(interface{ Close(context.Context) }); ok {
			c.Close(shutdownCtx)
		}
		if c, ok := sink.(interface{ Close() }); ok {
			c.Close()
		}
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func initiateRedis(ctx context.Context, cfg configuration.Config) *redis.Client {
	if cfg.RedisClient.Host == "" {
		return nil
	}
	client, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port),
		cfg.RedisClient.Username, cfg.RedisClient.Password, cfg.RedisClient.DB)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without Redis")
		return nil
	}
	logger.GetLogger().Info("Redis client initialized successfully.")
	return client
}

func initiateMongo(ctx context.Context, cfg configuration.Config) *mongo.Client {
	m := cfg.Database.Mongo
	client, err := persistence.NewMongoDb(m.Host, m.Port, m.User, m.Password, m.Name)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - publish audit disabled")
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - publish audit disabled")
		_ = client.Disconnect(context.Background())
		return nil
	}
	logger.GetLogger().Info("MongoDB connected successfully")
	return client
}

// initiateEventSinks returns every configured sink; an empty fanout drops events
func initiateEventSinks(ctx context.Context, cfg configuration.Config) usecase.EventFanout {
	var sinks usecase.EventFanout
	if cfg.Pubsub.ProjectID != "" {
		client, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err == nil {
			var pub *pubsub.EventPublisher
			if pub, err = pubsub.NewEventPublisher(ctx, client, cfg.Pubsub.Topic); err == nil {
				sinks = append(sinks, pub)
			}
		}
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without PubSub events")
		}
	}
	if cfg.ServiceBus.Namespace != "" {
		client, err := servicebus.NewServiceBus(cfg.ServiceBus.Namespace)
		if err == nil {
			var sender *servicebus.EventSender
			if sender, err = servicebus.NewEventSender(client, cfg.ServiceBus.Queue); err == nil {
				sinks = append(sinks, sender)
			}
		}
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus events")
		}
	}
	return sinks
}
