package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"venuedesk/internal/app/commands"
	availabilityapp "venuedesk/internal/app/handlers/availability"
	bookingapp "venuedesk/internal/app/handlers/booking"
	financeapp "venuedesk/internal/app/handlers/finance"
	"venuedesk/internal/app/middleware"
	appoutbox "venuedesk/internal/app/outbox"
	"venuedesk/internal/app/policies"
	"venuedesk/internal/app/queries"
	"venuedesk/internal/app/uow"
	"venuedesk/internal/domain/inventory"
	"venuedesk/internal/domain/pricing"
	"venuedesk/internal/infra/broker/kafka"
	"venuedesk/internal/infra/config"
	mongodb "venuedesk/internal/infra/db/mongo"
	ginserver "venuedesk/internal/infra/http/gin"
	"venuedesk/internal/infra/notify"
	"venuedesk/internal/infra/obs"
	outboxrelay "venuedesk/internal/infra/outbox"
	"venuedesk/internal/infra/security"
	"venuedesk/internal/infra/storage/memory"
	redisstore "venuedesk/internal/infra/storage/redis"
	"venuedesk/internal/infra/storage/s3"
)

type application struct {
	handlers   ginserver.Handlers
	checks     map[string]obs.Check
	background []func(ctx context.Context)
	closers    []func() error
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}}

	prices := pricing.DefaultConfig()
	if cfg.PricingFile != "" {
		loaded, err := pricing.LoadConfig(cfg.PricingFile)
		if err != nil {
			return nil, fmt.Errorf("pricing: %w", err)
		}
		prices = loaded
	}
	if err := prices.Validate(); err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}
	rooms := inventory.Default()
	if cfg.InventoryFile != "" {
		loaded, err := inventory.Load(cfg.InventoryFile)
		if err != nil {
			return nil, fmt.Errorf("inventory: %w", err)
		}
		rooms = loaded
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaClientID, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		producer = p
		app.closers = append(app.closers, p.Close)
	}

	var (
		factory uow.UoWFactory
		box     appoutbox.Outbox
		mongoDB *mongodb.Client
	)
	if cfg.StorageMode == config.StorageMongo || cfg.IdempotencyBackend == config.StorageMongo {
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, mongodb.ConnectOptions{AppName: "venuedesk-api"})
		if err != nil {
			return nil, err
		}
		mongoDB = client
		app.closers = append(app.closers, func() error { return client.Close(context.Background()) })
		app.checks["mongo"] = client.Ping
	}
	switch cfg.StorageMode {
	case config.StorageMongo:
		factory = mongodb.NewFactory(mongoDB.DB)
		store := outboxrelay.NewStore(mongoDB.DB, outboxrelay.StoreOptions{
			Lease:       cfg.OutboxLease,
			MaxAttempts: cfg.OutboxMaxAttempts,
		})
		box = store
		if producer != nil {
			worker := &outboxrelay.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
				Logger:      logger,
			}
			app.background = append(app.background, func(ctx context.Context) {
				if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
			})
		} else {
			logger.Warn("no kafka brokers configured; outbox records stay in mongo")
		}
	default:
		factory = memory.NewFactory()
		box = memory.NewOutbox(logger)
	}

	idem, err := idempotencyStore(cfg, mongoDB, app)
	if err != nil {
		return nil, err
	}

	var notifier policies.Notifier = notify.LogNotifier{Logger: logger}
	if producer != nil {
		notifier = notify.KafkaNotifier{Producer: producer, Topic: cfg.KafkaTopicPrefix + cfg.NotificationTopic}
	}

	var archive policies.InvoiceArchive
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(s3.Options{
			Endpoint:  cfg.S3Endpoint,
			UseSSL:    cfg.S3UseSSL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
		}, logger)
		if err != nil {
			return nil, err
		}
		archive = s3.InvoiceArchive{Uploader: client}
	}

	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	bookingapp.Register(cmdBus, queryBus, bookingapp.Deps{
		Pricing:          prices,
		Inventory:        rooms,
		Outbox:           box,
		Encoder:          appoutbox.JSONEventEncoder{},
		Notifier:         notifier,
		AdminDestination: cfg.AdminDestination,
		Tolerance:        cfg.PriceTolerance,
		Logger:           logger,
	}, factory)
	financeapp.Register(cmdBus, queryBus, financeapp.Deps{
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
		Archive: archive,
		Logger:  logger,
	}, factory)
	availabilityapp.Register(queryBus, factory, rooms, prices)

	verifier := security.PINVerifier{Hash: cfg.AdminPINHash}
	if !verifier.Enabled() {
		logger.Warn("ADMIN_PIN_HASH not set; staff actions are open to every caller")
	}
	auth := middleware.StaffAuthorizer{Enabled: verifier.Enabled()}
	validator := middleware.NewStructValidator()

	cmds := middleware.ChainCommands(cmdBus,
		middleware.Logging(logger),
		middleware.Idempotency(idem, nil),
		middleware.Validation(validator),
		middleware.Authorization(auth),
		middleware.Transaction(factory),
		middleware.OutboxFlush(box),
	)
	qs := middleware.ChainQueries(queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(validator),
		middleware.QueryAuthorization(auth),
	)

	app.handlers = ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Commands: cmds, Queries: qs, Logger: logger},
		Availability: ginserver.AvailabilityHandler{Queries: qs, Logger: logger},
		Finance:      ginserver.FinanceHandler{Commands: cmds, Queries: qs, Logger: logger},
		Staff:        ginserver.StaffPIN{Verifier: verifier, Logger: logger}.Handle,
	}
	return app, nil
}

func idempotencyStore(cfg config.Config, db *mongodb.Client, app *application) (middleware.IdempotencyStore, error) {
	switch cfg.IdempotencyBackend {
	case config.StorageMongo:
		return mongodb.NewIdempotencyStore(db.DB, cfg.IdempotencyTTL), nil
	case config.StorageRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.closers = append(app.closers, client.Close)
		app.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return redisstore.NewIdempotencyStore(client, cfg.IdempotencyTTL), nil
	default:
		return memory.NewIdempotencyStore(cfg.IdempotencyTTL), nil
	}
}
