package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/go-redis/redis/v8"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	compatibilityclient "github.com/Apurer/pet-adoption-api/internal/clients/http/compatibility"
	adoptionanimals "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/animals"
	adoptioncompat "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/external/compatibility"
	adoptionredis "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/idempotency/redis"
	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptionobs "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability"
	adoptiondynamo "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/dynamodb"
	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	animalmemory "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/memory"
	animalobs "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/observability"
	animaldynamo "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/persistence/dynamodb"
	animalpostgres "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/persistence/postgres"
	animalsapp "github.com/Apurer/pet-adoption-api/internal/domains/animals/application"
	animalports "github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	userauth "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/auth"
	userdirectory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/directory"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability"
	userdynamo "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/dynamodb"
	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/dynamo"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/shared/txn"
)

// Stores groups the repositories of one storage backend.
type Stores struct {
	Backend     string
	Animals     animalports.Repository
	Users       userports.Repository
	Requests    adoptionports.Repository
	Idempotency adoptionports.IdempotencyStore
	Tx          txn.Transactor
}

// Services are the decorated application services shared by every binary.
type Services struct {
	Stores    *Stores
	Tokens    userports.TokenIssuer
	Users     userports.Service
	Animals   animalports.Service
	Adoptions adoptionports.Service
}

// BuildStores opens the configured backend. Postgres and DynamoDB failures in
// auto mode degrade to memory; an explicit backend choice fails instead.
func BuildStores(ctx context.Context, cfg Config, logger *slog.Logger) (*Stores, func(), error) {
	switch cfg.Backend() {
	case BackendPostgres:
		db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
		if db == nil {
			if cfg.StorageBackend == BackendPostgres {
				return nil, nil, errors.New("postgres backend requested but the connection failed")
			}
			return memoryStores(logger), func() {}, nil
		}
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("repositories configured with postgres")
		return &Stores{
			Backend:     BackendPostgres,
			Animals:     animalpostgres.NewRepository(db),
			Users:       userpostgres.NewRepository(db),
			Requests:    adoptionpostgres.NewRepository(db),
			Idempotency: adoptionpostgres.NewIdempotencyStore(db),
			Tx:          platformpostgres.NewTransactor(db),
		}, cleanup, nil
	case BackendDynamoDB:
		settings := dynamo.SettingsFromEnv()
		settings.Region = cfg.AWSRegion
		settings.Endpoint = cfg.DynamoEndpoint
		ddb, err := dynamo.Connect(ctx, settings)
		if err != nil {
			return nil, nil, fmt.Errorf("connect dynamodb: %w", err)
		}
		logger.Info("repositories configured with dynamodb", slog.String("region", settings.Region))
		return &Stores{
			Backend:     BackendDynamoDB,
			Animals:     animaldynamo.NewRepository(ddb),
			Users:       userdynamo.NewRepository(ddb),
			Requests:    adoptiondynamo.NewRepository(ddb),
			Idempotency: adoptiondynamo.NewIdempotencyStore(ddb),
			Tx:          txn.NewLocking(),
		}, func() {}, nil
	default:
		return memoryStores(logger), func() {}, nil
	}
}

func memoryStores(logger *slog.Logger) *Stores {
	logger.Warn("using in-memory repositories; data is lost on restart")
	return &Stores{
		Backend:     BackendMemory,
		Animals:     animalmemory.NewRepository(),
		Users:       usermemory.NewRepository(),
		Requests:    adoptionmemory.NewRepository(),
		Idempotency: adoptionmemory.NewIdempotencyStore(),
		Tx:          txn.NewLocking(),
	}
}

// BuildServices wires every bounded context over stores.
func BuildServices(ctx context.Context, cfg Config, instruments *platformobservability.Instruments, stores *Stores) (*Services, func(), error) {
	logger := effectiveLogger(instruments)
	cleanup := func() {}

	tokens, err := userauth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("configure tokens: %w", err)
	}
	users := userobs.New(
		userapp.NewService(stores.Users, tokens),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	directory := userdirectory.New(stores.Users)

	animalOpts := []animalsapp.Option{
		animalsapp.WithLogger(logger),
		animalsapp.WithScorerTimeout(cfg.ScorerTimeout),
	}
	adoptionOpts := []adoptionsapp.Option{
		adoptionsapp.WithDirectory(directory),
		adoptionsapp.WithTransactor(stores.Tx),
		adoptionsapp.WithIdempotencyStore(stores.Idempotency),
		adoptionsapp.WithLogger(logger),
		adoptionsapp.WithScorerTimeout(cfg.ScorerTimeout),
		adoptionsapp.WithFallbackScore(cfg.FallbackScore),
	}

	predictor, err := compatibilityclient.NewClient(cfg.AIServiceURL, &http.Client{Timeout: cfg.ScorerTimeout})
	if err != nil {
		logger.Warn("compatibility scorer disabled, using fallback scores", slog.String("error", err.Error()))
	} else {
		scorer := adoptioncompat.NewScorer(predictor)
		animalOpts = append(animalOpts, animalsapp.WithScorer(scorer, directory))
		adoptionOpts = append(adoptionOpts, adoptionsapp.WithScorer(adoptionobs.NewScorer(
			scorer,
			instruments.Tracer("internal.adoptions.scorer"),
			instruments.Meter("internal.adoptions.scorer"),
		)))
	}

	if cfg.RedisAddr != "" {
		rdb, err := adoptionredis.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, keeping backend idempotency store", slog.String("error", err.Error()))
		} else {
			adoptionOpts = append(adoptionOpts, adoptionsapp.WithIdempotencyStore(adoptionredis.NewStore(rdb)))
			cleanup = closeRedis(rdb, logger)
			logger.Info("idempotency keys stored in redis", slog.String("addr", cfg.RedisAddr))
		}
	}

	animals := animalobs.New(
		animalsapp.NewService(stores.Animals, animalOpts...),
		animalobs.WithLogger(logger),
		animalobs.WithTracer(instruments.Tracer("internal.animals.application")),
		animalobs.WithMeter(instruments.Meter("internal.animals.application")),
	)
	adoptions := adoptionobs.New(
		adoptionsapp.NewService(stores.Requests, adoptionanimals.NewStore(stores.Animals), adoptionOpts...),
		adoptionobs.WithLogger(logger),
		adoptionobs.WithTracer(instruments.Tracer("internal.adoptions.application")),
		adoptionobs.WithMeter(instruments.Meter("internal.adoptions.application")),
	)
	return &Services{
		Stores:    stores,
		Tokens:    tokens,
		Users:     users,
		Animals:   animals,
		Adoptions: adoptions,
	}, cleanup, nil
}

func closeRedis(rdb *goredis.Client, logger *slog.Logger) func() {
	return func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
