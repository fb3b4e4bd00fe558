package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	hiringscli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/hirings"
	notifycli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/notify"
	userscli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/users"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/config"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/infra/httpclient"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
	redrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/redis"
	authsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/auth"
	claimssvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/claims"
	claimviewsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/claimview"
	compsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/compliances"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("postgres init: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	lockRepo := redrepo.NewLockRepo(redisClient)
	claimRepo := pgrepo.NewClaimRepo(pool)
	complianceRepo := pgrepo.NewComplianceRepo(pool)
	submissionRepo := pgrepo.NewSubmissionRepo(pool)

	collaboratorClient := httpclient.New(cfg.Collaborators.RequestTimeout)
	usersClient := userscli.New(cfg.Collaborators.UsersBaseURL, collaboratorClient)
	hiringsClient := hiringscli.New(cfg.Collaborators.HiringsBaseURL, collaboratorClient)
	notifyClient := notifycli.New(cfg.Collaborators.NotificationsBaseURL, collaboratorClient)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)

	claimsService := claimssvc.NewService(claimssvc.Dependencies{
		Pool:        pool,
		ClaimStore:  claimRepo,
		Compliances: complianceRepo,
		Hirings:     hiringsClient,
		Users:       usersClient,
		Notifier:    notifyClient,
		Logger:      log,
	})
	complianceService := compsvc.NewService(compsvc.Dependencies{
		Pool:        pool,
		Compliances: complianceRepo,
		Submissions: submissionRepo,
		Claims:      claimRepo,
		Hirings:     hiringsClient,
		Locks:       lockRepo,
		Notifier:    notifyClient,
		Logger:      log,
	})
	claimViewService := claimviewsvc.NewService(claimviewsvc.Dependencies{
		Claims:      claimRepo,
		Compliances: complianceRepo,
		Submissions: submissionRepo,
		Hirings:     hiringsClient,
		Users:       usersClient,
		Logger:      log,
	})

	RegisterRoutes(r, Dependencies{
		ClaimsService:     claimsService,
		ComplianceService: complianceService,
		ClaimViewService:  claimViewService,
		JWTManager:        jwtManager,
		Logger:            log,
		Config:            cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
