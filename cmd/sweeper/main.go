package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/app/sweeperapp"
	hiringscli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/hirings"
	notifycli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/notify"
	userscli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/users"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/config"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/infra/httpclient"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/infra/logger"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
	redrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/redis"
	conseqsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/consequences"
)

func main() {
	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		log.Fatal("postgres init", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() {
		_ = redisClient.Close()
	}()

	collaboratorClient := httpclient.New(cfg.Collaborators.RequestTimeout)
	usersClient := userscli.New(cfg.Collaborators.UsersBaseURL, collaboratorClient)
	hiringsClient := hiringscli.New(cfg.Collaborators.HiringsBaseURL, collaboratorClient)
	notifyClient := notifycli.New(cfg.Collaborators.NotificationsBaseURL, collaboratorClient)

	service := conseqsvc.NewService(conseqsvc.Dependencies{
		Pool:        pool,
		Compliances: pgrepo.NewComplianceRepo(pool),
		Claims:      pgrepo.NewClaimRepo(pool),
		Hirings:     hiringsClient,
		Users:       usersClient,
		Reminders:   redrepo.NewReminderRepo(redisClient),
		Notifier:    notifyClient,
		Logger:      log,
	}, conseqsvc.Config{
		SuspensionDays: cfg.Sweep.SuspensionDays,
		ReminderWindow: cfg.Sweep.ReminderWindow,
	})

	runner := sweeperapp.New(service, cfg.Sweep, log)
	if *once {
		if err := runner.RunOnce(ctx); err != nil {
			log.Fatal("sweep pass failed", zap.Error(err))
		}
		return
	}

	if err := runner.Run(ctx); err != nil {
		log.Fatal("sweeper stopped", zap.Error(err))
	}
}
