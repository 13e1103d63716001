package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/subman/api"
	"github.com/dmitrymomot/subman/auth"
	"github.com/dmitrymomot/subman/billing"
	"github.com/dmitrymomot/subman/entitlement"
	"github.com/dmitrymomot/subman/organization"
	"github.com/dmitrymomot/subman/pkg/config"
	"github.com/dmitrymomot/subman/pkg/httpserver"
	"github.com/dmitrymomot/subman/pkg/jwt"
	"github.com/dmitrymomot/subman/pkg/logger"
	mongopkg "github.com/dmitrymomot/subman/pkg/mongo"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/store/mongodb"
	"github.com/dmitrymomot/subman/subscription"
)

type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	Mongo  mongopkg.Config
	HTTP   httpserver.Config
	Stripe billing.StripeConfig
	API    api.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "subman"))

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	client, err := mongopkg.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	gateway, err := billing.NewStripeGateway(cfg.Stripe)
	if err != nil {
		return err
	}

	tokens, err := jwt.New(cfg.JWTSecret)
	if err != nil {
		return err
	}

	plans := mongodb.NewPlanStore(db)
	orgs := mongodb.NewOrganizationStore(db)
	users := mongodb.NewUserStore(db)
	events := mongodb.NewWebhookEventStore(db)

	seats := entitlement.NewEngine(orgs, users, plans, log)

	deps := api.Deps{
		Auth:          auth.NewService(users, orgs, seats, tokens, log),
		Plans:         plan.NewService(plans, gateway, log),
		Organizations: organization.NewService(orgs, users, plans, log),
		Subscriptions: subscription.NewReconciler(orgs, users, plans, gateway, events, log),
		Gateway:       gateway,
		Healthcheck:   mongopkg.Healthcheck(client),
		Config:        cfg.API,
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, api.New(deps))
}
