// Package app assembles the HTTP API from its modules.
package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salescrm/internal/config"
	"salescrm/internal/middleware"
	"salescrm/internal/modules/accounts"
	"salescrm/internal/modules/activities"
	"salescrm/internal/modules/auth"
	"salescrm/internal/modules/contacts"
	"salescrm/internal/modules/conversion"
	"salescrm/internal/modules/dashboard"
	"salescrm/internal/modules/leads"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/opportunities"
	"salescrm/internal/modules/session"
	"salescrm/internal/modules/workflows"
	jwtsvc "salescrm/internal/pkg/jwt"
	"salescrm/internal/pkg/response"
	"salescrm/internal/repository"
)

// Deps are the stateful pieces the caller owns. Sessions and Locker are
// redis-backed in production and in-process otherwise.
type Deps struct {
	Config   *config.AppConfig
	DB       *repository.DB
	Sessions session.Store
	Locker   conversion.Locker
	Mailer   auth.Mailer
	Log      *zap.Logger
}

type App struct {
	Router *gin.Engine
	Hub    *notify.Hub
	Broker *session.Broker
	Auth   *auth.Service

	stopRelay context.CancelFunc
	relayDone sync.WaitGroup
}

func New(d Deps) *App {
	cfg, log := d.Config, d.Log
	if log == nil {
		log = zap.NewNop()
	}
	if d.Mailer == nil {
		d.Mailer = auth.NewDevConsoleMailer(log)
	}

	userRepo := repository.NewUserRepository(d.DB)
	tokenRepo := repository.NewRefreshTokenRepository(d.DB)
	accountRepo := repository.NewAccountRepository(d.DB)
	contactRepo := repository.NewContactRepository(d.DB)
	leadRepo := repository.NewLeadRepository(d.DB)
	opportunityRepo := repository.NewOpportunityRepository(d.DB)
	activityRepo := repository.NewActivityRepository(d.DB)
	workflowRepo := repository.NewWorkflowRepository(d.DB)
	dashboardRepo := repository.NewDashboardRepository(d.DB)

	broker := session.NewBroker()
	hub := notify.NewHub(log)
	sink := notify.Fanout{hub, notify.NewLogSink(log)}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := auth.NewService(userRepo, tokenRepo, d.DB, d.Sessions, broker, j, d.Mailer, auth.Options{
		RefreshTTL:                 cfg.RefreshTTL,
		RequireEmailConfirmation:   cfg.RequireEmailConfirmation,
		ConfirmationResendCooldown: cfg.ConfirmationResendCooldown,
	}, log)

	conversionService := conversion.NewService(d.DB, leadRepo, accountRepo, contactRepo, d.Locker, sink, conversion.Options{
		Mode:       conversion.Mode(cfg.ConversionMode),
		Compensate: cfg.ConversionCompensate,
		LockTTL:    cfg.ConversionLockTTL,
	}, log)

	a := &App{Hub: hub, Broker: broker, Auth: authService}

	ctx, cancel := context.WithCancel(context.Background())
	a.stopRelay = cancel
	events, unsubscribe := broker.Subscribe(64)
	a.relayDone.Add(1)
	go func() {
		defer a.relayDone.Done()
		defer unsubscribe()
		notify.NewSessionRelay(sink, log).Run(ctx, events)
	}()

	r := gin.New()
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		if err := d.DB.Ping(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", err.Error())
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "online": hub.OnlineCount()})
	})

	v1 := r.Group("/api/v1")
	{
		authHandler := auth.NewHandler(authService)
		authHandler.RegisterPublicRoutes(v1)
		notify.NewWSHandler(hub, authService, log).RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.RequireSession(authService))
		{
			authHandler.RegisterProtectedRoutes(protected, middleware.Principal)
			accounts.NewHandler(accounts.NewService(accountRepo, sink, log)).RegisterRoutes(protected)
			contacts.NewHandler(contacts.NewService(contactRepo, sink, log)).RegisterRoutes(protected)
			leads.NewHandler(leads.NewService(leadRepo, sink, log)).RegisterRoutes(protected)
			opportunities.NewHandler(opportunities.NewService(opportunityRepo, sink, log)).RegisterRoutes(protected)
			activities.NewHandler(activities.NewService(activityRepo, sink, log)).RegisterRoutes(protected)
			workflows.NewHandler(workflows.NewService(workflowRepo, sink, log)).RegisterRoutes(protected)
			conversion.NewHandler(conversionService).RegisterRoutes(protected)
			dashboard.NewHandler(dashboard.NewService(dashboardRepo, activityRepo)).RegisterRoutes(protected)
		}
	}

	a.Router = r
	return a
}

// Close stops the session relay and disconnects every websocket client.
func (a *App) Close() {
	a.stopRelay()
	a.relayDone.Wait()
	a.Broker.Close()
	a.Hub.Close()
}
