package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/config"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/database"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/handler"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/logger"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/mailer"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/middleware"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/queue"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/router"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins

	log := logger.New(os.Stdout, os.Getenv("LOG_LEVEL"))
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(database.Options{
		User: cfg.DB.User, Pass: cfg.DB.Pass, Host: cfg.DB.Host, Port: cfg.DB.Port, Name: cfg.DB.Name,
	})
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			log.Error("migrations", "error", err)
			os.Exit(1)
		}
	}

	rdb := config.NewRedisClient(cfg.Redis) // nil disables cache and rate limiting
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limiting disabled", "addr", cfg.Redis.Addr)
	} else {
		defer rdb.Close()
	}

	codec, err := auth.NewCodec(auth.CodecConfig{
		Issuer:  cfg.Auth.Issuer,
		Access:  auth.SigningKey{Secret: cfg.Auth.AccessSecret, TTL: cfg.Auth.AccessTTL},
		Refresh: auth.SigningKey{Secret: cfg.Auth.RefreshSecret, TTL: cfg.Auth.RefreshTTL},
		Magic:   auth.SigningKey{Secret: cfg.Auth.MagicSecret, TTL: cfg.Auth.MagicTTL},
	})
	if err != nil {
		log.Error("token codec", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// mail: MailerSend when configured, otherwise links are only logged
	var sender mailer.Sender = mailer.NewDev(log)
	if cfg.Mail.APIKey != "" {
		sender = mailer.NewMailerSend(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	}
	var dispatcher auth.EmailDispatcher = &service.DirectDispatcher{Sender: sender, Log: log}
	if cfg.Queue.Enabled {
		dispatcher = &service.QueueDispatcher{URL: cfg.Queue.URL, Queue: cfg.Queue.MailQueue, Log: log}
		consumer := &queue.MailConsumer{URL: cfg.Queue.URL, Queue: cfg.Queue.MailQueue, Sender: sender, Log: log}
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("mail consumer stopped", "error", err)
			}
		}()
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	events := repository.NewEventRepo(db)
	cohosts := repository.NewCohostRepo(db)
	attendees := repository.NewAttendeeRepo(db)

	if len(cfg.AdminEmails) > 0 {
		skipped, err := service.EnsureAdmins(ctx, users, cfg.AdminEmails)
		if err != nil {
			log.Error("admin bootstrap", "error", err)
			os.Exit(1)
		}
		if len(skipped) > 0 {
			log.Warn("admin bootstrap skipped deleted accounts", "emails", skipped)
		}
	}

	issuer := auth.NewMagicLinkIssuer(users, sessions, codec, dispatcher, cfg.MagicLinkCallback(), log)
	cookies := middleware.CookieConfig{Domain: cfg.Auth.CookieDomain, Secure: cfg.Auth.SecureCookies}
	cache := middleware.NewResponseCache(cfg.Cache, rdb)
	validator := handler.NewValidator()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORS,
		AllowCredentials: true,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization,
			middleware.HeaderAccessToken, middleware.HeaderRefreshToken},
		ExposeHeaders: []string{middleware.HeaderAccessToken},
	}))

	gates := router.Gates{
		Session: middleware.SessionAuth(middleware.SessionConfig{
			Codec: codec, Users: users, Sessions: sessions, Cookies: cookies, Log: log,
		}),
		SignInLimiter: middleware.NewTokenBucket(cfg.RateLimit, rdb),
		EventRoles:    cohosts,
		PlatformRoles: users,
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(issuer, codec, users, cookies), gates)
	router.RegisterUsers(e, &handler.UserHandler{Users: users, Sessions: sessions, Cookies: cookies, Validator: validator}, gates)
	router.RegisterEvents(e,
		handler.NewEventHandler(events, cache),
		&handler.AttendeeHandler{Events: events, Attendees: attendees},
		&handler.CohostHandler{Cohosts: cohosts, Users: users, Events: events, Mail: dispatcher, ClientURL: cfg.ClientURL, Log: log},
		gates)
	router.RegisterAdmin(e, &handler.AdminHandler{Users: users, Sessions: sessions}, gates)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "queue", cfg.Queue.Enabled)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
