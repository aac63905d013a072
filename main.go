// Package main LibZone API.
//
// @title           LibZone API
// @version         1.0
// @description     Campus library rental: catalog, borrowing, reading and admin stats.
// @BasePath        /
// @schemes         http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/pflag"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/kp7829294-create/libzone/app/echoServer"
	"github.com/kp7829294-create/libzone/app/echoServer/controller"
	authctrl "github.com/kp7829294-create/libzone/app/echoServer/controller/auth"
	bookctrl "github.com/kp7829294-create/libzone/app/echoServer/controller/book"
	loanctrl "github.com/kp7829294-create/libzone/app/echoServer/controller/loan"
	statsctrl "github.com/kp7829294-create/libzone/app/echoServer/controller/stats"
	uploadctrl "github.com/kp7829294-create/libzone/app/echoServer/controller/upload"
	"github.com/kp7829294-create/libzone/config"
	"github.com/kp7829294-create/libzone/repository/factory"
	authsvc "github.com/kp7829294-create/libzone/service/auth"
	booksvc "github.com/kp7829294-create/libzone/service/book"
	loansvc "github.com/kp7829294-create/libzone/service/loan"
	statssvc "github.com/kp7829294-create/libzone/service/stats"
	uploadsvc "github.com/kp7829294-create/libzone/service/upload"
	"github.com/kp7829294-create/libzone/util/clock"
	"github.com/kp7829294-create/libzone/util/httpx"
	"github.com/kp7829294-create/libzone/util/notify"
	"github.com/kp7829294-create/libzone/util/objectstore"
)

func main() {
	cfgPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	port := pflag.StringP("port", "p", "", "listen port (overrides config)")
	pflag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("config invalid", "err", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	// logger
	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// store
	store, err := factory.Open(ctx, cfg)
	if err != nil {
		log.Error("store connect failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())
	if err := store.Migrate(ctx); err != nil {
		log.Error("migrate failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}

	// collaborators
	var mailer notify.Sender = notify.LogSender{Log: log}
	if cfg.Mail.Host != "" {
		smtp, err := notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Secure:   cfg.Mail.Secure,
			From:     cfg.Mail.From,
		})
		if err != nil {
			log.Error("smtp setup failed", "err", err)
			os.Exit(1)
		}
		mailer = smtp
	} else {
		log.Warn("SMTP_HOST not set, mail goes to the log")
	}

	var (
		presigner loansvc.Presigner
		uploads   uploadsvc.Storage
	)
	if cfg.Storage.Endpoint != "" {
		objects, err := objectstore.New(objectstore.Config{
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			UseSSL:        cfg.Storage.UseSSL,
			Region:        cfg.Storage.Region,
			PublicBucket:  cfg.Storage.PublicBucket,
			PrivateBucket: cfg.Storage.PrivateBucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Error("object storage setup failed", "err", err)
			os.Exit(1)
		}
		presigner, uploads = objects, objects
	} else {
		log.Warn("STORAGE_ENDPOINT not set, uploads and private reads are disabled")
	}

	// services
	clk := clock.Real()
	as := authsvc.New(authsvc.Deps{
		Users:  store,
		OTPs:   store,
		Mail:   mailer,
		Clock:  clk,
		Secret: cfg.JWTSecret,
		Log:    log,
	})
	bs := booksvc.New(store, clk)
	ls := loansvc.New(store, presigner, httpx.Streaming(), clk)
	ss := statssvc.New(store, clk)
	us := uploadsvc.New(uploads)

	// echo
	e := echoServer.New(log)
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      &authctrl.Controller{Svc: as, Log: log, Cookie: echoServer.CookieName, Secure: !cfg.IsDev()},
		User:      controller.NewUserController(as, log),
		Book:      &bookctrl.Controller{Svc: bs, Log: log},
		Loan:      &loanctrl.Controller{Svc: ls, Log: log},
		Stats:     &statsctrl.Controller{Svc: ss},
		Upload:    &uploadctrl.Controller{Svc: us, Log: log},
		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
