package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickkick/registration/internal/config"
	"github.com/quickkick/registration/internal/db"
	"github.com/quickkick/registration/internal/httpserver"
	"github.com/quickkick/registration/internal/logging"
	"github.com/quickkick/registration/internal/middleware"
	"github.com/quickkick/registration/internal/notify"
	"github.com/quickkick/registration/internal/repo"
	"github.com/quickkick/registration/internal/service"
	"github.com/quickkick/registration/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	codec, err := token.NewCodec(cfg.SigningKey, cfg.AccessTokenTTL, cfg.RefreshMultiplier)
	if err != nil {
		log.Fatalf("token codec error: %v", err)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gateway := notify.NewKafkaGateway(cfg.KafkaBrokers)
	defer gateway.Close()

	store := repo.NewGormRepo(database)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Registration: &service.RegistrationService{
				Repo:            store,
				Gateway:         gateway,
				ConfirmTokenTTL: cfg.ConfirmTokenTTL,
				ConfirmLinkBase: cfg.ConfirmLinkBase,
			},
			Auth: &service.AuthService{
				Repo:    store,
				Codec:   codec,
				Gateway: gateway,
			},
		},
		Authorizer: middleware.NewAuthorizer(codec),
		Mode:       cfg.Mode,
	})

	go func() {
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
