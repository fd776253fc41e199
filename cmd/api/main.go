package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pipescan-io/pipescan/internal/application"
	"github.com/pipescan-io/pipescan/internal/application/errorlist"
	"github.com/pipescan-io/pipescan/internal/application/summarize"
	"github.com/pipescan-io/pipescan/internal/config"
	domerrors "github.com/pipescan-io/pipescan/internal/domain/projerrors"
	domsummary "github.com/pipescan-io/pipescan/internal/domain/summary"
	aiclient "github.com/pipescan-io/pipescan/internal/infra/ai/openai"
	mysqlp "github.com/pipescan-io/pipescan/internal/infra/db/mysql"
	postgresp "github.com/pipescan-io/pipescan/internal/infra/db/postgres"
	"github.com/pipescan-io/pipescan/internal/infra/httpserver"
	minioStore "github.com/pipescan-io/pipescan/internal/infra/storage"
	"github.com/pipescan-io/pipescan/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect the configured database backend
	var db *sql.DB
	var errRepo domerrors.Repository
	var sumRepo domsummary.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		errRepo = postgresp.NewErrorRepository(db)
		sumRepo = postgresp.NewSummaryRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		errRepo = mysqlp.NewErrorRepository(db)
		sumRepo = mysqlp.NewSummaryRepository(db)
	}
	defer db.Close()

	// report archive
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	listSvc := &errorlist.Service{
		Repo:      errRepo,
		Reports:   store,
		Formatter: errorlist.Formatter{ResourceBase: "resources"},
		Clock:     application.SystemClock{},
		PageSize:  cfg.Pagination.PageSize,
	}

	// summaries only run when an OpenAI key is configured
	var sumSvc *summarize.Service
	if cfg.OpenAI.APIKey != "" {
		sumSvc = &summarize.Service{
			Errors:   errRepo,
			Store:    sumRepo,
			Client:   aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
			Clock:    application.SystemClock{},
			PageSize: cfg.Pagination.PageSize,
		}
	}

	handler := httpserver.NewRouter(listSvc, sumSvc, httpserver.Options{
		APIKeys: cfg.Auth.APIKeys,
		Checkers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
		RateCapacity: 60,
		RateRefill:   1,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
