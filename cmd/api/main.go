package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/auth"
	"jobkonnect.org/internal/config"
	"jobkonnect.org/internal/httpapi"
	"jobkonnect.org/internal/jobs"
	"jobkonnect.org/internal/migrate"
	"jobkonnect.org/internal/obs"
	"jobkonnect.org/internal/storage"
	"jobkonnect.org/internal/store/memory"
	"jobkonnect.org/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

type store interface {
	accounts.Store
	jobs.Store
	applications.Store
}

func main() {
	log := obs.Logger()

	cfg, err := config.Load(os.Getenv("JOBKONNECT_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := obs.SetLevel(cfg.Log.Level); err != nil {
		log.Fatal().Err(err).Msg("log level")
	}
	log = obs.Logger()
	obs.Init()
	build := obs.ResolveBuild(version, commit, cfg.Storage.Driver)
	obs.PublishBuild(build)

	tokens, err := auth.NewTokenService(cfg.Auth.Secret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st    store
		probe httpapi.ReadyProbe
	)
	if cfg.Database.DSN != "" {
		pgStore, err := pg.Open(cfg.Database.DSN, pg.PoolOptions{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer pgStore.Close()
		if cfg.Database.MigrateOnStart {
			migrateUp(ctx, pgStore)
		}
		st, probe = pgStore, httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Warn().Msg("database.dsn is empty, using the in-memory store")
		st = memory.New()
	}

	files, err := openFiles(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open file storage")
	}

	proxies, err := httpapi.ParseTrustedProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("parse http.trusted_proxies")
	}

	jobSvc := jobs.NewService(st)
	health := httpapi.NewHealthServer(probe)
	api := httpapi.New(probe, version, tokens, httpapi.Services{
		Accounts:     accounts.NewService(st, tokens),
		Jobs:         jobSvc,
		Applications: applications.NewService(st, jobSvc, files),
	}, files,
		httpapi.WithRateLimit(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond),
		httpapi.WithTrustedProxies(proxies),
		httpapi.WithMaxUploadBytes(cfg.Upload.MaxBytes),
		httpapi.WithHealthServer(health),
	)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", build.Version).Str("commit", build.Commit).Msg("starting jobkonnect-api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPC.Addr != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.GRPC.Addr).Msg("grpc listen")
		}
		grpcSrv = grpc.NewServer()
		health.Register(grpcSrv)
		go func() {
			log.Info().Str("addr", cfg.GRPC.Addr).Msg("starting grpc health")
			if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				log.Error().Err(err).Msg("grpc serve")
			}
		}()
	}
	if err := health.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial readiness check failed")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if grpcSrv != nil {
		health.Shutdown()
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("stopped")
}

func migrateUp(ctx context.Context, st *pg.Store) {
	log := obs.Logger()
	mgr, err := migrate.NewManager(st.DB())
	if err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}
	applied, err := mgr.Up(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}
	log.Info().Strs("applied", applied).Msg("migrations up to date")
}

func openFiles(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Driver == "s3" {
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
			Presign:   cfg.S3.Presign,
		})
	}
	return storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.PublicBaseURL)
}
