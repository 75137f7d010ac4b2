package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"blog-console/cmd/console/clients/blogclient"
	"blog-console/cmd/console/handlers"
	"blog-console/cmd/console/router"
	"blog-console/cmd/console/services"
	"blog-console/cmd/console/storage"
	"blog-console/cmd/internal/logger"
	"blog-console/config"
)

// @title           Blog Console API
// @version         1.0
// @description     JSON endpoints of the blog management console
// @BasePath        /
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := blogclient.New(blogclient.Options{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	})
	backend := services.NewBlogAPI(client)

	// 서명된 업로드 URL 발급처: 기본은 블로그 API, upload.mode=s3 이면 콘솔이 직접 서명한다.
	var issuer services.UploadTargetIssuer = backend
	if cfg.Upload.Mode == config.UploadModeS3 {
		presigner, err := storage.NewS3Presigner(ctx, storage.S3Options{
			Bucket:    cfg.Upload.Bucket,
			Region:    cfg.Upload.S3.Region,
			Endpoint:  cfg.Upload.S3.Endpoint,
			KeyPrefix: cfg.Upload.S3.KeyPrefix,
			Expires:   cfg.Upload.S3.Expires,
			AccessKey: cfg.Upload.S3.AccessKey,
			SecretKey: cfg.Upload.S3.SecretKey,
		})
		if err != nil {
			logger.Log.Errorf("failed to initialize s3 presigner: %v", err)
			os.Exit(1)
		}
		issuer = presigner
	}

	sessions := services.NewSessionStore(backend, services.SessionOptions{
		TTL: cfg.Server.SessionTTL,
		Coordinator: services.CoordinatorOptions{
			PageSize:        cfg.Listing.PageSize,
			FilterResultCap: cfg.Listing.FilterResultCap,
		},
		Cache:    services.DetailCacheOptions{FetchTimeout: cfg.Cache.FetchTimeout},
		Composer: services.ComposerOptions{Bucket: cfg.Upload.Bucket},
	})

	engine, err := router.New(router.Deps{
		Sessions: sessions,
		Writer:   backend,
		Assets:   client,
		Pinger:   client,
		Uploader: services.NewUploader(issuer, backend),
		Preview: services.NewPreviewService(services.PreviewOptions{
			SidebarSize:  cfg.Listing.SidebarSize,
			AssetBaseURL: cfg.Upload.AssetBaseURL,
		}),
		Cards: services.CardOptions{
			TagLimit:     cfg.Listing.TagBadgeLimit,
			AssetBaseURL: cfg.Upload.AssetBaseURL,
		},
		Composer: handlers.ComposerOptions{
			AssetBaseURL:   cfg.Upload.AssetBaseURL,
			MaxImageBytes:  cfg.Server.MaxUploadBytes,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
		},
	})
	if err != nil {
		logger.Log.Errorf("failed to build router: %v", err)
		os.Exit(1)
	}

	allowed := cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   allowed,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowCredentials: true,
		}).Handler(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 만료된 세션 정리
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Log.Debugf("swept %d expired console sessions", n)
				}
			}
		}
	}()

	go func() {
		logger.Log.Infof("starting blog console on %s (blog api %s, upload mode %s)", cfg.Server.Addr, cfg.API.BaseURL, cfg.Upload.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("console server error: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown 설정
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down blog console...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("console shutdown error: %v", err)
	}
	logger.Log.Info("blog console stopped")
}
