package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkrupp/catalog-manager/internal/infra/config"
	"github.com/mkrupp/catalog-manager/internal/infra/db"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
	http_ "github.com/mkrupp/catalog-manager/internal/infra/transport/http"
	"github.com/mkrupp/catalog-manager/internal/repo/catalog"
	"github.com/mkrupp/catalog-manager/internal/repo/user"
	"github.com/mkrupp/catalog-manager/internal/svc/authsvc"
	"github.com/mkrupp/catalog-manager/internal/svc/catalogsvc"
)

const (
	appName = "catalogmgr"
	svcName = "websvc"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig      `envPrefix:"LOG_"`
	DB   db.GatewayConfig          `envPrefix:"DB_"`
	Auth authsvc.AuthConfig        `envPrefix:"AUTH_"`
	HTTP http_.HTTPTransportConfig `envPrefix:"HTTP_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)
	defer logging.Shutdown()

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.websvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	for _, path := range []string{cfg.DB.DatabasePath, cfg.Auth.SigningKeyFile} {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}

	gateway, err := db.NewGateway(cfg.DB)
	if err != nil {
		return fmt.Errorf("new gateway: %w", err)
	}
	defer gateway.Close()

	gatewayFactory := db.SharedGatewayFactory(gateway)

	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(gatewayFactory),
		cfg.Auth,
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	catalogSvc, err := catalogsvc.NewCatalogService(
		catalog.SQLiteCatalogRepositoryFactory(gatewayFactory),
	)
	if err != nil {
		return fmt.Errorf("new catalog service: %w", err)
	}

	authTransport := authsvc.NewHTTPTransport(authSvc, authsvc.HTTPTransportConfig{
		HTTPTransportConfig: cfg.HTTP,
	})
	catalogTransport := catalogsvc.NewHTTPTransport(catalogSvc, authSvc, catalogsvc.HTTPTransportConfig{
		HTTPTransportConfig: cfg.HTTP,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/register", authTransport)
	mux.Handle("/api/login", authTransport)
	mux.Handle("/api/logout", authTransport)
	mux.Handle("/api/catalogs", catalogTransport)
	mux.Handle("/api/catalogs/", catalogTransport)

	if err := http_.ListenAndServe(ctx, mux, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
