package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"invoice-courier/internal/creds"
	"invoice-courier/internal/invoices"
	"invoice-courier/internal/notify"
	"invoice-courier/internal/retention"
	"invoice-courier/internal/shared/config"
	"invoice-courier/internal/shared/storage/db"
	"invoice-courier/internal/shared/telemetry"
	"invoice-courier/internal/storage"
	drivestore "invoice-courier/internal/storage/drive"
	s3store "invoice-courier/internal/storage/s3"
)

// App holds the shared dependencies of the poller process.
type App struct {
	Config      config.Config
	DB          *sql.DB
	TokenSource oauth2.TokenSource
	Gateway     storage.Gateway
	Folder      storage.Folder

	InvoicesRepo  invoices.Repo
	ProfileRepo   notify.ProfileRepo
	LogRepo       notify.LogRepo
	NotifyService *notify.Service
	Poller        *invoices.Service
	Sweeper       *retention.Sweeper
}

// Build prepares the database pool, the storage gateway with its folder
// handle, and the poller and sweeper services on top of them. A credential
// failure surfaces creds.ErrReauthRequired for the caller to exit on.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	sqlDB, err := db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultPollerOptions()))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var ts oauth2.TokenSource
	if cfg.StorageBackend == "drive" {
		store := creds.New(cfg.DriveClientID, cfg.DriveSecret, cfg.TokenFile)
		store.OnUpdate = func(tok *oauth2.Token) {
			telemetry.Info("creds.refreshed", map[string]any{
				"expiry": tok.Expiry.UTC().Format(time.RFC3339),
			})
		}
		ts, err = store.Acquire(ctx)
		if err != nil {
			return nil, err
		}
	}

	gateway, err := buildGateway(ctx, cfg, ts)
	if err != nil {
		return nil, err
	}

	folder, err := gateway.EnsureFolder(ctx, cfg.FolderPath)
	if err != nil {
		return nil, fmt.Errorf("ensure folder %v: %w", cfg.FolderPath, err)
	}

	invoicesRepo := &invoices.PGRepo{DB: sqlDB}
	profileRepo := &notify.PGProfileRepo{DB: sqlDB}
	logRepo := &notify.PGLogRepo{DB: sqlDB}

	notifyService := &notify.Service{
		Profiles: profileRepo,
		Log:      logRepo,
		Client:   notify.NewGatewayClient(cfg.SMSGatewayURL),
	}

	app := &App{
		Config:        cfg,
		DB:            sqlDB,
		TokenSource:   ts,
		Gateway:       gateway,
		Folder:        folder,
		InvoicesRepo:  invoicesRepo,
		ProfileRepo:   profileRepo,
		LogRepo:       logRepo,
		NotifyService: notifyService,
		Poller: &invoices.Service{
			Repo:     invoicesRepo,
			Gateway:  gateway,
			Folder:   folder,
			Notifier: notifyService,
		},
		Sweeper: &retention.Sweeper{
			Gateway: gateway,
			Folder:  folder,
			Window:  cfg.RetentionWindow,
		},
	}
	return app, nil
}

func buildGateway(ctx context.Context, cfg config.Config, ts oauth2.TokenSource) (storage.Gateway, error) {
	switch cfg.StorageBackend {
	case "s3":
		gw, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("s3 gateway: %w", err)
		}
		return gw, nil
	default:
		gw, err := drivestore.New(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("drive gateway: %w", err)
		}
		return gw, nil
	}
}
