package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/robfig/cron"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartgrpc "github.com/dwikikusuma/storefront/internal/cart/grpc"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartredis "github.com/dwikikusuma/storefront/internal/cart/infra/redis"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	cgrpc "github.com/dwikikusuma/storefront/internal/catalog/grpc"
	menustore "github.com/dwikikusuma/storefront/internal/catalog/infra/docstore"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutgrpc "github.com/dwikikusuma/storefront/internal/checkout/grpc"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	checkoutredis "github.com/dwikikusuma/storefront/internal/checkout/infra/redis"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/geocoding"
	"github.com/dwikikusuma/storefront/internal/media"

	identityapp "github.com/dwikikusuma/storefront/internal/identity/app"
	identitygrpc "github.com/dwikikusuma/storefront/internal/identity/grpc"
	userstore "github.com/dwikikusuma/storefront/internal/identity/infra/docstore"
	"github.com/dwikikusuma/storefront/internal/identity/infra/devauth"
	"github.com/dwikikusuma/storefront/internal/identity/infra/idtoken"
	sessionredis "github.com/dwikikusuma/storefront/internal/identity/infra/redis"

	inquiryapp "github.com/dwikikusuma/storefront/internal/inquiry/app"
	inquirygrpc "github.com/dwikikusuma/storefront/internal/inquiry/grpc"
	inquirystore "github.com/dwikikusuma/storefront/internal/inquiry/infra/docstore"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	ordergrpc "github.com/dwikikusuma/storefront/internal/order/grpc"
	orderpg "github.com/dwikikusuma/storefront/internal/order/infra/postgres"

	shopapp "github.com/dwikikusuma/storefront/internal/shop/app"
	shopdomain "github.com/dwikikusuma/storefront/internal/shop/domain"
	shopgrpc "github.com/dwikikusuma/storefront/internal/shop/grpc"
	shopstore "github.com/dwikikusuma/storefront/internal/shop/infra/docstore"

	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/dwikikusuma/storefront/pkg/redis"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	loc := cfg.Location()

	db := mustDB(ctx, cfg, log)
	defer db.Close()

	docs, err := docstore.OpenMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		log.Error("mongo open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := docs.Close(closeCtx); err != nil {
			log.Warn("mongo close failed", slog.Any("err", err))
		}
	}()

	rdb, err := redis.Open(ctx, cfg.Redis.URL)
	if err != nil {
		log.Error("redis open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer rdb.Close()

	// Catalog
	var uploader catalogapp.PhotoUploader
	if cfg.UploadEnabled() {
		cld, err := media.NewCloudinary(media.Config{
			CloudName:    cfg.Upload.CloudName,
			UploadPreset: cfg.Upload.UploadPreset,
			Folder:       "menu",
		}, log)
		if err != nil {
			log.Error("cloudinary setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		uploader = cld
	} else {
		log.Warn("photo upload disabled, cloudinary not configured")
	}
	catalogSvc := catalogapp.NewService(menustore.NewMenuRepo(docs, log), uploader, log)

	// Cart
	cartSvc := cartapp.NewService(
		cartredis.NewCartStore(rdb, cfg.Redis.CartTTL),
		cartadapter.NewCatalogMenuReader(catalogSvc),
		log,
	)

	// Shop settings
	var geocoder shopapp.Geocoder
	if cfg.Geocoding.BaseURL != "" {
		geocoder = geocoding.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, log)
	}
	shopSvc := shopapp.NewService(shopstore.NewSettingsRepo(docs, shopdomain.Defaults{
		Center:        geo.Point{Lat: cfg.Checkout.DefaultLat, Lng: cfg.Checkout.DefaultLng},
		RadiusKm:      cfg.Checkout.DefaultRadiusKm,
		MinOrderValue: decimal.NewFromFloat(cfg.Checkout.MinOrderValue),
	}, log), geocoder, log)
	if err := shopSvc.Start(ctx); err != nil {
		log.Error("shop settings unavailable", slog.Any("err", err))
		os.Exit(1)
	}
	defer shopSvc.Stop()

	// Orders
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db), loc, cfg.Checkout.Currency, log)

	// Checkout (adapters)
	checkoutSvc := checkoutapp.NewService(checkoutapp.Deps{
		Cart:    checkoutadapter.NewCartServiceReader(cartSvc),
		Catalog: checkoutadapter.NewCatalogServiceReader(catalogSvc),
		Terms:   checkoutadapter.NewShopTermsReader(shopSvc),
		Orders:  orderSvc,
		Guard:   checkoutredis.NewGuard(rdb, cfg.Checkout.GuardTTL, log),
	}, checkoutapp.Options{
		LocationTimeout: cfg.Checkout.LocationTimeout,
		Currency:        cfg.Checkout.Currency,
		MaxConcurrent:   10,
	}, log)

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Error("sign-in verifier setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.AppEnv == "dev" && cfg.Auth.Secret == "" && cfg.Auth.PublicKeyFile == "" {
		log.Warn("accepting unsigned dev sign-in credentials")
	}
	identitySvc := identityapp.NewService(
		verifier,
		userstore.NewUserRepo(docs),
		sessionredis.NewSessionStore(rdb),
		cfg.Redis.SessionTTL,
		log,
	)
	inquirySvc := inquiryapp.NewService(inquirystore.NewInquiryRepo(docs, loc, log), loc, log)

	if cfg.AppEnv == "dev" {
		seedMenu(ctx, catalogSvc, log)
	}

	jobs := cron.New()
	alerter := orderapp.NewPendingAlerter(orderSvc, nil, log)
	if err := alerter.Schedule(jobs, cfg.Jobs.PendingAlertSpec, 10*time.Second); err != nil {
		log.Error("invalid pending alert schedule", slog.String("spec", cfg.Jobs.PendingAlertSpec), slog.Any("err", err))
		os.Exit(1)
	}
	jobs.Start()
	defer jobs.Stop()

	addr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", addr))
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	cgrpc.Register(grpcServer, cgrpc.NewServer(catalogSvc))
	cartgrpc.Register(grpcServer, cartgrpc.NewServer(cartSvc))
	checkoutgrpc.Register(grpcServer, checkoutgrpc.NewServer(checkoutSvc))
	ordergrpc.Register(grpcServer, ordergrpc.NewServer(orderSvc))
	shopgrpc.Register(grpcServer, shopgrpc.NewServer(shopSvc))
	identitygrpc.Register(grpcServer, identitygrpc.NewServer(identitySvc))
	inquirygrpc.Register(grpcServer, inquirygrpc.NewServer(inquirySvc, loc))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		shutdown.Drain(log, 10*time.Second, grpcServer.GracefulStop, grpcServer.Stop)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("storefront stopped with error", slog.Any("err", err))
	}
	log.Info("bye")
}

func mustDB(ctx context.Context, cfg config.Config, log *slog.Logger) *sql.DB {
	db, err := postgres.Open(postgres.Config{
		Host: cfg.Postgres.Host,
		Port: cfg.Postgres.Port,
		User: cfg.Postgres.User,
		Pass: cfg.Postgres.Pass,
		DB:   cfg.Postgres.DB,
	})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := orderpg.Migrate(ctx, db); err != nil {
		log.Error("order schema migration failed", slog.Any("err", err))
		os.Exit(1)
	}
	return db
}

// seedMenu fills an empty dev menu so the storefront has something to sell.
func seedMenu(ctx context.Context, svc *catalogapp.Service, log *slog.Logger) {
	items, err := svc.ListItems(ctx, "")
	if err != nil || len(items) > 0 {
		return
	}
	for _, in := range []catalogdomain.ItemInput{
		{Name: "Veg Biryani", Price: decimal.NewFromInt(180), Category: "Biryani"},
		{Name: "Chicken Biryani", Price: decimal.NewFromInt(240), Category: "Biryani"},
		{Name: "Paneer Tikka", Price: decimal.NewFromInt(160), Category: "Starters"},
		{Name: "Sweet Lassi", Price: decimal.NewFromInt(60), Category: "Drinks"},
	} {
		if _, err := svc.CreateItem(ctx, in); err != nil {
			log.Warn("seed menu item failed", slog.String("name", in.Name), slog.Any("err", err))
			return
		}
	}
	log.Info("seeded dev menu")
}

// newVerifier picks the sign-in verifier. Unsigned dev credentials are
// accepted only under APP_ENV=dev with no signing key configured.
func newVerifier(cfg config.Config) (identityapp.Verifier, error) {
	if cfg.AppEnv == "dev" && cfg.Auth.Secret == "" && cfg.Auth.PublicKeyFile == "" {
		return devauth.NewVerifier(), nil
	}
	var pemKey []byte
	if cfg.Auth.PublicKeyFile != "" {
		b, err := os.ReadFile(cfg.Auth.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read auth public key: %w", err)
		}
		pemKey = b
	}
	return idtoken.NewVerifier(idtoken.Config{
		Secret:       cfg.Auth.Secret,
		PublicKeyPEM: pemKey,
		Issuer:       cfg.Auth.Issuer,
		Audience:     cfg.Auth.Audience,
		Leeway:       30 * time.Second,
	})
}
