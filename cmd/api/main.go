package main

import (
	"context"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cartstore"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/storage"
	"app/internal/upi"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	//.envは無ければ無いでよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer lg.Sync()

	cfg, err := config.Load()
	if err != nil {
		lg.Fatal("config load failed", zap.Error(err))
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.DownloadLog{},
		&model.AuditLog{},
	); err != nil {
		lg.Fatal("db migrate failed", zap.Error(err))
	}

	//カートストア（Redis）
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		lg.Fatal("redis connect failed", zap.Error(err))
	}
	cartStore := cartstore.NewRedisCartStore(redisClient)

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	downloadLogRepo := infraRepo.NewDownloadLogGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//支払いリクエスト（UPIリンク＋QR）
	upiBuilder := upi.NewBuilder(cfg.UPIVPAddress, cfg.UPIPayeeName)

	//署名URL（クリティカルパスなので設定必須）
	blobStore, err := storage.NewHMACStore(cfg.DownloadSecret, cfg.DownloadBaseURL)
	if err != nil {
		lg.Fatal("storage init failed", zap.Error(err))
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, cartStore, upiBuilder, lg)
	downloadUC := usecase.NewDownloadUsecase(txManager, blobStore, orderItemRepo, productRepo, downloadLogRepo, lg)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, orderItemRepo, auditRepo, lg)

	//Handler生成＋ルート登録
	e := server.New(lg)
	handler.NewProductHandler(productUC).RegisterRoutes(e)
	handler.NewCartHandler(cartUC).RegisterRoutes(e, cfg)
	handler.NewOrderHandler(orderUC, downloadUC).RegisterRoutes(e, cfg)
	handler.NewAdminOrderHandler(adminOrderUC).RegisterRoutes(e, cfg)

	//ファイル配信は設定されているときだけ（縮退モードを起動時に明示する）
	if cfg.FileServingEnabled() {
		handler.NewFileHandler(blobStore, cfg.FilesDir).RegisterRoutes(e)
		lg.Info("file serving enabled", zap.String("dir", cfg.FilesDir))
	} else {
		lg.Info("file serving disabled, downloads are served by the external blob store")
	}

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	lg.Info("starting api server", zap.String("addr", addr))
	if err := server.Start(e, addr); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
