package main

import (
	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/handler"
	"shop/internal/infra/db"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/logger"
	"shop/internal/paygate"
	"shop/internal/server"
	"shop/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envが無い環境（コンテナ等）では環境変数のみで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductVariation{},
		&model.VariationAttribute{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Invoice{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	variationRepo := infraRepo.NewVariationGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//決済ゲートウェイ
	gateway := paygate.NewClient(cfg.VNPTmnCode, cfg.VNPHashSecret, cfg.VNPPayURL, cfg.VNPReturnURL)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, cfg.JWTSecret)
	cartUC := usecase.NewCartUsecase(cartItemRepo, variationRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	invoiceUC := usecase.NewInvoiceUsecase(txManager, gateway, cfg.ClientURL)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(authUC),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
		Invoice:    handler.NewInvoiceHandler(invoiceUC, log),
	}

	//Server起動
	e := server.New(cfg, log, handlers)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(e, addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
