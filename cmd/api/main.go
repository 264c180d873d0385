package main

import (
	"context"
	"log"

	"techmart/internal/cart"
	"techmart/internal/config"
	"techmart/internal/domain/model"
	"techmart/internal/handler"
	"techmart/internal/infra/db"
	"techmart/internal/infra/mq"
	infraRedis "techmart/internal/infra/redis"
	infraRepo "techmart/internal/infra/repository"
	"techmart/internal/server"
	"techmart/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	// .envは無ければ無いでよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	//Redis（カートストア）
	rdb, err := infraRedis.NewClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}

	//イベント発行（AMQP_URL未設定なら発行しない）
	var publisher usecase.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("amqp connect: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	cartStore := cart.NewStore(rdb)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, txManager, auditRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, txManager)
	orderUC := usecase.NewOrderUsecase(txManager, productRepo, publisher)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, publisher)
	adminUserUC := usecase.NewAdminUserUsecase(txManager)

	//Handler生成
	handlers := server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC, cartUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, categoryUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC),
	}

	//Server起動
	e := server.New(cfg, handlers)
	if err := server.Start(e, cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
