package main

import (
	"context"
	"log"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/session"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.Product{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Redis接続（セッションストア）
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	//Repository / セッションストア生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	sessionStore := session.NewRedisSessionStore(rdb, cfg.SessionTTL)

	//Usecase生成
	cartUC := usecase.NewCartUsecase(sessionStore, productRepo, cfg.CartSessionKey)
	productUC := usecase.NewProductUsecase(productRepo)

	//Handler生成
	cartH := handler.NewCartHandler(cartUC, cfg.SessionTTL)
	productH := handler.NewProductHandler(productUC)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, cartH, productH); err != nil {
		log.Fatalf("server: %v", err)
	}
}
