package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/internal/handler"
	"smartwallet-core/internal/model"
	"smartwallet-core/internal/server"
	"smartwallet-core/internal/service"
	"smartwallet-core/internal/service/mq"
	"smartwallet-core/pkg/config"
	"smartwallet-core/pkg/database"
	"smartwallet-core/pkg/logger"
	"smartwallet-core/pkg/utils/lock"
)

func main() {
	config.Init()

	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)

	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("connecting to postgres failed", zap.Error(err))
	}

	// Development convenience; production schemas go through cmd/migrate.
	if config.Global.App.Env == "development" {
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("auto migration failed", zap.Error(err))
		}
	}

	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("connecting to redis failed", zap.Error(err))
	}

	// Session key: the mnemonic comes from config (WALLET_MNEMONIC in
	// production) and only the derived key leaves this scope.
	mnemonic := config.Global.Wallet.Mnemonic
	if mnemonic == "" {
		logger.Fatal("no wallet mnemonic configured, run 'wallet-cli new' and set WALLET_MNEMONIC")
	}

	keys := service.NewKeyService()
	sessionKey, err := keys.SessionKey(mnemonic, "")
	if err != nil {
		logger.Fatal("deriving session key failed", zap.Error(err))
	}
	logger.Info("session key derived", zap.String("keyAddress", sessionKey.Address))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw, err := gateway.Dial(ctx, config.Global.Gateway.Url, config.Global.Gateway.Network)
	if err != nil {
		logger.Fatal("dialing gateway failed", zap.Error(err))
	}
	defer gw.Destroy()

	// Services
	locker := lock.NewRedisLock(rdb)
	batchService := service.NewBatchService(gw)
	depositService := service.NewDepositService(gw)
	reconcileService := service.NewReconcileService(gw)
	walletService := service.NewWalletService(
		db, gw, batchService, depositService, reconcileService,
		locker, config.Global.Wallet.PaymentTokenSymbol,
	)

	if err := walletService.InitSession(ctx, sessionKey.PrivateKeyHex); err != nil {
		logger.Fatal("gateway session init failed", zap.Error(err))
	}

	// Message queue: Kafka in production, Redis Streams for local dev.
	var producer mq.Producer
	var consumer mq.Consumer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("using kafka as the event bus")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers)
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "wallet_tracker_group")
	} else {
		logger.Info("using redis streams as the event bus")
		producer = mq.NewRedisProducer(rdb)
		consumer = mq.NewRedisConsumer(rdb, "wallet_tracker", "tracker-0")
	}

	// Outbox relay
	relayService := service.NewRelayService(db, producer)
	go relayService.Start(ctx)

	// Submitted-batch tracker
	trackerService := service.NewTrackerService(db, gw, consumer)
	go func() {
		if err := trackerService.Start(ctx); err != nil {
			logger.Error("tracker failed", zap.Error(err))
		}
	}()
	defer trackerService.Close()

	// Periodic sync
	pollerService := service.NewPollerService(walletService, locker, config.Global.Wallet.SyncInterval)
	if err := pollerService.Start(); err != nil {
		logger.Fatal("scheduling wallet sync failed", zap.Error(err))
	}
	defer pollerService.Stop()

	walletHandler := handler.NewWalletHandler(walletService, batchService)
	r := server.NewHTTPRouter(walletHandler)

	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	app.Run()

	logger.Info("closing database connections...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("exited")
}
