package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"match-event-service/config"
	"match-event-service/database"
	"match-event-service/services"
	"match-event-service/web"
)

func main() {
	log.Println("Starting Match Event Service...")

	// 加载配置
	cfg := config.Load()

	// 连接数据库
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 运行数据库迁移
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database connected and migrated")

	// 创建存储
	matchStore := services.NewPostgresMatchStore(db)
	rosterStore := services.NewPostgresRosterStore(db)
	statsStore := services.NewPostgresStatsStore(db)

	// 创建消息队列
	var broker services.MessageBroker
	if cfg.BrokerBackend == "amqp" {
		amqpBroker, err := services.NewAMQPBroker(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to AMQP: %v", err)
		}
		broker = amqpBroker
	} else {
		broker = services.NewInMemoryBroker()
	}
	defer broker.Close()

	log.Printf("Message broker started (backend: %s)", cfg.BrokerBackend)

	// 启动统计聚合消费者
	statsConsumer := services.NewStatsConsumer(broker, statsStore)
	if err := statsConsumer.Start(); err != nil {
		log.Fatalf("Stats consumer error: %v", err)
	}

	// 启动比赛关联消费者
	correlator := services.NewCorrelator(broker, statsStore)
	if err := correlator.Start(); err != nil {
		log.Fatalf("Correlator error: %v", err)
	}

	log.Println("Consumers started")

	// 创建WebSocket Hub
	wsHub := web.NewHub()
	go wsHub.Run()

	// 创建业务服务
	matchService := services.NewMatchService(matchStore, broker)
	eventService := services.NewEventService(matchStore, rosterStore, broker, wsHub)

	// 启动Web服务器
	server := web.NewServer(cfg, matchService, eventService, statsStore, rosterStore, wsHub)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Web server error: %v", err)
		}
	}()

	log.Printf("Web server started on port %s", cfg.Port)
	log.Println("Service is running. Press Ctrl+C to stop.")

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down service...")

	// 清理资源
	server.Stop()

	log.Println("Service stopped")
}
