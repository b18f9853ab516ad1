package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"healthvault-data/internal/config"
	httpapi "healthvault-data/internal/http"
	vitalsmqtt "healthvault-data/internal/mqtt"
	"healthvault-data/internal/repository"
	"healthvault-data/internal/service"
	"healthvault-data/internal/store"
	"healthvault-data/pkg/database"
	"healthvault-data/pkg/logger"
	"healthvault-data/pkg/mqttclient"
	"healthvault-data/pkg/redisclient"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "healthvault-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !cfg.DBEnabled {
		log.Fatal("healthvault-data requires a database (set DB_ENABLED=true)")
	}
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	redisClient := redisclient.NewRedisClient(&redisclient.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var kv store.KV
	if err := redisclient.Ping(context.Background(), redisClient); err != nil {
		// Redis 不可用只影响缓存，不阻塞启动
		log.Warn("Redis unavailable, running without cache", zap.Error(err))
	} else {
		kv = store.NewRedisKV(redisClient)
	}

	// Repository 层
	membersRepo := repository.NewPostgresFamilyMembersRepository(db)
	conditionsRepo := repository.NewPostgresGeneticConditionsRepository(db)
	assessmentsRepo := repository.NewPostgresRiskAssessmentsRepository(db)
	recordsRepo := repository.NewPostgresMedicalRecordsRepository(db)
	medicationsRepo := repository.NewPostgresMedicationsRepository(db)
	appointmentsRepo := repository.NewPostgresAppointmentsRepository(db)
	vitalsRepo := repository.NewPostgresVitalsRepository(db)

	// Service 层
	var catalogClient *service.CatalogClient
	if cfg.Catalog.HttpAddress != "" {
		catalogClient = service.NewCatalogClient(cfg.Catalog.HttpAddress, cfg.Catalog.APIKey, log)
	}
	catalogService := service.NewCatalogService(conditionsRepo, catalogClient, log)
	familyService := service.NewFamilyService(membersRepo, conditionsRepo, assessmentsRepo, kv, log)
	monitoringService := service.NewMonitoringService(vitalsRepo, assessmentsRepo, log)
	recordsService := service.NewRecordsService(recordsRepo, medicationsRepo, appointmentsRepo, log)

	// 内置目录种子化
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := catalogService.Seed(bootCtx); err != nil {
		log.Error("Catalog seeding failed", zap.Error(err))
	}
	if cfg.Catalog.SyncOnBoot && catalogClient != nil {
		if err := catalogService.SyncRemote(bootCtx); err != nil {
			log.Warn("Boot-time catalog sync failed", zap.Error(err))
		}
	}
	bootCancel()

	// HTTP 层
	router := httpapi.NewRouter(log)
	router.RegisterFamilyRoutes(httpapi.NewFamilyHandler(familyService, log))
	router.RegisterRecordsRoutes(httpapi.NewRecordsHandler(recordsService, log))
	router.RegisterVitalsRoutes(httpapi.NewVitalsHandler(monitoringService, log))
	router.RegisterAnalyticsRoutes(httpapi.NewAnalyticsHandler(monitoringService, log))
	router.RegisterCatalogRoutes(httpapi.NewCatalogHandler(catalogService, log))

	// MQTT 设备体征接入（可选）
	var vitalsBroker *vitalsmqtt.VitalsBroker
	var mqttClient *mqttclient.Client
	if cfg.MQTT.Enabled {
		if c, err := mqttclient.NewClient(cfg.MQTTClientConfig()); err == nil {
			mqttClient = c
			vitalsBroker = vitalsmqtt.NewVitalsBroker(monitoringService, c, cfg.MQTT.Topic, 1, log)
			if err := vitalsBroker.Start(context.Background()); err != nil {
				log.Error("Failed to start vitals MQTT broker", zap.Error(err))
			}
		} else {
			log.Warn("MQTT enabled but connection failed", zap.Error(err))
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if vitalsBroker != nil {
		_ = vitalsBroker.Stop(shutdownCtx)
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = redisclient.Close(redisClient)
	_ = database.Close(db)
}
