package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/FleetShare/FleetShare/internal/booking"
	"github.com/FleetShare/FleetShare/internal/common/cache"
	"github.com/FleetShare/FleetShare/internal/common/clock"
	"github.com/FleetShare/FleetShare/internal/common/config"
	"github.com/FleetShare/FleetShare/internal/common/db"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/FleetShare/FleetShare/internal/common/server"
	"github.com/FleetShare/FleetShare/internal/common/tracing"
	"github.com/FleetShare/FleetShare/internal/maintenance"
	"github.com/FleetShare/FleetShare/internal/report"
	"github.com/FleetShare/FleetShare/internal/user"
	"github.com/FleetShare/FleetShare/internal/vehicle"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	configPath  = flag.String("config", "configs/fleet-service.json", "配置文件路径")
	consulHost  = flag.String("consul-host", "", "从 Consul KV 加载配置时的地址（留空则读本地文件）")
	consulPort  = flag.Int("consul-port", 8500, "Consul 端口")
	consulKVKey = flag.String("consul-kv-key", "fleet-service/config", "Consul KV 配置键")
)

func main() {
	flag.Parse()

	// 加载配置：优先 Consul KV，退回本地文件
	var cfg *config.Config
	var err error
	if *consulHost != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulKVKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 数据库
	gormDB, err := db.NewMySQL(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&vehicle.Vehicle{},
		&booking.Booking{},
		&booking.Usage{},
		&maintenance.Task{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// Redis 读缓存（连不上降级为无缓存）
	var readCache cache.Cache
	if redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis); err != nil {
		log.Warnf("failed to connect redis, running without cache: %v", err)
	} else {
		readCache = cache.NewRedisCache(redisClient)
	}

	validate := validator.New()

	// 仓储与服务装配
	userSvc := user.NewService(user.NewRepo(gormDB), cfg.Auth, validate, log)
	vehicleRepo := vehicle.NewRepo(gormDB)
	vehicleSvc := vehicle.NewService(vehicleRepo, readCache, validate, log)
	bookingSvc := booking.NewService(booking.NewRepo(gormDB), vehicleRepo, nil, clock.System{}, log)
	maintenanceSvc := maintenance.NewService(maintenance.NewRepo(gormDB), clock.System{}, log)
	reportSvc := report.NewService(report.NewRepo(gormDB), readCache, log)

	userHandler := user.NewHandler(userSvc)
	vehicleHandler := vehicle.NewHandler(vehicleSvc)
	bookingHandler := booking.NewHandler(bookingSvc)
	maintenanceHandler := maintenance.NewHandler(maintenanceSvc)
	reportHandler := report.NewHandler(reportSvc)

	// 启动统一的 HTTP 服务模板
	err = server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		api := r.Group("/api/v1")
		userHandler.RegisterRoutes(api)
		vehicleHandler.RegisterRoutes(api)
		bookingHandler.RegisterRoutes(api)
		maintenanceHandler.RegisterRoutes(api)
		reportHandler.RegisterRoutes(api)
		return nil
	}, server.WithReleaseMode(cfg.Log.Level != "debug"))
	if err != nil {
		log.Fatalf("fleet-service exited with error: %v", err)
	}
}
