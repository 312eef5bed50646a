package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/api"
	"github.com/mehrbod2002/ibadmin/internal/config"
	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/logger"
	"github.com/mehrbod2002/ibadmin/internal/middleware"
	"github.com/mehrbod2002/ibadmin/internal/mt5bridge"
	"github.com/mehrbod2002/ibadmin/internal/repository"
	"github.com/mehrbod2002/ibadmin/internal/service"
	"github.com/mehrbod2002/ibadmin/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
		OutputFile: cfg.LogFile,
	})
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(pingCtx, db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	adminRepo := repository.NewAdminRepository(db, repository.CollectionAdmins)
	logRepo := repository.NewLogRepository(db, repository.CollectionLogs)
	ibRepo := repository.NewIBRequestRepository(db, repository.CollectionIBRequests)
	structureRepo := repository.NewStructureRepository(db, repository.CollectionStructures, repository.CollectionStructureSets)
	groupRepo := repository.NewTradingGroupRepository(db, repository.CollectionTradingGroups)
	accountRepo := repository.NewTradingAccountRepository(db, repository.CollectionTradingAccounts)
	symbolRepo := repository.NewSymbolRepository(db, repository.CollectionSymbols)
	tradeRepo := repository.NewTradeRepository(db, repository.CollectionTrades)
	withdrawalRepo := repository.NewWithdrawalRepository(db, repository.CollectionWithdrawals)
	commissionRepo := repository.NewCommissionRepository(db, repository.CollectionCommissions)

	if err := config.EnsureAdminUser(adminRepo, cfg.AdminUser, cfg.AdminPass, log); err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)
	wsHandler := ws.NewWebSocketHandler(hub, log)

	publisher := events.Multi{hub}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafka := events.NewKafkaPublisher(brokers)
		defer kafka.Close()
		publisher = append(publisher, kafka)
		log.Info("publishing events to Kafka", zap.Strings("brokers", brokers))
	}

	logService := service.NewLogService(logRepo)
	adminService := service.NewAdminService(adminRepo)
	structureService := service.NewStructureService(structureRepo, logService, log)
	ibService, err := service.NewIBRequestService(ibRepo, structureService, logService, publisher, log)
	if err != nil {
		return err
	}
	groupService := service.NewTradingGroupService(groupRepo, logService, publisher, log)
	symbolService := service.NewSymbolService(symbolRepo, logService, log)
	commissionService := service.NewCommissionService(ibRepo, accountRepo, tradeRepo, withdrawalRepo, commissionRepo, logService, publisher, log)
	withdrawalService := service.NewWithdrawalService(withdrawalRepo, ibService, commissionService, logService, publisher, log)
	dashboardService := service.NewDashboardService(ibRepo, withdrawalRepo, commissionRepo, groupRepo)

	bridge := mt5bridge.NewServer(cfg.MT5ListenPort, log)
	mt5bridge.NewFeed(commissionService, groupService, symbolService, log).Register(bridge)
	if err := bridge.Start(ctx); err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))

	api.SetupRoutes(r, cfg, api.Services{
		Admin:        adminService,
		Log:          logService,
		IBRequest:    ibService,
		Structure:    structureService,
		TradingGroup: groupService,
		Symbol:       symbolService,
		Withdrawal:   withdrawalService,
		Commission:   commissionService,
		Dashboard:    dashboardService,
	}, wsHandler, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("swagger", cfg.BaseURL+"/swagger/index.html"),
			zap.String("websocket", cfg.BaseURL+"/api/admin/ws"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	stop()
	bridge.Wait()
	return nil
}
