package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"solarfin-backend/internal/adapter/client"
	httpadp "solarfin-backend/internal/adapter/http"
	"solarfin-backend/internal/adapter/middleware"
	"solarfin-backend/internal/adapter/repository/mysql"
	"solarfin-backend/internal/config"
	"solarfin-backend/internal/energy"
	"solarfin-backend/internal/infrastructure/cache"
	"solarfin-backend/internal/infrastructure/db"
	"solarfin-backend/internal/rates"
	proposaluc "solarfin-backend/internal/usecase/proposal"
	"solarfin-backend/internal/viability"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		logger.Fatal("mysql connect failed", zap.Error(err))
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}

	// repositories + unit of work
	proposalRepo := mysql.NewProposalRepository(gdb)
	scheduleRepo := mysql.NewScheduleRepository(gdb)
	unitOfWork := mysql.NewGormUoW(gdb)

	// external collaborators
	partner := client.NewPartnerClient(cfg.PartnerAPIURL)
	backoffice := client.NewBackofficeClient(cfg.BackofficeAPIURL)

	// domain services
	rateSvc := rates.NewService(rates.NewHTTPSource(cfg.RatesBaseURL), logger).WithTTL(cfg.RatesTTL)
	var runner energy.SimulationRunner
	if cfg.SimulatorBin != "" {
		runner = energy.NewToolRunner(cfg.SimulatorBin)
	}
	estimator := energy.NewEstimator(runner, logger)
	orchestrator := viability.NewOrchestrator(estimator, rateSvc, partner, partner, logger)
	proposals := proposaluc.NewUsecase(proposalRepo, scheduleRepo, unitOfWork, backoffice, backoffice, logger)

	// handlers
	h := httpadp.NewHandler()
	ph := httpadp.NewProposalHandler(proposals)
	sh := httpadp.NewSimulationHandler()
	rh := httpadp.NewRatesHandler(rateSvc)
	vh := httpadp.NewViabilityHandler(orchestrator)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	// routes
	e.GET("/health", h.Health)
	e.GET("/rates", rh.GetRates)
	e.GET("/rates/financing", rh.GetFinancingRate)
	e.POST("/simulations/sac", sh.SimulateSAC)
	e.POST("/simulations/price", sh.SimulatePrice)
	e.POST("/viability", vh.EvaluateViability)

	e.POST("/proposals", ph.CreateProposal, idemp)
	e.POST("/proposals/:proposal_id/approve", ph.ApproveProposal, idemp)
	e.POST("/proposals/:proposal_id/contract", ph.ContractProposal, idemp)
	e.POST("/proposals/:proposal_id/cancel", ph.CancelProposal, idemp)
	e.GET("/proposals/:proposal_id", ph.GetProposal)
	e.GET("/proposals/:proposal_id/schedule", ph.GetProposalSchedule)
	e.GET("/customers/:customer_id/proposals", ph.ListCustomerProposals)

	addr := ":" + cfg.AppPort
	logger.Info("listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
