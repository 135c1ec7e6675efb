package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	auditpersistence "github.com/iota-uz/bankcrm/modules/audit/infrastructure/persistence"
	auditcontrollers "github.com/iota-uz/bankcrm/modules/audit/presentation/controllers"
	auditservices "github.com/iota-uz/bankcrm/modules/audit/services"
	corepersistence "github.com/iota-uz/bankcrm/modules/core/infrastructure/persistence"
	corecontrollers "github.com/iota-uz/bankcrm/modules/core/presentation/controllers"
	coreservices "github.com/iota-uz/bankcrm/modules/core/services"
	crmpersistence "github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence"
	crmcontrollers "github.com/iota-uz/bankcrm/modules/crm/presentation/controllers"
	crmservices "github.com/iota-uz/bankcrm/modules/crm/services"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/configuration"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
	"github.com/iota-uz/bankcrm/pkg/metrics"
	"github.com/iota-uz/bankcrm/pkg/middleware"
	"github.com/iota-uz/bankcrm/pkg/rbac"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		logger.WithError(err).Fatal("failed to create database pool")
	}
	defer pool.Close()

	bus := eventbus.NewEventPublisher(logger)

	rbacSvc, err := rbac.NewService(rbac.Config{
		ModelPath:  conf.RBAC.ModelPath,
		PolicyPath: conf.RBAC.PolicyPath,
		Logger:     logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize rbac")
	}

	userRepo := corepersistence.NewUserRepository()
	orgUnitRepo := corepersistence.NewOrgUnitRepository()
	customerRepo := crmpersistence.NewCustomerRepository()
	opportunityRepo := crmpersistence.NewOpportunityRepository()
	taskRepo := crmpersistence.NewTaskRepository()
	targetRepo := crmpersistence.NewTargetRepository()
	auditRepo := auditpersistence.NewAuditLogRepository()

	users := coreservices.NewUserService(userRepo, bus)
	units := coreservices.NewOrgUnitService(orgUnitRepo, bus)
	audit := auditservices.NewAuditService(auditRepo, conf.Audit.Enabled)

	strict := conf.Lifecycle.StrictStages
	customers := crmservices.NewCustomerService(customerRepo, opportunityRepo, units, audit, bus, strict)
	opportunities := crmservices.NewOpportunityService(opportunityRepo, customerRepo, targetRepo, units, audit, bus, strict)
	tasks := crmservices.NewTaskService(taskRepo, units, audit, bus)
	targets := crmservices.NewTargetService(targetRepo, units, audit)

	// The org unit tree is consulted on every authorization decision; load
	// it before accepting traffic.
	bootCtx := composables.WithPool(context.Background(), pool)
	if err := units.Reload(bootCtx); err != nil {
		logger.WithError(err).Fatal("failed to load org unit tree")
	}

	if conf.Lifecycle.SweepEnabled {
		sweeper := crmservices.NewOverdueSweeper(tasks, conf.Lifecycle.SweepSchedule, logger)
		if err := sweeper.Start(bootCtx); err != nil {
			logger.WithError(err).Fatal("failed to start overdue sweeper")
		}
		defer sweeper.Stop()
	}

	router := mux.NewRouter()
	router.Use(
		middleware.WithLogger(logger),
		middleware.WithPool(pool),
		middleware.RequestParams(),
	)

	if conf.Prometheus.Enabled {
		metrics.NewPrometheusController(conf.Prometheus.Path).Register(router)
	}

	api := router.PathPrefix("/").Subrouter()
	api.Use(
		middleware.BasicAuth(users),
		middleware.RBACGuard(rbacSvc),
	)

	corecontrollers.NewUserAPIController(users).Register(api)
	corecontrollers.NewOrgUnitAPIController(units).Register(api)
	crmcontrollers.NewCustomerAPIController(customers).Register(api)
	crmcontrollers.NewOpportunityAPIController(opportunities).Register(api)
	crmcontrollers.NewTaskAPIController(tasks).Register(api)
	crmcontrollers.NewTargetAPIController(targets).Register(api)
	auditcontrollers.NewAuditAPIController(audit).Register(api)

	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", conf.SocketAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
