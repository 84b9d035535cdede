package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"library-assistant-be/internal/bootstrap"
	"library-assistant-be/internal/config"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/server"
	"library-assistant-be/internal/tracer"
	"library-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "production")
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap dependencies: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.TurnConsumerService.Consume(ctx); err != nil {
		sysLogger.Error("MAIN", "Turn consumer failed to start", map[string]interface{}{"error": err.Error()})
	}

	// 6. Run Server until signalled
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		sysLogger.Info("MAIN", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("MAIN", "Shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := srv.Run(); err != nil {
		sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
