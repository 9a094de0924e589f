package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"causalnotes/internal/config"
	"causalnotes/internal/container"
	"causalnotes/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.Connect(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	server, err := ui.NewServer(appContainer.Experiments, appContainer.Charts, appContainer.Simulator, ui.Settings{
		Alpha:   appConfig.Simulation.Alpha,
		SimSeed: appConfig.Simulation.Seed,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Starting causalnotes preview on port %s", appConfig.Server.Port)
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
