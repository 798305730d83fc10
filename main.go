package main

import (
	"context"
	"embed"
	"io/fs"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"corrlab/internal/config"
	"corrlab/internal/container"
	"corrlab/ui"
)

//go:embed ui/templates/* ui/static/*
var embeddedFiles embed.FS

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

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	assets, err := fs.Sub(embeddedFiles, "ui")
	if err != nil {
		log.Fatalf("Failed to open embedded assets: %v", err)
	}

	server, err := ui.NewServer(assets, appContainer.Explorer, appContainer.Renderer, appContainer.SSEHub, appContainer.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Starting corrlab on port %s", appConfig.Server.Port)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
