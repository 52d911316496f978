package main

import (
	"context"
	"log"
	"os"

	"research-hub-api/config"
	"research-hub-api/internal/assistant"
	"research-hub-api/internal/auth"
	"research-hub-api/internal/export"
	"research-hub-api/internal/form"
	"research-hub-api/internal/logs"
	"research-hub-api/internal/project"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	dsn := "host=" + cfg.DBHost +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" port=" + cfg.DBPort +
		" sslmode=disable"

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.ShareBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	logService := &logs.LogService{DB: db}
	logs.RegisterRoutes(r, logService)

	userService := &auth.AuthService{DB: db}
	auth.RegisterRoutes(r, userService, logService)

	projectService := &project.ProjectService{DB: db}
	project.RegisterRoutes(r, projectService)

	formService := &form.FormService{DB: db, CFG: &cfg, Logs: logService}
	form.RegisterRoutes(r, formService)

	exportService := &export.ExportService{Forms: formService}
	export.RegisterRoutes(r, exportService)

	// Create client with ADC (production)
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  os.Getenv("GCP_PROJECT"),
		Location: "global",
	})
	if err != nil {
		log.Fatal("Failed to create genai client:", err)
	}

	assistantService := &assistant.AssistantService{Forms: formService, Client: client}
	assistant.RegisterRoutes(r, assistantService)

	// --- Cloud Run expects plain HTTP, on $PORT, bind to 0.0.0.0 ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
