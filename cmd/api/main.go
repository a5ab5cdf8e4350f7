package main

import (
	"log"
	"os"

	_ "payroll/api/swagger" // swagger docs
	"payroll/internal/database"
	"payroll/internal/handler"
	"payroll/internal/middleware"
	"payroll/internal/repository"
	"payroll/internal/service"
	"payroll/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Payroll & Tax Computation API
// @version         1.0
// @description     Payroll engine: contracts, payslip generation with Tunisian CNSS/IRPP rules, payment ledger and tax bracket configuration.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.SeedTaxBrackets(db); err != nil {
		log.Fatalf("Tax bracket seeding failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	contractRepo := repository.NewContractRepository(db)
	historyRepo := repository.NewSalaryHistoryRepository(db)
	payslipRepo := repository.NewPayslipRepository(db)
	bracketRepo := repository.NewTaxBracketRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, middleware.GetJWTSecret())
	contractService := service.NewContractService(contractRepo, historyRepo, auditRepo, txManager, wsHub)
	payslipService := service.NewPayslipService(payslipRepo, contractRepo, bracketRepo, auditRepo, txManager, wsHub)
	bracketService := service.NewTaxBracketService(bracketRepo, auditRepo, txManager)
	transactionService := service.NewTransactionService(transactionRepo, payslipRepo, auditRepo, txManager, wsHub)
	summaryService := service.NewSummaryService(summaryRepo, contractRepo, payslipRepo, transactionRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	contractHandler := handler.NewContractHandler(contractService)
	payslipHandler := handler.NewPayslipHandler(payslipService)
	bracketHandler := handler.NewTaxBracketHandler(bracketService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	summaryHandler := handler.NewSummaryHandler(summaryService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	contractHandler.RegisterRoutes(api)
	payslipHandler.RegisterRoutes(api)
	bracketHandler.RegisterRoutes(api)
	transactionHandler.RegisterRoutes(api)
	summaryHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
