package main

import (
	"domain-hunter/internal/aggregate"
	"domain-hunter/internal/api"
	"domain-hunter/internal/config"
	"domain-hunter/internal/database"
	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"
	"domain-hunter/internal/scheduler"
	"domain-hunter/internal/services"
	"domain-hunter/internal/watchlist"
	"domain-hunter/internal/workflow"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// loadSettingsFromDB loads settings from database and overrides config
func loadSettingsFromDB(cfg *config.Config, lg logger.Logger) {
	db := database.GetDB()
	if db == nil {
		return
	}

	var settings []models.Setting
	if err := db.Find(&settings).Error; err != nil {
		lg.Warn("failed to load settings from database", zap.Error(err))
		return
	}

	// Convert settings array to map
	settingsMap := make(map[string]string)
	for _, s := range settings {
		settingsMap[s.Key] = s.Value
	}

	// Override vendor settings
	if val, ok := settingsMap["vendor.api_url"]; ok && val != "" {
		cfg.Vendor.APIURL = val
	}
	if val, ok := settingsMap["vendor.api_key"]; ok {
		cfg.Vendor.APIKey = val
	}

	// Override scraper settings
	if val, ok := settingsMap["scraper.base_url"]; ok && val != "" {
		cfg.Scraper.BaseURL = val
	}

	// Override profile generator settings
	if val, ok := settingsMap["profile.api_url"]; ok && val != "" {
		cfg.Profile.APIURL = val
	}
	if val, ok := settingsMap["profile.api_key"]; ok {
		cfg.Profile.APIKey = val
	}
	if val, ok := settingsMap["profile.model"]; ok && val != "" {
		cfg.Profile.Model = val
	}

	// Override refresh schedule
	if val, ok := settingsMap["refresh.check_interval"]; ok && val != "" {
		cfg.Refresh.CheckInterval = val
	}

	// Override webhook settings
	if val, ok := settingsMap["webhook.enabled"]; ok {
		cfg.Notifications.Webhook.Enabled = val == "true"
	}
	if val, ok := settingsMap["webhook.url"]; ok {
		cfg.Notifications.Webhook.URL = val
	}

	// Override telegram settings
	if val, ok := settingsMap["telegram.enabled"]; ok {
		cfg.Notifications.Telegram.Enabled = val == "true"
	}
	if val, ok := settingsMap["telegram.bot_token"]; ok {
		cfg.Notifications.Telegram.BotToken = val
	}
	if val, ok := settingsMap["telegram.chat_id"]; ok {
		cfg.Notifications.Telegram.ChatID = val
	}

	lg.Info("settings loaded from database and applied to configuration")
}

// initDefaultAdmin initializes the default admin account
func initDefaultAdmin(authService *services.AuthService, lg logger.Logger) {
	db := database.GetDB()

	// Check if admin user already exists
	var existingUser models.User
	if err := db.Where("username = ?", "admin").First(&existingUser).Error; err == nil {
		lg.Debug("admin account already exists")
		return
	}

	// Create default admin account (username: admin, password: admin123)
	hashedPassword, err := authService.HashPassword("admin123")
	if err != nil {
		lg.Error("failed to hash default admin password", zap.Error(err))
		return
	}

	admin := models.User{
		Username:  "admin",
		Password:  hashedPassword,
		Email:     "admin@example.com",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Create(&admin).Error; err != nil {
		lg.Error("failed to create default admin account", zap.Error(err))
		return
	}

	lg.Info("default admin account created", zap.String("username", "admin"))
}

func parseTimeout(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.NewLogger(cfg.Logging.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	// Initialize database
	if err := database.InitDB(&cfg.Database); err != nil {
		lg.Error("failed to initialize database", zap.Error(err))
		return
	}
	lg.Info("database initialized")

	// Load settings from database and override config
	loadSettingsFromDB(cfg, lg)

	db := database.GetDB()

	// Stores
	records := aggregate.NewStore(db, lg)
	watch := watchlist.NewStore(db, lg)

	// Collaborator clients
	scraperSvc := services.NewScraperService(cfg.Scraper.BaseURL, parseTimeout(cfg.Scraper.Timeout, 60*time.Second))
	vendorSvc := services.NewVendorService(cfg.Vendor.APIURL, cfg.Vendor.APIKey, parseTimeout(cfg.Vendor.Timeout, 30*time.Second))
	profileSvc := services.NewProfileService(cfg.Profile.APIURL, cfg.Profile.APIKey, cfg.Profile.Model, parseTimeout(cfg.Profile.Timeout, 2*time.Minute))
	siteSvc := services.NewSiteBuilderService(cfg.SiteBuilder.APIURL, parseTimeout(cfg.SiteBuilder.Timeout, 60*time.Second))

	// Services
	notifySvc := services.NewNotifyService(&cfg.Notifications, lg)
	enrichSvc := services.NewEnrichService(vendorSvc, records, watch, lg)
	wf := workflow.NewService(db, profileSvc, notifySvc, lg, parseTimeout(cfg.Profile.Timeout, 2*time.Minute))
	authService := services.NewAuthService(cfg.Auth.JWTSecret)

	// Initialize default admin account
	initDefaultAdmin(authService, lg)

	// Initialize scheduler
	if cfg.Refresh.Enabled {
		sched := scheduler.NewScheduler(enrichSvc, lg)
		if err := sched.Start(cfg.Refresh.CheckInterval); err != nil {
			lg.Error("failed to start scheduler", zap.Error(err))
			return
		}
		defer sched.Stop()
	}

	// Setup Gin
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Enable CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Setup API routes
	handler := api.NewHandler(records, watch, wf, scraperSvc, enrichSvc, vendorSvc, siteSvc, authService, lg)
	api.SetupRoutes(r, handler)

	// Serve static files
	r.Static("/static", "./web/dist")

	// Serve frontend
	r.GET("/", func(c *gin.Context) {
		c.File("./web/dist/index.html")
	})

	// Start server
	addr := ":" + cfg.Server.Port
	lg.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		lg.Error("server stopped", zap.Error(err))
	}

	wf.Wait()
}
