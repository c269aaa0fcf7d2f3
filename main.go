package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/routes"
	"fieldpro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(settings.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	config.Logger = logger
	config.App = settings

	if err := config.ConnectDB(settings.DB); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := config.DB.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	var sender services.MessageSender
	if settings.Twilio.Enabled() {
		sender = services.NewTwilioSender(settings.Twilio.AccountSID, settings.Twilio.AuthToken, settings.Twilio.From)
	} else {
		logger.Info("twilio not configured, SMS alerts disabled")
	}
	payments, err := services.NewMercadoPagoGateway(settings.MercadoPago.AccessToken, settings.MercadoPago.Mock, logger)
	if err != nil {
		logger.Fatal("failed to configure payment gateway", zap.Error(err))
	}

	notifications := services.NewNotificationService(config.DB, sender, logger)
	invoices := services.NewInvoiceService(config.DB, payments, notifications, logger)
	inventory := services.NewInventoryService(config.DB, notifications, logger)
	controllers.Use(controllers.Dependencies{
		Invoices:      invoices,
		Inventory:     inventory,
		Notifications: notifications,
	})

	if settings.Scheduler.Enabled {
		scheduler, err := services.NewScheduler(settings.Scheduler.OverdueSpec, invoices, notifications, logger)
		if err != nil {
			logger.Fatal("failed to configure scheduler", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	r := routes.SetupRouter(settings, logger)
	printRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := r.Run(":" + settings.Server.Port); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	<-ctx.Done()
	logger.Info("shutting down")
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
