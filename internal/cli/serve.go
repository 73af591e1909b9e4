package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnold/blueprint-api/internal/database"
	"github.com/arnold/blueprint-api/internal/handlers"
	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/routes"
	"github.com/arnold/blueprint-api/internal/services"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API: payment verification, the vendor webhook, email
delivery and the wizard session API.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := metrics.Init(); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	services.InitMail(cfg)

	store, err := storage.NewGormStore(database.DB, cfg.StorageQuotaBytes)
	if err != nil {
		return err
	}
	handlers.Init(cfg, store)
	defer handlers.Sessions.CloseAll()

	app := fiber.New(fiber.Config{
		AppName:   "Success Blueprint API",
		BodyLimit: 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	routes.Setup(app)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil && ctx.Err() == nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}

