package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	"github.com/spirittours/erp-hub/internal/application/erp"
	appsync "github.com/spirittours/erp-hub/internal/application/sync"
	infracfdi "github.com/spirittours/erp-hub/internal/infrastructure/cfdi"
	"github.com/spirittours/erp-hub/internal/infrastructure/cfdi/pac"
	"github.com/spirittours/erp-hub/internal/infrastructure/erp/contpaqi"
	"github.com/spirittours/erp-hub/internal/infrastructure/erp/quickbooks"
	infrapdf "github.com/spirittours/erp-hub/internal/infrastructure/pdf"
	"github.com/spirittours/erp-hub/internal/infrastructure/postgres"
	httpRouter "github.com/spirittours/erp-hub/internal/interfaces/http"
	"github.com/spirittours/erp-hub/pkg/config"
	"github.com/spirittours/erp-hub/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	configRepo := postgres.NewERPConfigRepository(pool)
	mappingRepo := postgres.NewMappingRepository(pool)
	logRepo := postgres.NewSyncLogRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	receivableRepo := postgres.NewReceivableRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	billRepo := postgres.NewBillRepository(pool)
	cfdiDocRepo := postgres.NewCFDIDocumentRepository(pool)

	// Adaptadores ERP: cada proveedor registra su constructor; la sucursal
	// decide cuál se usa vía su configuración.
	factory := erp.NewFactory()
	factory.Register("quickbooks", quickbooks.Builder)
	factory.Register("contpaqi", contpaqi.Builder)

	orchestrator := appsync.NewOrchestrator(
		configRepo, mappingRepo, logRepo,
		customerRepo, receivableRepo, paymentRepo, vendorRepo, billRepo,
		factory, cfg.Sync, log,
	)

	// Pipeline CFDI: constructor XML → firmador CSD → cliente PAC.
	// Sin CSD configurado los comprobantes salen sin sello (desarrollo).
	var signer appcfdi.Signer = infracfdi.UnsignedSigner{}
	if cfg.CFDI.CertPath != "" {
		csd, err := infracfdi.LoadCSD(cfg.CFDI.CertPath, cfg.CFDI.CertKeyPath, cfg.CFDI.CertPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar CSD")
		}
		signer, err = infracfdi.NewCSDSigner(csd)
		if err != nil {
			log.Fatal().Err(err).Msg("construir firmador CSD")
		}
	} else {
		log.Warn().Msg("CFDI sin CSD configurado: los comprobantes no se sellarán")
	}

	pacClient, err := pac.NewClient(cfg.CFDI)
	if err != nil {
		log.Fatal().Err(err).Msg("construir cliente PAC")
	}
	generator := appcfdi.NewGenerator(infracfdi.NewXMLBuilderService(), signer, pacClient, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ERP Hub API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orchestrator:  orchestrator,
		Generator:     generator,
		Documents:     cfdiDocRepo,
		Parser:        infracfdi.NewXMLParserService(),
		Renderer:      infrapdf.NewMarotoPDFGenerator(),
		Payments:      paymentRepo,
		Receivables:   receivableRepo,
		JWTSecret:     cfg.JWT.Secret,
		WebhookSecret: cfg.HTTP.WebhookSecret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
