package main

import (
	"os"
	"os/signal"
	"syscall"

	"echotap.link/configs/configsdatabase"
	"echotap.link/configs/configslog"
	"echotap.link/pkg/legacystore"
	"echotap.link/routes"
	"echotap.link/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	configslog.InitLogger()
	defer configslog.SyncLogger()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	// Eski tek-cihaz verileri için yerel depo; migrasyon kaynağı ve birincil
	// depo erişilemediğinde son çare okuma yolu olarak kullanılır.
	legacyDir := os.Getenv("LEGACY_STORE_DIR")
	if legacyDir == "" {
		legacyDir = "./data/legacy"
	}
	legacy, err := legacystore.NewFileStore(legacyDir)
	if err != nil {
		configslog.Log.Fatal("Eski yerel depo açılamadı", zap.Error(err))
	}

	cardService := services.NewCardService(legacy)

	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: errorHandler,
	})

	routes.SetupRoutes(app, cardService)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		configslog.SLog.Info("Kapatma sinyali alındı, sunucu durduruluyor...")
		_ = app.Shutdown()
	}()

	addr := os.Getenv("APP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	configslog.SLog.Infof("Sunucu %s adresinde dinliyor", addr)
	if err := app.Listen(addr); err != nil {
		configslog.Log.Fatal("Sunucu başlatılamadı", zap.Error(err))
	}
}

// errorHandler yakalanmamış hataları loglar ve standart hata sayfasını döner.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	configslog.Log.Error("Yakalanmamış handler hatası",
		zap.Int("status", code), zap.String("path", c.Path()), zap.Error(err))

	if code == fiber.StatusNotFound {
		return c.Status(code).Render("errors/404", fiber.Map{"Title": "Sayfa Bulunamadı"}, "layouts/error_layout")
	}
	return c.Status(code).Render("errors/500", fiber.Map{"Title": "Sunucu Hatası"}, "layouts/error_layout")
}
