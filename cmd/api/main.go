package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-bakery-ws/internal/feed"
	"go-bakery-ws/internal/handler"
	"go-bakery-ws/internal/middleware"
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"
	"go-bakery-ws/internal/service"
	"go-bakery-ws/pkg/config"
	"go-bakery-ws/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Store{},
		&model.User{},
		&model.Ingredient{},
		&model.Menu{},
		&model.MenuIngredient{},
		&model.StockLogEntry{},
		&model.OrderRecord{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.UpdateList{},
	)

	// 3. Seed the store and the manager account
	seedStoreAndManager(db, cfg)

	// 4. Setup Change Feed Hub
	hub := feed.NewHub()
	go hub.Run()

	// 5. Dependency Injection (Wiring Layers)
	ingredientRepo := repository.NewIngredientRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	stockLogRepo := repository.NewStockLogRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	purchaseRepo := repository.NewPurchaseOrderRepo(db)
	storeRepo := repository.NewStoreRepo(db)
	updateListRepo := repository.NewUpdateListRepo(db)
	userRepo := repository.NewUserRepo(db)

	ledgerService := service.NewLedgerService(ingredientRepo, stockLogRepo, db, hub)
	orderService := service.NewOrderService(menuRepo, orderRepo, db, hub)
	purchaseService := service.NewPurchaseService(purchaseRepo, ledgerService, db, hub, service.ReceiptQtyMode(cfg.ReceiptQtyMode))
	menuService := service.NewMenuService(menuRepo, updateListRepo, db, hub)
	ingredientService := service.NewIngredientService(ingredientRepo, stockLogRepo, db, hub)
	dashService := service.NewDashboardService(orderRepo, stockLogRepo, ingredientRepo)
	authService := service.NewAuthService(userRepo)

	menuHandler := handler.NewMenuHandler(menuService, updateListRepo, cfg.StoreID)
	ingredientHandler := handler.NewIngredientHandler(ingredientService, ledgerService, cfg.StoreID)
	orderHandler := handler.NewOrderHandler(orderService, cfg.StoreID)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService, cfg.StoreID)
	storeHandler := handler.NewStoreHandler(storeRepo, cfg.StoreID)
	dashHandler := handler.NewDashboardHandler(dashService, cfg.StoreID)
	authHandler := handler.NewAuthHandler(authService)
	relayHandler := handler.NewRelayHandler(cfg.OCRServiceURL, cfg.ChatbotURL, cfg.ProductionWebhookURL)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Bakery Ops v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// Chatbot front door is public: it is a stateless passthrough.
	api.Post("/chatbot", relayHandler.Chatbot)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Store
	protected.Get("/store", storeHandler.GetStore)
	protected.Put("/store/state", storeHandler.UpdateState)

	// Menus
	protected.Get("/menus", menuHandler.GetMenus)
	protected.Get("/menus/:id", menuHandler.GetMenu)
	protected.Post("/menus", menuHandler.CreateMenu)
	protected.Put("/menus/:id", menuHandler.UpdateMenu)
	protected.Delete("/menus/:id", middleware.RequireRole(model.RoleManager), menuHandler.DeleteMenu)
	protected.Get("/menus/:id/recipe", menuHandler.GetRecipe)
	protected.Put("/menus/:id/recipe", menuHandler.SetRecipe)
	protected.Post("/menus/:id/production", menuHandler.ApplyProduction)
	protected.Get("/update-lists", menuHandler.GetUpdateLists)

	// Ingredients & stock ledger
	protected.Get("/ingredients", ingredientHandler.GetIngredients)
	protected.Get("/ingredients/restock", ingredientHandler.GetRestockList)
	protected.Post("/ingredients", ingredientHandler.CreateIngredient)
	protected.Put("/ingredients/:id", ingredientHandler.UpdateIngredient)
	protected.Delete("/ingredients/:id", middleware.RequireRole(model.RoleManager), ingredientHandler.DeleteIngredient)
	protected.Get("/ingredients/:id/stock-logs", ingredientHandler.GetStockLogs)
	protected.Get("/ingredients/:id/balance", ingredientHandler.GetBalanceHistory)
	protected.Post("/stock-logs", ingredientHandler.AppendStockLog)

	// Orders
	protected.Post("/orders", orderHandler.PlaceOrder)
	protected.Get("/orders", orderHandler.GetOrders)
	protected.Get("/orders/stats/today", orderHandler.GetTodayStats)

	// Purchase orders
	protected.Get("/purchase-orders", purchaseHandler.GetPurchaseOrders)
	protected.Get("/purchase-orders/:id", purchaseHandler.GetPurchaseOrder)
	protected.Post("/purchase-orders", purchaseHandler.CreatePurchaseOrder)
	protected.Put("/purchase-orders/:id/status", purchaseHandler.UpdateStatus)
	protected.Post("/purchase-orders/:id/receive", purchaseHandler.Receive)
	protected.Post("/purchase-orders/:id/items", purchaseHandler.AddItem)
	protected.Put("/purchase-orders/:id/items/:itemId", purchaseHandler.UpdateItem)

	// Dashboard
	protected.Get("/dashboard/stats", dashHandler.GetTodayStats)
	protected.Get("/dashboard/stock-movement", dashHandler.GetStockMovement)
	protected.Get("/dashboard/low-stock", dashHandler.GetLowStockCount)

	// Collaborator relays
	protected.Post("/ocr/menu-image", relayHandler.PostOcrMenuImage)
	protected.Post("/ocr/menu-recipe", relayHandler.PostOcrMenuRecipe)
	protected.Post("/production/make-bread", relayHandler.MakeBread)

	// WebSocket change feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.Register <- c
		defer func() { hub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedStoreAndManager makes sure a store row and a manager login exist, and
// pins the configured store id to the seeded store when none was set.
func seedStoreAndManager(db *gorm.DB, cfg *config.Config) {
	storeRepo := repository.NewStoreRepo(db)
	userRepo := repository.NewUserRepo(db)

	if cfg.StoreID == uuid.Nil {
		var store model.Store
		err := db.First(&store).Error
		if err != nil {
			store = model.Store{
				Name:      "Our Bakery",
				Address:   "1 Main Street",
				OpenTime:  "07:00",
				CloseTime: "20:00",
				CurState:  true,
			}
			store.CreatedBy = "system"
			store.UpdatedBy = "system"
			if err := storeRepo.Create(&store); err != nil {
				log.Fatalf("Failed to seed store: %v", err)
			}
			log.Println("Default store created:", store.Name)
		}
		cfg.StoreID = store.ID
	}

	if _, err := userRepo.FindByEmail("manager@example.com"); err != nil {
		manager := &model.User{
			Email:    "manager@example.com",
			FullName: "Store Manager",
			Role:     model.RoleManager,
			IsActive: true,
		}
		manager.CreatedBy = "system"
		manager.UpdatedBy = "system"

		if err := manager.SetPassword("manager123"); err != nil {
			log.Printf("Warning: Failed to hash manager password: %v", err)
			return
		}
		if err := userRepo.Create(manager); err != nil {
			log.Printf("Warning: Failed to create manager user: %v", err)
		} else {
			log.Println("Manager user created: manager@example.com / manager123")
		}
	}
}
