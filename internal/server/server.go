// Package server assembles the HTTP application from a configuration and a
// document store.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wings-inventory/internal/config"
	"wings-inventory/internal/events"
	"wings-inventory/internal/handler"
	"wings-inventory/internal/middleware"
	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/router"
	"wings-inventory/internal/service"
	"wings-inventory/internal/store"
	"wings-inventory/internal/theme"
	"wings-inventory/internal/ws"
	"wings-inventory/pkg/jwt"
)

type Server struct {
	App  *fiber.App
	Auth service.AuthService
	Gate *router.Gate
	Hub  *ws.Hub
	Bus  *events.Bus

	cfg    config.Config
	broker *events.AMQPPublisher
}

// New wires repositories, services, the session gate and the routes.
func New(cfg config.Config, backend store.Backend) (*Server, error) {
	themes, err := theme.Load(cfg.ThemeFile)
	if err != nil {
		return nil, err
	}
	active, err := themes.Get(cfg.Theme)
	if err != nil {
		return nil, err
	}

	// 1. Event fan-out
	wsHub := ws.NewHub()
	bus := events.NewBus()
	if err := bus.Subscribe(func(e events.Event) { wsHub.Notify(e) }); err != nil {
		return nil, err
	}
	var broker *events.AMQPPublisher
	if cfg.AMQPURL != "" {
		broker, err = events.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue, cfg.Backend.MessagingSenderID)
		if err != nil {
			zap.L().Warn("amqp unavailable, events stay in process", zap.Error(err))
		} else if err := bus.Subscribe(broker.Forward); err != nil {
			return nil, err
		}
	}

	// 2. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(backend)
	accountRepo := repository.NewAccountRepo(backend)
	memberRepo := repository.NewMemberRepo(backend)
	txRepo := repository.NewTransactionRepo(backend)

	signer := jwt.NewSigner(cfg.JWTSecret, cfg.Backend.AuthDomain, cfg.SessionTTL)
	authService := service.NewAuthService(accountRepo, memberRepo, signer)
	invService := service.NewInventoryService(productRepo, txRepo, bus)
	memberService := service.NewMemberService(memberRepo, accountRepo, bus)
	dashService := service.NewDashboardService(productRepo, txRepo, cfg.LowStockLevel)

	gate := router.NewGate(authService, invService, memberService, wsHub, cfg.FlashTTL)
	gate.Mount()

	// 3. Seed the initial administrator
	if cfg.SeedAdminEmail != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			zap.L().Warn("failed to seed admin", zap.String("email", cfg.SeedAdminEmail), zap.Error(err))
		}
	}

	s := &Server{
		Auth:   authService,
		Gate:   gate,
		Hub:    wsHub,
		Bus:    bus,
		cfg:    cfg,
		broker: broker,
	}
	s.App = s.routes(handlers{
		auth:      handler.NewAuthHandler(authService, cfg.IsProduction()),
		screens:   handler.NewScreenHandler(gate, dashService, active),
		inventory: handler.NewInventoryHandler(invService),
		users:     handler.NewUserHandler(memberService),
		dashboard: handler.NewDashboardHandler(dashService),
		roles:     handler.NewRoleHandler(),
		config:    handler.NewConfigHandler(cfg.Backend, themes, active),
	})
	return s, nil
}

type handlers struct {
	auth      *handler.AuthHandler
	screens   *handler.ScreenHandler
	inventory *handler.InventoryHandler
	users     *handler.UserHandler
	dashboard *handler.DashboardHandler
	roles     *handler.RoleHandler
	config    *handler.ConfigHandler
}

func (s *Server) routes(h handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Wings Cafe Inventory",
		DisableStartupMessage: s.cfg.IsProduction(),

		// params and bodies outlive the request inside the screen controllers
		Immutable: true,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Get("/config", h.config.GetConfig)
	api.Get("/theme", h.config.GetTheme)

	auth := api.Group("/auth")
	auth.Post("/signup", h.auth.SignUp)
	auth.Post("/signin", h.auth.SignIn)
	auth.Post("/signout", h.auth.SignOut)
	auth.Get("/session", middleware.OptionalAuth(s.Auth), h.auth.Session)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(s.Auth))

	protected.Get("/dashboard", middleware.RequirePrivilege(model.PrivDashboardView), h.dashboard.GetDashboardStats)

	// Product Routes (with privilege checks)
	protected.Get("/products/export", middleware.RequirePrivilege(model.PrivProductView), h.inventory.ExportProducts)
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), h.inventory.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), h.inventory.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), h.inventory.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), h.inventory.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), h.inventory.DeleteProduct)
	protected.Get("/products/:id/transactions", middleware.RequirePrivilege(model.PrivProductView), h.inventory.GetProductTransactions)
	protected.Get("/transactions", middleware.RequirePrivilege(model.PrivProductView), h.inventory.GetTransactions)

	// User Management Routes (with privilege checks)
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), h.users.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), h.users.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), h.users.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), h.users.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), h.users.DeleteUser)

	protected.Get("/roles", h.roles.GetRoles)
	protected.Get("/privileges", h.roles.GetPrivileges)

	// Screen controllers
	screens := protected.Group("/screens/:screen")
	screens.Get("/form", h.screens.FormState)
	screens.Put("/form/fields", h.screens.SetFormFields)
	screens.Post("/form/submit", h.screens.SubmitForm)
	screens.Post("/form/edit/:id", h.screens.EditForm)
	screens.Post("/form/reset", h.screens.ResetForm)
	screens.Get("/list", h.screens.ListState)
	screens.Post("/list/load", h.screens.LoadList)
	screens.Put("/list/filter", h.screens.FilterList)
	screens.Post("/list/edit/commit", h.screens.CommitEdit)
	screens.Post("/list/edit/:id", h.screens.BeginEdit)
	screens.Put("/list/edit", h.screens.SetEditFields)
	screens.Delete("/list/edit", h.screens.CancelEdit)
	screens.Delete("/list/items/:id", h.screens.RemoveItem)

	// WebSocket Route
	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", s.Hub.Handler())

	// Screens: every other GET resolves through the session gate
	app.Get("/*", middleware.OptionalAuth(s.Auth), h.screens.Show)

	return app
}

// Run serves until ctx is cancelled: the HTTP listener, the WebSocket hub and
// the session janitor.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(s.cfg.SessionSweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				if n := s.Auth.ExpireSessions(now); n > 0 {
					zap.L().Info("expired sessions", zap.Int("count", n))
				}
			}
		}
	})

	g.Go(func() error {
		zap.L().Info("listening", zap.String("port", s.cfg.Port))
		return s.App.Listen(":" + s.cfg.Port)
	})

	g.Go(func() error {
		<-ctx.Done()
		zap.L().Info("Shutting down server...")
		return s.App.ShutdownWithTimeout(10 * time.Second)
	})

	return g.Wait()
}

// Close releases the gate, the event bus and the broker connection.
func (s *Server) Close() {
	s.Gate.Unmount()
	s.Bus.Drain()
	if s.broker != nil {
		if err := s.broker.Close(); err != nil {
			zap.L().Warn("amqp close", zap.Error(err))
		}
	}
}
