package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"ticket-storefront/config"
	"ticket-storefront/handlers"
	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/backend/rest"
	"ticket-storefront/internal/backend/supabase"
	"ticket-storefront/monitoring"
	"ticket-storefront/services"
	"ticket-storefront/utils"
)

func main() {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub when keys are configured; the notifier is a
	// no-op without them.
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}
	notifier := services.NewNotifier(pn)

	// Initialize the backend pair behind the failover manager.
	primary := rest.New(&rest.Config{
		BaseURL: cfg.PrimaryBaseURL,
		Timeout: cfg.PrimaryTimeout,
	})
	fallback := supabase.New(&supabase.Config{
		URL:     cfg.SupabaseURL,
		APIKey:  cfg.SupabaseKey,
		Timeout: cfg.PrimaryTimeout,
	})

	manager := backend.NewManager()
	manager.OnSwitch = func(to backend.ConnectionState, cause error) {
		monitoring.TrackConnectionSwitch(to.String())
		causeText := ""
		if cause != nil {
			causeText = cause.Error()
		}
		notifier.NotifyConnectionState(to.String(), causeText)
		log.Printf("backend: switched to %s (%s)", to, causeText)
	}
	store := backend.NewFailover(manager, primary, fallback)

	// Initialize services
	authService := services.NewAuthService(redisClient, store, cfg.SessionTTL)
	eventService := services.NewEventService(store, redisClient, cfg.EventListTTL, cfg.EventCacheTTL)
	enricher := services.NewEnricher(store, eventService)

	orderService, err := services.NewOrderService(cfg.OrderDBPath)
	if err != nil {
		log.Fatalf("order store: %v", err)
	}
	defer orderService.Close()

	cartService := services.NewCartService(store, authService, enricher, orderService, notifier)
	seatingService := services.NewSeatingService(store, cartService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	cartHandler := handlers.NewCartHandler(cartService)
	eventHandler := handlers.NewEventHandler(eventService, authService)
	ticketHandler := handlers.NewTicketHandler(store, orderService, authService, notifier)
	seatHandler := handlers.NewSeatHandler(seatingService)

	// Start background tasks
	go eventService.StartSweeper(ctx, cfg.CacheSweepInterval)

	e := echo.New()

	// Auth
	e.POST("/api/login", authHandler.Login)
	e.POST("/api/signup", authHandler.Signup)
	e.POST("/api/logout", authHandler.Logout)
	e.GET("/api/me", authHandler.Me)

	// Cart. The user scope comes from the session; the :userId forms
	// exist for wire compatibility with older clients.
	e.GET("/api/cart", cartHandler.GetCart)
	e.GET("/api/cart/:userId", cartHandler.GetCart)
	e.POST("/api/cart", cartHandler.AddToCart)
	e.PUT("/api/cart", cartHandler.UpdateCart)
	e.DELETE("/api/cart", cartHandler.RemoveFromCart)
	e.POST("/api/checkout", cartHandler.Checkout)
	e.POST("/api/checkout/:userId", cartHandler.Checkout)

	// Events
	e.GET("/api/event", eventHandler.ListEvents)
	e.POST("/api/event", eventHandler.CreateEvent)
	e.POST("/api/event/update", eventHandler.UpdateEvent)
	e.DELETE("/api/event", eventHandler.DeleteEvent)

	// Ticket types and tickets
	e.GET("/api/ticket-type", ticketHandler.TicketTypes)
	e.GET("/api/ticket-type/:eventId", ticketHandler.TicketTypesByEvent)
	e.GET("/api/ticket/userid/:userId", ticketHandler.UserOrders)
	e.DELETE("/api/ticket/refund", ticketHandler.Refund)

	// Seating
	e.GET("/api/seating/layout", seatHandler.LayoutFromCategory)
	e.GET("/api/seating/layout/:eventId", seatHandler.Layout)
	e.POST("/api/seating/purchase", seatHandler.Purchase)

	// Operational endpoints
	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":     "ok",
			"connection": manager.State().String(),
		})
	})
	if cfg.EnableMetrics {
		metricsHandler := promhttp.Handler()
		e.GET("/metrics", func(c echo.Context) error {
			metricsHandler.ServeHTTP(c.Response(), c.Request())
			return nil
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go handleShutdown(cancel, srv)

	log.Printf("storefront listening on :%s (%s)", cfg.Port, cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc, srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, cleaning up...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
