package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketplace-platform/fulfillment-service/pkg/cloudevents"
	"github.com/marketplace-platform/fulfillment-service/pkg/errors"
	"github.com/marketplace-platform/fulfillment-service/pkg/kafka"
	"github.com/marketplace-platform/fulfillment-service/pkg/logging"
	"github.com/marketplace-platform/fulfillment-service/pkg/metrics"
	"github.com/marketplace-platform/fulfillment-service/pkg/middleware"
	"github.com/marketplace-platform/fulfillment-service/pkg/mongodb"
	"github.com/marketplace-platform/fulfillment-service/pkg/outbox"
	"github.com/marketplace-platform/fulfillment-service/pkg/resilience"
	"github.com/marketplace-platform/fulfillment-service/pkg/tenant"
	"github.com/marketplace-platform/fulfillment-service/pkg/tracing"

	"github.com/marketplace-platform/fulfillment-service/internal/application"
	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	mongoRepo "github.com/marketplace-platform/fulfillment-service/internal/infrastructure/mongodb"
)

const serviceName = "fulfillment-service"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting fulfillment-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with instrumentation
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer with instrumentation
	kafkaProducer := kafka.NewProducer(config.Kafka)
	instrumentedProducer := kafka.NewInstrumentedProducer(kafkaProducer, m, logger)
	defer instrumentedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize CloudEvents factory
	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceFulfillment)

	// Initialize repositories
	db := instrumentedMongo.Database()
	zoneRepo := mongoRepo.NewZoneRepository(db)
	courierRepo := mongoRepo.NewCourierRepository(db)
	ruleRepo := mongoRepo.NewCourierRuleRepository(db)
	originRepo := mongoRepo.NewOriginRepository(db)
	routeRepo := mongoRepo.NewRouteRepository(db, eventFactory)

	// Initialize and start outbox publisher
	outboxPublisher := outbox.NewPublisher(
		routeRepo.GetOutboxRepository(),
		instrumentedProducer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Build the rate provider behind a circuit breaker
	breakerRegistry := resilience.NewCircuitBreakerRegistry(logger.Logger)
	rateRegistry := application.NewRateProviderRegistry()
	rateProvider, err := rateRegistry.Build(config.RateProvider, config.RateSettings)
	if err != nil {
		logger.WithError(err).Error("Failed to build rate provider", "provider", string(config.RateProvider))
		os.Exit(1)
	}
	rates := application.NewBreakerRateCalculator(rateProvider, breakerRegistry.Get("rate-provider"))
	logger.Info("Rate provider initialized", "provider", string(config.RateProvider))

	// Assemble the routing engine
	zoneResolver := application.NewZoneResolver(zoneRepo)
	assigner := application.NewCourierAssigner(zoneRepo, courierRepo, ruleRepo, logger)
	scorer := application.NewOriginScorer(zoneResolver, assigner, rates, domain.NewPincodeDistanceEstimator(), logger)
	router := application.NewFulfillmentRouter(originRepo, scorer, assigner, logger)

	routingService := application.NewRoutingApplicationService(
		routeRepo,
		courierRepo,
		router,
		assigner,
		instrumentedProducer,
		eventFactory,
		logger,
		m,
	)

	// Setup Gin router with middleware
	engine := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(engine, middlewareConfig)

	// Add metrics middleware
	engine.Use(middleware.MetricsMiddleware(m))

	// Add tracing middleware
	engine.Use(middleware.SimpleTracingMiddleware(serviceName))

	// Handle 404 and 405 errors
	engine.NoRoute(middleware.NoRoute())
	engine.NoMethod(middleware.NoMethod())

	// Health check endpoints
	engine.GET("/health", middleware.HealthCheck(serviceName))
	engine.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return instrumentedMongo.HealthCheck(ctx)
	}))

	// Metrics endpoint
	engine.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	api := engine.Group("/api/v1")
	{
		api.POST("/fulfillment/route", routeFulfillmentHandler(routingService, logger))
		api.GET("/fulfillment/orders/:orderId", getRouteByOrderHandler(routingService, logger))
		api.POST("/fulfillment/orders/:orderId/reassign-courier", reassignCourierHandler(routingService, logger))
		api.POST("/fulfillment/orders/:orderId/groups/:groupId/ship", markGroupShippedHandler(routingService, logger))
		api.POST("/fulfillment/orders/:orderId/groups/:groupId/deliver", markGroupDeliveredHandler(routingService, logger))
		api.GET("/fulfillment/routes/:routeId", getRouteHandler(routingService, logger))
		api.GET("/fulfillment/routes/:routeId/groups", getGroupsHandler(routingService, logger))
		api.POST("/couriers/assign", assignCourierHandler(routingService, logger))
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr   string
	MongoDB      *mongodb.Config
	Kafka        *kafka.Config
	RateProvider application.RateProviderID
	RateSettings map[string]float64
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8012"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "fulfillment_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: serviceName,
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
		},
		RateProvider: application.RateProviderID(getEnv("RATE_PROVIDER", "flat")),
		RateSettings: loadRateSettings(),
	}
}

// loadRateSettings collects provider settings from the environment. The flat
// provider reads RATE_BASE and RATE_PER_KG; the slab provider reads weight
// bands from RATE_SLABS, e.g. "1:40,5:80,10:150".
func loadRateSettings() map[string]float64 {
	settings := map[string]float64{
		"baseRate":  getEnvFloat("RATE_BASE", 40),
		"perKgRate": getEnvFloat("RATE_PER_KG", 10),
	}
	for _, band := range strings.Split(os.Getenv("RATE_SLABS"), ",") {
		parts := strings.SplitN(strings.TrimSpace(band), ":", 2)
		if len(parts) != 2 {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		settings[strings.TrimSpace(parts[0])] = rate
	}
	return settings
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// HTTP Handlers
func routeFulfillmentHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			OrderID         string                `json:"orderId" binding:"required"`
			StoreID         string                `json:"storeId"`
			Items           []application.CartItem `json:"items" binding:"required"`
			DeliveryAddress domain.Address        `json:"deliveryAddress" binding:"required"`
			PaymentMethod   string                `json:"paymentMethod" binding:"required"`
			OrderValue      float64               `json:"orderValue"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		storeID := req.StoreID
		if storeID == "" {
			storeID = tenant.GetStoreID(c.Request.Context())
		}
		if storeID == "" {
			responder.RespondBadRequest("storeId is required (body or X-Store-ID header)")
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id":       req.OrderID,
			"store.id":       storeID,
			"order.items":    len(req.Items),
			"payment.method": req.PaymentMethod,
		})

		cmd := application.RouteFulfillmentCommand{
			OrderID:         req.OrderID,
			StoreID:         storeID,
			CartItems:       req.Items,
			DeliveryAddress: req.DeliveryAddress,
			PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
			OrderValue:      req.OrderValue,
		}

		route, err := service.RouteFulfillment(c.Request.Context(), cmd)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusCreated, route)
	}
}

func assignCourierHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StoreID       string  `json:"storeId"`
			ZoneID        string  `json:"zoneId" binding:"required"`
			Weight        float64 `json:"weight"`
			OrderValue    float64 `json:"orderValue"`
			PaymentMethod string  `json:"paymentMethod" binding:"required"`
			Pincode       string  `json:"pincode"`
			OrderID       string  `json:"orderId"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		storeID := req.StoreID
		if storeID == "" {
			storeID = tenant.GetStoreID(c.Request.Context())
		}
		if storeID == "" {
			responder.RespondBadRequest("storeId is required (body or X-Store-ID header)")
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"store.id":       storeID,
			"zone.id":        req.ZoneID,
			"payment.method": req.PaymentMethod,
		})

		cmd := application.AssignCourierCommand{
			StoreID:       storeID,
			ZoneID:        req.ZoneID,
			Weight:        req.Weight,
			OrderValue:    req.OrderValue,
			PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
			Pincode:       req.Pincode,
			OrderID:       req.OrderID,
		}

		assignment, err := service.AssignCourier(c.Request.Context(), cmd)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, assignment)
	}
}

func reassignCourierHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderID := c.Param("orderId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id": orderID,
		})

		var req struct {
			GroupID   string `json:"groupId" binding:"required"`
			CourierID string `json:"courierId"`
			Reason    string `json:"reason"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.ReassignCourierCommand{
			OrderID:   orderID,
			GroupID:   req.GroupID,
			CourierID: req.CourierID,
			Reason:    req.Reason,
		}

		route, err := service.ReassignCourier(c.Request.Context(), cmd)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, route)
	}
}

func getRouteByOrderHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderID := c.Param("orderId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id": orderID,
		})

		route, err := service.GetRouteByOrder(c.Request.Context(), application.GetRouteByOrderQuery{OrderID: orderID})
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, route)
	}
}

func getRouteHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		routeID := c.Param("routeId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"route.id": routeID,
		})

		route, err := service.GetRoute(c.Request.Context(), application.GetRouteQuery{RouteID: routeID})
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, route)
	}
}

func getGroupsHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		routeID := c.Param("routeId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"route.id": routeID,
		})

		groups, err := service.GetGroups(c.Request.Context(), application.GetGroupsQuery{RouteID: routeID})
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, groups)
	}
}

func markGroupShippedHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderID := c.Param("orderId")
		groupID := c.Param("groupId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id": orderID,
			"group.id": groupID,
		})

		route, err := service.MarkGroupShipped(c.Request.Context(), application.MarkGroupShippedCommand{OrderID: orderID, GroupID: groupID})
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, route)
	}
}

func markGroupDeliveredHandler(service *application.RoutingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderID := c.Param("orderId")
		groupID := c.Param("groupId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id": orderID,
			"group.id": groupID,
		})

		route, err := service.MarkGroupDelivered(c.Request.Context(), application.MarkGroupDeliveredCommand{OrderID: orderID, GroupID: groupID})
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, route)
	}
}
