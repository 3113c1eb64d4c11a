package main

import (
	bookingshandler "renthub/internal/bookings/handler"
	bookingsrepository "renthub/internal/bookings/repository"
	bookingsservice "renthub/internal/bookings/service"
	bookingsvalidator "renthub/internal/bookings/validator"
	conversationshandler "renthub/internal/conversations/handler"
	conversationsrepository "renthub/internal/conversations/repository"
	conversationsservice "renthub/internal/conversations/service"
	healthhandler "renthub/internal/health/handler"
	notificationshandler "renthub/internal/notifications/handler"
	notificationsrepository "renthub/internal/notifications/repository"
	notificationsservice "renthub/internal/notifications/service"
	propertieshandler "renthub/internal/properties/handler"
	propertiesrepository "renthub/internal/properties/repository"
	propertiesservice "renthub/internal/properties/service"
	propertiesvalidator "renthub/internal/properties/validator"
	"renthub/pkg/app"
	"renthub/pkg/config"
	dbmongo "renthub/pkg/db/mongo"
	"renthub/pkg/events"
	eventsconfig "renthub/pkg/events/config"
)

func main() {
	cfg := config.Load("rentals")
	cfg.SetMongo()

	publisher := buildPublisher(cfg)

	notificationRepo := notificationsrepository.NewMongoNotificationRepository(cfg)
	notificationService := notificationsservice.NewNotificationService(notificationRepo, publisher, cfg)

	propertyRepo := propertiesrepository.NewMongoPropertyRepository(cfg)
	propertyService := propertiesservice.NewPropertyService(
		propertyRepo,
		propertiesvalidator.NewPropertyValidator(),
		notificationService,
		publisher,
		cfg,
	)

	bookingRepo := bookingsrepository.NewMongoBookingRepository(cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		propertyRepo,
		bookingsvalidator.NewBookingValidator(),
		notificationService,
		publisher,
		dbmongo.NewTransactionManager(cfg.Client.Mongo),
		cfg,
	)

	conversationRepo := conversationsrepository.NewMongoConversationRepository(cfg)
	conversationService := conversationsservice.NewConversationService(
		conversationRepo,
		bookingService,
		notificationService,
		cfg,
	)

	application := app.New(cfg, publisher,
		healthhandler.NewHealthHandler(cfg),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		propertieshandler.NewPropertyHandler(propertyService, cfg.Log),
		notificationshandler.NewNotificationHandler(notificationService, cfg.Log),
		conversationshandler.NewConversationHandler(conversationService, cfg.Log),
	)

	if err := application.Run(); err != nil {
		cfg.Log.Fatal("Server exited with error", "error", err)
	}
}

func buildPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Event publishing disabled")
		return events.NopPublisher{}
	}

	kafkaCfg, err := eventsconfig.Load()
	if err != nil {
		cfg.Log.Warn("Invalid Kafka configuration, events disabled", "error", err)
		return events.NopPublisher{}
	}

	producer, err := events.NewProducer(kafkaCfg, "rentals")
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, events disabled", "error", err)
		return events.NopPublisher{}
	}
	producer.Use(events.LoggingMiddleware(cfg.Log))

	return producer
}
