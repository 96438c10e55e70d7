package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"

	"parkspot/internal/api"
	"parkspot/internal/auth"
	"parkspot/internal/db"
	"parkspot/internal/repository"
	"parkspot/internal/service"
)

func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	conn, err := db.Open(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.RunMigrations(conn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userRepo := repository.NewUserRepository(conn)
	locationRepo := repository.NewLocationRepository(conn)
	capacityRepo := repository.NewCapacityRepository(conn)
	bookingRepo := repository.NewBookingRepository(conn)

	stripeSvc := service.NewStripeService()
	senderSvc := service.NewSenderService(userRepo, locationRepo)
	authSvc := service.NewAuthService(userRepo, jwtSecret, 24*time.Hour)
	locationSvc := service.NewLocationService(locationRepo, capacityRepo)
	reservationSvc := service.NewReservationService(capacityRepo, bookingRepo, stripeSvc, userRepo, senderSvc)
	jobSvc := service.NewJobService(reservationSvc,
		envDuration("PENDING_BOOKING_TTL_MIN", 30)*time.Minute,
		envDuration("MAX_STAY_HOURS", 24)*time.Hour)

	authHandler := api.NewAuthHandler(authSvc)
	locationHandler := api.NewLocationHandler(locationSvc)
	bookingHandler := api.NewBookingHandler(reservationSvc)
	stripeHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), reservationSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/locations", locationHandler.ListLocations).Methods("GET")
	r.HandleFunc("/api/locations/search", locationHandler.SearchLocations).Methods("GET")
	r.HandleFunc("/api/locations/nearby", locationHandler.NearbyLocations).Methods("GET")
	r.HandleFunc("/api/locations/{id}", locationHandler.GetLocation).Methods("GET")
	r.HandleFunc("/api/locations/{id}/availability", locationHandler.GetAvailability).Methods("GET")
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/complete", bookingHandler.CompleteBooking).Methods("PUT")

	// User endpoints (protected)
	user := r.PathPrefix("/api/bookings").Subrouter()
	user.Use(auth.Middleware(authSvc))
	user.HandleFunc("", bookingHandler.CreateBooking).Methods("POST")
	user.HandleFunc("", bookingHandler.ListBookings).Methods("GET")
	user.HandleFunc("/{id}", bookingHandler.GetBooking).Methods("GET")
	user.HandleFunc("/{id}", bookingHandler.CancelBooking).Methods("DELETE")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware(authSvc))
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/locations", locationHandler.CreateLocation).Methods("POST")
	admin.HandleFunc("/locations/{id}", locationHandler.UpdateLocation).Methods("PUT")
	admin.HandleFunc("/locations/{id}", locationHandler.DeleteLocation).Methods("DELETE")
	admin.HandleFunc("/locations/{id}/slots/{vehicle_type}", locationHandler.ResizeSlotPool).Methods("PUT")

	c := cron.New()
	if _, err := c.AddFunc("@every 5m", jobSvc.Sweep); err != nil {
		log.Fatalf("Failed to schedule booking sweeper: %v", err)
	}
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{os.Getenv("CORS_ORIGIN")}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, cors(r)))
}

func envDuration(key string, fallback int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback)
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Fatalf("invalid value for %s: %q", key, v)
	}
	return time.Duration(n)
}
