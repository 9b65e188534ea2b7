package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/gate-prep/backend/internal/auth"
	"github.com/gate-prep/backend/internal/database"
	"github.com/gate-prep/backend/internal/generator"
	"github.com/gate-prep/backend/internal/ingest"
	"github.com/gate-prep/backend/internal/middleware"
	"github.com/gate-prep/backend/internal/payment"
	"github.com/gate-prep/backend/internal/profile"
	"github.com/gate-prep/backend/internal/questions"
	"github.com/gate-prep/backend/internal/testsession"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores and services
	questionStore := questions.NewStore(db)
	profileStore := profile.NewStore(db)
	attemptStore := testsession.NewStore(db)

	selector := questions.NewSelector(questionStore, rand.New(rand.NewSource(time.Now().UnixNano())))
	manager := testsession.NewManager(selector, profileStore, attemptStore, questionStore, questionStore)
	ingestor := ingest.NewIngestor(questionStore)
	paymentService := payment.NewService(db, profileStore, []byte(os.Getenv("PAYMENT_SECRET")))

	// Handlers
	authHandler := auth.NewHandler(db)
	questionHandler := questions.NewHandler(questionStore, selector)
	sessionHandler := testsession.NewHandler(manager, attemptStore)
	profileHandler := profile.NewHandler(profileStore)
	ingestHandler := ingest.NewHandler(ingestor)
	paymentHandler := payment.NewHandler(paymentService)
	draftHandler := generator.NewHandler(generator.NewGenerator())

	// Session timers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/exams", questionHandler.ListExams).Methods("GET")
	api.HandleFunc("/payments/plans", paymentHandler.ListPlans).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/practice", questionHandler.StartPractice).Methods("POST")

	protected.HandleFunc("/tests", sessionHandler.StartTest).Methods("POST")
	protected.HandleFunc("/tests/attempts", sessionHandler.ListAttempts).Methods("GET")
	protected.HandleFunc("/tests/{id}", sessionHandler.GetSession).Methods("GET")
	protected.HandleFunc("/tests/{id}/answers", sessionHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/tests/{id}/review", sessionHandler.ToggleReview).Methods("POST")
	protected.HandleFunc("/tests/{id}/submit", sessionHandler.SubmitTest).Methods("POST")
	protected.HandleFunc("/tests/{id}/restart", sessionHandler.RestartTest).Methods("POST")
	protected.HandleFunc("/tests/{id}/questions/{questionID}/save", sessionHandler.SaveQuestion).Methods("POST")

	protected.HandleFunc("/profile/saved-questions", questionHandler.ListSaved).Methods("GET")
	protected.HandleFunc("/profile/saved-questions/{id}", questionHandler.DeleteSaved).Methods("DELETE")

	protected.HandleFunc("/payments/orders", paymentHandler.CreateOrder).Methods("POST")
	protected.HandleFunc("/payments/verify", paymentHandler.VerifyPayment).Methods("POST")

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminMiddleware(db))
	admin.HandleFunc("/questions", questionHandler.ListQuestions).Methods("GET")
	admin.HandleFunc("/questions/bulk", ingestHandler.BulkUpload).Methods("POST")
	admin.HandleFunc("/questions/draft", draftHandler.DraftQuestions).Methods("POST")
	admin.HandleFunc("/questions/{id}", questionHandler.DeleteQuestion).Methods("DELETE")
	admin.HandleFunc("/exams", questionHandler.CreateExam).Methods("POST")
	admin.HandleFunc("/users", profileHandler.ListUsers).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
