package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/config"
	"github.com/upwardright/rebalance/internal/db"
	"github.com/upwardright/rebalance/internal/handlers"
	"github.com/upwardright/rebalance/internal/logger"
	"github.com/upwardright/rebalance/internal/repositories"
	"github.com/upwardright/rebalance/internal/services"
	"github.com/upwardright/rebalance/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	cfg := config.Load()

	// Database connection
	dbConfig := db.NewConfig()
	database, err := db.Connect(dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Health(); err != nil {
		log.Fatal("Database health check failed:", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatal("Database migration failed:", err)
	}
	zlog.Info("database connection established")

	flatStore, err := storage.OpenBadgerStore(cfg.FlatStorePath)
	if err != nil {
		log.Fatal("Failed to open flat credential store:", err)
	}
	defer flatStore.Close()

	// Repositories
	credentialRepo := repositories.NewCredentialRepository(database.DB)
	recordRepo := repositories.NewRecordRepository(database.DB)

	// Services
	credentialStore := services.NewCredentialStore(credentialRepo, flatStore, zlog)
	linker := services.NewAccountLinker(zlog)
	balanceService := services.NewHTTPBalanceService(cfg.BalanceServiceURL, cfg.BalanceTimeout, zlog)
	fxProvider := services.NewHTTPFXProvider(cfg.FXAPIKey, zlog)
	recordService := services.NewRecordService(recordRepo, zlog)
	session := services.NewAccountSession(linker, credentialStore, balanceService, zlog)

	// Handlers
	sessionHandler := handlers.NewSessionHandler(session, fxProvider)
	recordHandler := handlers.NewRecordHandler(recordService)
	fxHandler := handlers.NewFXHandler(fxProvider)
	credentialHandler := handlers.NewCredentialHandler(credentialStore)

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "rebalance-backend",
		})
	})

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session/select", sessionHandler.HandleSelect)
	api.HandleFunc("/session/password", sessionHandler.HandlePassword)
	api.HandleFunc("/session/cancel", sessionHandler.HandleCancel)
	api.HandleFunc("/session/status", sessionHandler.HandleStatus)
	api.HandleFunc("/session/result", sessionHandler.HandleResult)
	api.HandleFunc("/records", recordHandler.HandleRecords)
	api.HandleFunc("/records/{id}", recordHandler.HandleRecord)
	api.HandleFunc("/fx/rate", fxHandler.HandleRate)
	api.HandleFunc("/credentials", credentialHandler.HandleCredentials)

	// CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	zlog.Info("server starting", zap.String("port", cfg.ServerPort))
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, corsHandler(router)))
}
