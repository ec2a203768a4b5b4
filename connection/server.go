package connection

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fastboard/config"
	controller "fastboard/controller/sync"
	"fastboard/dto"
	"fastboard/services"
)

// NewRouter builds the sync server router around the given storage backend.
func NewRouter(store services.SyncStore) *gin.Engine {
	router := gin.Default()

	// The sync surface is open on purpose: any origin, no credentials.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type"},
		OptionsResponseStatusCode: http.StatusOK,
	}))

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.ErrorResponse{
			Success: false,
			Error:   "Method not allowed",
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	controller.HealthController(router)
	controller.SyncController(router, store)

	return router
}

// NewSyncStore selects the persistence backend: Firestore when credentials
// are configured, otherwise a JSON file, otherwise process memory.
func NewSyncStore(ctx context.Context, cfg *config.Config) services.SyncStore {
	if cfg.CredentialsFile != "" {
		client, err := FirestoreConnection(ctx, cfg.CredentialsFile)
		if err != nil {
			log.Fatalf("Failed to initialize Firestore client: %v", err)
		}
		return services.NewFirestoreStore(client)
	}

	if cfg.DataFile != "" {
		store, err := services.NewFileStore(cfg.DataFile)
		if err != nil {
			log.Printf("Warning: file storage unavailable (%v), using memory", err)
			return services.NewMemoryStore()
		}
		return store
	}

	return services.NewMemoryStore()
}

// StartServer runs the sync server until the listener fails.
func StartServer(cfg *config.Config) {
	store := NewSyncStore(context.Background(), cfg)
	router := NewRouter(store)

	log.Printf("Sync server running on :%s (storage: %s)", cfg.Port, store.Name())
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
