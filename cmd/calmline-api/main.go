package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	httpadapter "github.com/calmlinehq/calmline/internal/adapters/http"
	"github.com/calmlinehq/calmline/internal/adapters/llm"
	firestorestore "github.com/calmlinehq/calmline/internal/adapters/storage/firestore"
	memstore "github.com/calmlinehq/calmline/internal/adapters/storage/memory"
	"github.com/calmlinehq/calmline/internal/app/chat"
	"github.com/calmlinehq/calmline/internal/app/mood"
	"github.com/calmlinehq/calmline/internal/config"
	"github.com/calmlinehq/calmline/internal/domain"
	"github.com/calmlinehq/calmline/internal/observability"
)

func main() {
	ctx := context.Background()

	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	metrics := observability.NewMetrics("calmline")

	// LLM: mock or Vertex
	var (
		llmClient domain.LLMClient
		err       error
	)

	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Println("[LLM] Using Vertex LLM client")
		llmClient, err = llm.NewVertexClient(ctx, llm.VertexConfig{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			log.Fatalf("error initializing Vertex LLM client: %v", err)
		}
	}

	// Storage: Firestore or Memory
	var (
		conversationStore domain.ConversationStore
		moodStore         domain.MoodStore
		directory         domain.UserDirectory
	)

	switch cfg.StorageBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatal("CALMLINE_GCP_PROJECT is required for Firestore storage backend")
		}

		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 3 interfaces
		conversationStore = fsStore
		moodStore = fsStore
		directory = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		conversationStore = memstore.NewConversationStore()
		moodStore = memstore.NewMoodStore()
		directory = memstore.NewUserDirectory()
	}

	chatSvc := chat.NewService(llmClient, conversationStore, metrics, cfg.ModelTimeout)
	moodSvc := mood.NewService(moodStore, metrics)

	handler := httpadapter.NewServer(chatSvc, moodSvc, directory)

	addr := ":" + cfg.Port
	log.Println("CalmLine API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
