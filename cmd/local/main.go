// Command local runs the bot as a plain HTTP server for development. It
// exposes the same two surfaces as the Lambdas: POST /webhook for the Twilio
// callback and GET /event/{id} for the public lookup. Signature validation
// is skipped here; use tooling like ngrok plus a Twilio sandbox to exercise
// the real flow.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	appconfig "github.com/savaki/events-bot/pkg/config"
	"github.com/savaki/events-bot/pkg/dynamodb"
	"github.com/savaki/events-bot/pkg/handler"
	"github.com/savaki/events-bot/pkg/logging"
	"github.com/savaki/events-bot/pkg/storage"
	"github.com/savaki/events-bot/pkg/twilio"
)

func main() {
	// .env is optional; real env vars win
	_ = godotenv.Load()

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	ddbClient := dynamodb.NewClientWithConfig(awsCfg)
	eventRepo := dynamodb.NewEventRepository(ddbClient, cfg.EventsTable)
	sessionRepo := dynamodb.NewSessionRepository(ddbClient, cfg.SessionsTable)
	posterStore := storage.NewPosterStore(storage.NewS3ClientWithConfig(awsCfg), cfg.PostersBucket, cfg.PostersBaseURL, logger)
	mediaClient := twilio.NewMediaClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	ops := handler.NewOperations(eventRepo, posterStore, mediaClient, logger)
	router := handler.NewRouter(sessionRepo, ops, cfg.FrontendURL, cfg.GetSessionExpiry(), logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		msg, err := twilio.ParseWebhook(string(body), time.Now())
		if err != nil {
			http.Error(w, "invalid message format", http.StatusBadRequest)
			return
		}

		reply := router.HandleInboundMessage(req.Context(), msg)

		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(twilio.MessagingResponse(reply)))
	})

	r.Get("/event/{id}", func(w http.ResponseWriter, req *http.Request) {
		event, err := eventRepo.GetByID(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			logger.Error("event lookup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if event == nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":          event.EventID,
			"name":        event.Name,
			"date":        event.Date,
			"address":     event.Address,
			"description": event.Description,
			"posterUrl":   event.PosterURL,
		})
	})

	logger.Info("listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
