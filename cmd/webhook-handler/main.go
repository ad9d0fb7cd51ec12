package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	appconfig "github.com/savaki/events-bot/pkg/config"
	"github.com/savaki/events-bot/pkg/dynamodb"
	"github.com/savaki/events-bot/pkg/handler"
	"github.com/savaki/events-bot/pkg/logging"
	"github.com/savaki/events-bot/pkg/storage"
	"github.com/savaki/events-bot/pkg/twilio"
)

// Handler is the Lambda handler for the Twilio WhatsApp webhook
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("Received WhatsApp webhook")

	// Load configuration
	cfg, err := appconfig.Load()
	if err != nil {
		return internalError("Failed to load config", err)
	}

	// Validate webhook-specific configuration
	if err := cfg.ValidateWebhook(); err != nil {
		return internalError("Invalid webhook config", err)
	}

	// Validate Twilio request signature
	requestURL := fmt.Sprintf("https://%s%s", request.Headers["Host"], request.Path)
	if !twilio.ValidateRequest(cfg.TwilioAuthToken, requestURL, request.Body, request.Headers["X-Twilio-Signature"]) {
		log.Printf("Invalid Twilio signature")
		return badRequest("Invalid signature"), nil
	}

	// Parse the inbound message
	msg, err := twilio.ParseWebhook(request.Body, time.Now())
	if err != nil {
		log.Printf("Failed to parse webhook: %v", err)
		return badRequest("Invalid message format"), nil
	}

	// Initialize AWS SDK
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return internalError("Failed to load AWS config", err)
	}

	// Initialize collaborators
	logger := logging.New(cfg.LogLevel)
	ddbClient := dynamodb.NewClientWithConfig(awsCfg)
	eventRepo := dynamodb.NewEventRepository(ddbClient, cfg.EventsTable)
	sessionRepo := dynamodb.NewSessionRepository(ddbClient, cfg.SessionsTable)
	posterStore := storage.NewPosterStore(storage.NewS3ClientWithConfig(awsCfg), cfg.PostersBucket, cfg.PostersBaseURL, logger)
	mediaClient := twilio.NewMediaClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	ops := handler.NewOperations(eventRepo, posterStore, mediaClient, logger)
	router := handler.NewRouter(sessionRepo, ops, cfg.FrontendURL, cfg.GetSessionExpiry(), logger)

	// One inbound message, one outbound reply
	reply := router.HandleInboundMessage(ctx, msg)

	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Body:       twilio.MessagingResponse(reply),
		Headers:    map[string]string{"Content-Type": "text/xml"},
	}, nil
}

// internalError returns a 500 error response
func internalError(message string, err error) (events.APIGatewayProxyResponse, error) {
	log.Printf("ERROR: %s: %v", message, err)
	return events.APIGatewayProxyResponse{
		StatusCode: 500,
		Body:       fmt.Sprintf(`{"error":"%s"}`, message),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

// badRequest returns a 400 error response
func badRequest(message string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: 400,
		Body:       fmt.Sprintf(`{"error":"%s"}`, message),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(Handler)
}
