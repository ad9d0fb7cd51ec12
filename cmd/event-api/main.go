package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	appconfig "github.com/savaki/events-bot/pkg/config"
	"github.com/savaki/events-bot/pkg/dynamodb"
)

// eventResponse is the public shape of an event, consumed by the static
// event page. Only public fields are exposed; the owner stays private.
type eventResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Address     string `json:"address"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl,omitempty"`
}

// Handler is the Lambda handler for the public event lookup (GET /event/{id})
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	eventID := request.PathParameters["id"]
	if eventID == "" {
		return jsonResponse(400, map[string]string{"error": "event id is required"}), nil
	}

	cfg, err := appconfig.Load()
	if err != nil {
		log.Printf("ERROR: failed to load config: %v", err)
		return jsonResponse(500, map[string]string{"error": "internal error"}), nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("ERROR: failed to load AWS config: %v", err)
		return jsonResponse(500, map[string]string{"error": "internal error"}), nil
	}

	eventRepo := dynamodb.NewEventRepository(dynamodb.NewClientWithConfig(awsCfg), cfg.EventsTable)

	event, err := eventRepo.GetByID(ctx, eventID)
	if err != nil {
		log.Printf("ERROR: failed to get event %s: %v", eventID, err)
		return jsonResponse(500, map[string]string{"error": "internal error"}), nil
	}
	if event == nil {
		return jsonResponse(404, map[string]string{"error": "Event not found"}), nil
	}

	return jsonResponse(200, eventResponse{
		ID:          event.EventID,
		Name:        event.Name,
		Date:        event.Date,
		Address:     event.Address,
		Description: event.Description,
		PosterURL:   event.PosterURL,
	}), nil
}

// jsonResponse builds an API Gateway response with CORS headers for the
// static frontend
func jsonResponse(statusCode int, body interface{}) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"error":"%v"}`, err))
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(data),
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Headers": "Content-Type",
			"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
		},
	}
}

func main() {
	lambda.Start(Handler)
}
