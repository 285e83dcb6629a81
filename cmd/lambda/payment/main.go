package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"

	"store-backend-api/internal/config"
	"store-backend-api/internal/handlers"
	"store-backend-api/internal/middleware"
	"store-backend-api/pkg/lambda"
	"store-backend-api/pkg/server"
)

var adapter *lambda.GinAdapter

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	cm := lambda.GetConnectionManager()
	if err := cm.Initialize(cfg); err != nil {
		panic("Failed to initialize container: " + err.Error())
	}

	container, err := cm.GetContainer(context.Background())
	if err != nil {
		panic("Failed to get container: " + err.Error())
	}

	adapter = lambda.NewGinAdapter(buildEngine(container))
}

func buildEngine(container *server.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.CORS(), middleware.StructuredLogger())

	paymentHandler := handlers.NewPaymentHandler(container.PaymentService)

	authed := engine.Group("", middleware.Authentication(container.AuthService))
	authed.POST("/pagamento", paymentHandler.ProcessPayment)

	return engine
}

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := adapter.Handle(ctx, lambda.FromAPIGateway(event))
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error": "Internal server error"}`,
		}, nil
	}

	return resp.ToAPIGateway(), nil
}

func main() {
	awslambda.Start(handler)
}
