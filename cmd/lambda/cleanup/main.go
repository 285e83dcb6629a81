package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"store-backend-api/internal/config"
	"store-backend-api/pkg/lambda"
)

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := lambda.GetConnectionManager().Initialize(cfg); err != nil {
		panic("Failed to initialize container: " + err.Error())
	}
}

// handler runs the orphan image cleanup on each scheduled event
func handler(ctx context.Context, event events.CloudWatchEvent) error {
	container, err := lambda.GetConnectionManager().GetContainer(ctx)
	if err != nil {
		return err
	}

	result, err := container.CleanupService.CleanupOrphanImages(ctx)
	if err != nil {
		container.Logger.WithError(err).Error("Scheduled image cleanup failed")
		return err
	}

	container.Logger.WithFields(logrus.Fields{
		"schedule_id":   event.ID,
		"orphans_found": result.OrphansFound,
		"deleted_count": result.DeletedCount,
	}).Info("Scheduled image cleanup finished")

	return nil
}

func main() {
	awslambda.Start(handler)
}
