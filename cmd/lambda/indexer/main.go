// ABOUTME: Lambda entry point for the indexing endpoint
// ABOUTME: Wires S3, DynamoDB, CloudWatch, and OpenAI into the index handler
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/documentgpt/docchat/internal/cache"
	"github.com/documentgpt/docchat/internal/config"
	"github.com/documentgpt/docchat/internal/handler"
	"github.com/documentgpt/docchat/internal/indexer"
	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/metrics"
	"github.com/documentgpt/docchat/internal/ratelimit"
	"github.com/documentgpt/docchat/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}

	bucket := store.NewS3Store(s3.NewFromConfig(awsCfg), cfg.UploadsBucket)
	docs := store.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DocumentsTable)

	var emitter *metrics.Emitter
	if cfg.MetricsEnabled {
		emitter = metrics.NewEmitter(cloudwatch.NewFromConfig(awsCfg), metrics.DefaultNamespace)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		log.Fatalf("failed to initialize OpenAI client: %v", err)
	}

	ix := indexer.New(bucket, bucket, docs, client, client)

	// The chat and indexer Lambdas run in separate processes, so the shared
	// cache here only covers answers produced by this instance. Invalidation
	// of the chat Lambda's cache rides on its 5-minute TTL.
	answerCache, err := cache.New(cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("failed to create answer cache: %v", err)
	}
	limiter, err := ratelimit.New(ratelimit.Config{
		ChatPerMinute:  cfg.ChatPerMinute,
		IndexPerMinute: cfg.IndexPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to create rate limiter: %v", err)
	}

	h := handler.NewIndexHandler(ix, answerCache, limiter, emitter)
	lambda.Start(h.Handle)
}
