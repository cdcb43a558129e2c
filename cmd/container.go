package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/careerlens/careerlens/analysis"
	"github.com/careerlens/careerlens/analysis/analysisapi"
	"github.com/careerlens/careerlens/analysis/analysisinfra"
	"github.com/careerlens/careerlens/analysis/analysissrv"
	"github.com/careerlens/careerlens/analysis/worker"
	"github.com/careerlens/careerlens/internal/ai/reviewer"
	"github.com/careerlens/careerlens/internal/extract"
	"github.com/careerlens/careerlens/pkg/fsx"
	"github.com/careerlens/careerlens/pkg/fsx/fsxs3"
	"github.com/careerlens/careerlens/pkg/logx"
)

const analysisQueueName = "careerlens:analysis_jobs"

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Core Components
	ExtractEngine *extract.Engine
	Reviewer      analysis.RemoteReviewer

	// Services
	AnalysisService *analysissrv.Service

	// API Handlers
	AnalysisHandlers *analysisapi.AnalysisHandlers

	// Background Processing
	Queue  analysis.JobQueue
	Worker *worker.AnalysisWorker
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	// .env is optional; real deployments configure via the environment
	if err := godotenv.Load(); err != nil {
		logx.Debugf("No .env file loaded: %v", err)
	}

	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASS")
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. AWS S3 Configuration (upload archive)
	awsRegion := os.Getenv("AWS_REGION")
	awsBucket := os.Getenv("AWS_BUCKET")
	if awsBucket != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
		if err != nil {
			logx.Fatalf("unable to load SDK config, %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, awsBucket, "careerlens")
	} else {
		logx.Warn("AWS_BUCKET is not set, uploaded documents will not be archived")
	}
}

func (c *Container) initServices() {
	// Core components
	c.ExtractEngine = extract.NewEngine()

	// Remote reviewer is optional; without an API key every analysis takes
	// the local pipeline.
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		c.Reviewer = reviewer.NewReviewer(apiKey, os.Getenv("OPENAI_MODEL"))
	} else {
		logx.Warn("OPENAI_API_KEY is not set, analyses will use the local pipeline only")
	}

	// Repositories and queue
	repo := analysisinfra.NewPostgresRepository(c.DB)
	jobRepo := analysisinfra.NewPostgresJobRepository(c.DB)
	c.Queue = analysisinfra.NewRedisQueue(c.Redis, analysisQueueName)

	// Domain service
	remoteTimeout := time.Duration(envInt("REMOTE_TIMEOUT_SECONDS", 0)) * time.Second
	c.AnalysisService = analysissrv.NewService(repo, jobRepo, c.Queue, c.Reviewer, remoteTimeout)

	// Handlers
	c.AnalysisHandlers = analysisapi.NewAnalysisHandlers(c.AnalysisService, c.ExtractEngine, c.FileSystem)

	// Worker pool
	workers := envInt("ANALYSIS_WORKERS", 3)
	c.Worker = worker.NewAnalysisWorker(c.AnalysisService, c.Queue, workers)
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logx.Warnf("Invalid value for %s: %q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}
