package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	configs "classwork_service/config"
	"classwork_service/internal/blob"
	"classwork_service/internal/linkmeta"
	"classwork_service/internal/repository"
	"classwork_service/internal/service"
	"classwork_service/pkg/db"
	"classwork_service/pkg/kafka"
	"classwork_service/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	log := logger.New()

	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConfig := db.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	}

	pg, err := db.NewPostgres(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	courseRepo := repository.NewCourseRepository(pg.DB())
	workRepo := repository.NewCourseWorkRepository(pg.DB())
	submissionRepo := repository.NewSubmissionRepository(pg.DB())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobStore, err := blob.NewS3Store(ctx, blob.Config{
		Endpoint:        cfg.Blob.Endpoint,
		Region:          cfg.Blob.Region,
		AccessKeyID:     cfg.Blob.AccessKeyID,
		SecretAccessKey: cfg.Blob.SecretAccessKey,
		Bucket:          cfg.Blob.Bucket,
		PublicBaseURL:   cfg.Blob.PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	var resolver service.MetadataResolver = linkmeta.NewHTTPResolver(cfg.Resolver.Timeout)
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address})
		resolver = linkmeta.NewCachedResolver(resolver, rdb, cfg.Redis.CacheTTL)
	}

	kafkaProducer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
	if err != nil {
		log.Fatalf("Failed to create Kafka producer: %v", err)
	}
	defer kafkaProducer.Close()

	courseService := service.NewCourseService(courseRepo)
	courseWorkService := service.NewCourseWorkService(courseRepo, workRepo, submissionRepo)
	submissionService := service.NewSubmissionService(courseRepo, workRepo, submissionRepo, kafkaProducer, log)
	attachmentService := service.NewAttachmentService(courseRepo, workRepo, submissionRepo, blobStore, resolver, log)

	app := service.NewApp(courseService, courseWorkService, submissionService, attachmentService)
	_ = app // handed to the embedding UI layer

	worker := NewReminderWorker(
		workRepo,
		submissionRepo,
		kafkaProducer,
		log,
		cfg.Worker.Interval,
		cfg.Worker.DueWindow,
	)
	go worker.Start(ctx)

	log.Info("classwork service started")
	<-ctx.Done()

	log.Info("Shutting down...")
	log.Info("Service stopped")
}
