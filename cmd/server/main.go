package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/svsu-dev/samadhan/internal/api"
	"github.com/svsu-dev/samadhan/internal/config"
	"github.com/svsu-dev/samadhan/internal/directory"
	"github.com/svsu-dev/samadhan/internal/mailer"
	"github.com/svsu-dev/samadhan/internal/parser"
	"github.com/svsu-dev/samadhan/internal/pkg/logger"
	"github.com/svsu-dev/samadhan/internal/prompt"
	"github.com/svsu-dev/samadhan/internal/reference"
	"github.com/svsu-dev/samadhan/internal/repository/dynamo"
	"github.com/svsu-dev/samadhan/internal/repository/postgres"
	"github.com/svsu-dev/samadhan/internal/service/generation"
	"github.com/svsu-dev/samadhan/internal/service/issues"
	"github.com/svsu-dev/samadhan/internal/textgen"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Samadhan grievance portal (cmd/server)")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.RedactionEnabled())

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Issue store: Postgres by default, DynamoDB for single-table deployments
	var repo issues.Repository
	switch cfg.Storage.Type {
	case "dynamodb":
		dynRepo, err := dynamo.NewIssueRepo(ctx, cfg.Storage.DynamoDBTable, cfg.Storage.AWSRegion)
		if err != nil {
			log.Fatalf("Failed to initialize DynamoDB storage: %v", err)
		}
		repo = dynRepo
		log.Printf("Issue store: DynamoDB table %s", cfg.Storage.DynamoDBTable)
	default:
		db, err := postgres.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("Failed to prepare schema: %v", err)
		}
		repo = postgres.NewIssueRepo(db)
		log.Println("Issue store: PostgreSQL")
	}

	// Optional Redis read cache. The portal works without it.
	var cache *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Printf("Warning: invalid REDIS_URL, cache disabled: %v", err)
		} else {
			client := redis.NewClient(opts)
			if err := client.Ping(ctx).Err(); err != nil {
				log.Printf("Warning: Redis unreachable, cache disabled: %v", err)
			} else {
				cache = client
				log.Println("Redis cache enabled")
			}
		}
	}

	// Drafting pipeline
	gen, err := textgen.FromConfig(ctx, cfg.Generator)
	if err != nil {
		log.Fatalf("Failed to initialize generator (%s): %v", cfg.Generator.Provider, err)
	}
	builder, err := prompt.NewBuilder(cfg.Institution.Name)
	if err != nil {
		log.Fatalf("Failed to compile prompt template: %v", err)
	}
	letterParser, err := parser.New()
	if err != nil {
		log.Fatalf("Failed to compile letter template: %v", err)
	}
	generationSvc := generation.New(gen, builder, letterParser, cfg.Institution, cfg.Generator)
	log.Printf("Generator: %s (%s), timeout %s", cfg.Generator.Provider, cfg.Generator.Model, cfg.Generator.Timeout())

	// Routing and submission
	dir := directory.FromConfig(cfg.Directory, cfg.Institution.EmailSuffix)

	var sender issues.MailSender
	if cfg.SES.Enabled {
		sesSender, err := mailer.NewSender(ctx, cfg.SES)
		if err != nil {
			log.Printf("Warning: SES sender unavailable, compose links only: %v", err)
		} else {
			sender = sesSender
			log.Printf("Direct SES delivery enabled from %s", cfg.SES.From)
		}
	}
	issueSvc := issues.New(repo, dir, cache, sender, cfg.Institution.EmailSuffix, cfg.Redis.TTL())

	refSvc := reference.New(cfg.Reference, cache, cfg.Redis.TTL())
	if refSvc.NoticesEnabled() {
		log.Printf("Campus notices feed: %s", cfg.Reference.NoticesFeedURL)
	}

	handlers := api.NewHandlers(generationSvc, issueSvc, refSvc)
	router := api.SetupRoutes(handlers, cfg.Server.StaticDir)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
