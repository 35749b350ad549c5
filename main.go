// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"school-vote/config"
	"school-vote/controllers"
	"school-vote/logger"
	"school-vote/metrics"
	"school-vote/services"
	"school-vote/store"
	"school-vote/store/dynamo"
	"school-vote/store/memory"
	"school-vote/store/sqlite"
)

// openStore builds the vote store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (store.VoteStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn.Println("openStore: using in-memory store, votes are lost on restart")
		return memory.New(), nil

	case config.DriverSQLite:
		logger.Info.Printf("openStore: using sqlite at %s", cfg.SQLitePath)
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.DriverDynamoDB:
		client, err := dynamo.NewClient(cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		if cfg.TracingEnabled {
			xray.AWS(client.Client)
		}
		st := dynamo.New(client, cfg.DynamoTable)
		if err := st.EnsureTable(ctx); err != nil {
			return nil, err
		}
		logger.Info.Printf("openStore: using dynamodb table %s in %s", cfg.DynamoTable, cfg.AWSRegion)
		return st, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// newPublisher returns the CloudWatch publisher when metrics are enabled.
func newPublisher(cfg *config.Config) metrics.Publisher {
	if !cfg.MetricsEnabled {
		return metrics.NopPublisher{}
	}
	pub, err := metrics.NewCloudWatchPublisher(cfg.AWSRegion, cfg.MetricsNamespace)
	if err != nil {
		logger.Error.Printf("newPublisher: CloudWatch unavailable, metrics disabled: %v", err)
		return metrics.NopPublisher{}
	}
	return pub
}

// adminPasswordHash prefers a configured bcrypt hash over the plain password.
func adminPasswordHash(cfg *config.Config) ([]byte, error) {
	if cfg.AdminPasswordHash != "" {
		return []byte(cfg.AdminPasswordHash), nil
	}
	if cfg.AdminPassword == config.DefaultAdminPassword {
		logger.Warn.Println("adminPasswordHash: results password is the built-in default")
	}
	return services.HashPassword(cfg.AdminPassword)
}

// setupRouter wires services, controllers and middleware onto a gin engine.
func setupRouter(cfg *config.Config, st store.VoteStore, pub metrics.Publisher, hash []byte) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Initialize session store
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("schoolvote", sessionStore))

	templatesDir := filepath.Join(cfg.TemplatesDir, "*.html")
	logger.Info.Printf("setupRouter: templates path %s", templatesDir)
	router.LoadHTMLGlob(templatesDir)

	controllers.SetConfig(cfg.ApplicationURL)

	gate := services.NewAdminGate(hash, time.Duration(cfg.SessionMaxAge)*time.Second)
	controllers.RegisterRoutes(router,
		controllers.NewLoginController(services.NewIdentityResolver(cfg.EmailDomain)),
		controllers.NewVoteController(services.NewVoteService(st, pub)),
		controllers.NewAdminController(gate, services.NewResultsService(st, gate, pub)),
	)
	return router
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogDir); err != nil {
		logger.Error.Fatalf("Failed to initialise log file: %v", err)
	}
	defer logger.Close()
	logger.SetLogLevel(cfg.Env)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error.Fatalf("Failed to open vote store: %v", err)
	}
	defer st.Close()

	hash, err := adminPasswordHash(cfg)
	if err != nil {
		logger.Error.Fatalf("Failed to hash results password: %v", err)
	}

	pub := newPublisher(cfg)
	if cw, ok := pub.(*metrics.CloudWatchPublisher); ok {
		defer cw.Flush()
	}
	router := setupRouter(cfg, st, pub, hash)

	var handler http.Handler = router
	if cfg.TracingEnabled {
		handler = xray.Handler(xray.NewFixedSegmentNamer("school-vote"), router)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		logger.Info.Println("main: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("main: shutdown: %v", err)
		}
	}()

	logger.Info.Printf("main: listening on %s (store=%s)", cfg.Addr(), cfg.StoreDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error.Printf("main: server stopped: %v", err)
		return
	}
	<-done
	logger.Info.Println("main: server closed")
}
