package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/doltservices/doltbook/api"
	"github.com/doltservices/doltbook/config"
	"github.com/doltservices/doltbook/internal/auth"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Bookings  *api.BookingHandler
	Payments  *api.PaymentHandler
	Webhooks  *api.WebhookHandler
	Services  *api.ServiceHandler
	Providers *api.ProviderHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, authSvc *auth.Service, handlers Handlers) error {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	root := router.Group("")
	handlers.Services.Register(root)
	handlers.Providers.Register(root)
	handlers.Webhooks.Register(root)
	handlers.Bookings.Register(root, authSvc)
	handlers.Payments.Register(root, authSvc)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
