package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"testdeck/pkg/logging"
)

// ServeOptions configures the report browser server.
type ServeOptions struct {
	Host string
	Port int
	Dir  string
}

// Serve runs a local HTTP server over the report directory: a JSON index of
// artifacts at /api/reports and the artifacts themselves under /reports/.
// Blocks until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/api/reports", func(c *gin.Context) {
		artifacts, err := ListArtifacts(opts.Dir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": artifacts})
	})
	router.StaticFS("/reports", http.Dir(opts.Dir))
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api/reports")
	})

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Report", "Serving reports from %s on http://%s", opts.Dir, addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down report server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("report server failed: %w", err)
	}
}
