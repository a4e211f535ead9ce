// Package api serves the game over HTTP for scripted play and scraping.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amalg/go-snake/internal/game"
)

// Engine is the part of game.Engine the API drives.
type Engine interface {
	Steer(d game.Direction)
	Restart()
	Snapshot() game.State
}

type steerRequest struct {
	Direction string `json:"direction" binding:"required"`
}

type stateResponse struct {
	Status      string            `json:"status"`
	Cause       string            `json:"cause"`
	Length      int               `json:"length"`
	Snake       []game.Coordinate `json:"snake"`
	Food        *game.Coordinate  `json:"food,omitempty"`
	At          *game.Coordinate  `json:"at,omitempty"`
	Message     string            `json:"message,omitempty"`
	FreeCells   int               `json:"free_cells"`
	BoardWidth  int               `json:"board_width"`
	BoardHeight int               `json:"board_height"`
}

func newStateResponse(st game.State) stateResponse {
	resp := stateResponse{
		Status:      st.Status.String(),
		Cause:       st.Cause.String(),
		Length:      st.Length,
		Snake:       st.Snake,
		Message:     st.Message,
		FreeCells:   game.Cells - st.Length,
		BoardWidth:  game.Size,
		BoardHeight: game.Size,
	}
	if st.FoodPresent {
		food := st.Food
		resp.Food = &food
		resp.FreeCells--
	}
	if st.Status == game.StatusLost {
		at := st.At
		resp.At = &at
	}
	return resp
}

// NewRouter builds the HTTP routes. reg may be nil to skip /metrics.
func NewRouter(engine Engine, reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, newStateResponse(engine.Snapshot()))
	})

	r.POST("/steer", func(c *gin.Context) {
		var req steerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d, err := game.ParseDirection(req.Direction)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		engine.Steer(d)
		c.JSON(http.StatusAccepted, gin.H{"direction": d.String()})
	})

	r.POST("/restart", func(c *gin.Context) {
		engine.Restart()
		c.JSON(http.StatusAccepted, gin.H{})
	})

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	return r
}

// Serve runs the router on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[API] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Printf("[API] Stopped")
		return nil
	}
}
