package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/techagentng/incidentx/config"
	"github.com/techagentng/incidentx/db"
	"github.com/techagentng/incidentx/mailingservices"
	"github.com/techagentng/incidentx/realtime"
	"github.com/techagentng/incidentx/services"
)

// Server wires the HTTP layer to the services and repositories.
type Server struct {
	Config *config.Config
	Mail   mailingservices.Mailer

	AuthRepository         db.AuthRepository
	IncidentRepository     db.IncidentRepository
	NotificationRepository db.NotificationRepository

	AuthService         services.AuthService
	IncidentService     services.IncidentService
	NotificationService services.NotificationService
	MediaService        services.MediaService

	Presence realtime.PresenceDirectory
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to five seconds.
func (s *Server) Start() {
	r := s.setupRouter()

	port := s.Config.Port
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("Server started on port %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
