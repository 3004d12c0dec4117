package main

import (
	"log"

	"github.com/techagentng/incidentx/config"
	"github.com/techagentng/incidentx/db"
	"github.com/techagentng/incidentx/mailingservices"
	"github.com/techagentng/incidentx/realtime"
	"github.com/techagentng/incidentx/server"
	"github.com/techagentng/incidentx/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Initialize Mailgun client
	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init(conf.MgDomain, conf.MailgunApiKey, conf.MgEmailFrom)

	gormDB := db.GetDB(conf)
	authRepo := db.NewAuthRepo(gormDB)
	incidentRepo := db.NewIncidentRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)

	// Presence is process-local unless redis is configured, in which case
	// the online set and deliveries are shared across instances.
	var presence realtime.PresenceDirectory
	if conf.RedisAddr != "" {
		redisClient, err := realtime.NewRedisClient(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		presence = realtime.NewRedisPresence(redisClient)
	} else {
		presence = realtime.NewHub()
	}

	notificationService := services.NewNotificationService(notificationRepo, authRepo, presence, mailgunClient)
	authService := services.NewAuthService(authRepo, mailgunClient, conf)
	incidentService := services.NewIncidentService(incidentRepo, authRepo, notificationService)
	mediaService := services.NewMediaService(conf)

	s := &server.Server{
		Config:                 conf,
		Mail:                   mailgunClient,
		AuthRepository:         authRepo,
		IncidentRepository:     incidentRepo,
		NotificationRepository: notificationRepo,
		AuthService:            authService,
		IncidentService:        incidentService,
		NotificationService:    notificationService,
		MediaService:           mediaService,
		Presence:               presence,
	}

	s.Start()
}
