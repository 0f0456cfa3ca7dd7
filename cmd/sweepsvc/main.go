package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	config "github.com/promptfighter/game-services/configs"
	mongodb "github.com/promptfighter/game-services/internal/db"
	"github.com/promptfighter/game-services/internal/gamesvc/broker"
	"github.com/promptfighter/game-services/internal/gamesvc/db"
	"github.com/promptfighter/game-services/internal/gamesvc/service"
	"github.com/promptfighter/game-services/internal/gamesvc/store"
	natscli "github.com/promptfighter/game-services/internal/nats"
)

const SERVICE_NAME = "sweep"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// mongo connection, for cleanup audit records
	mongoDB, cancelMongo, err := mongodb.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancelMongo()
	mongodb.CreateTTLIndexForCollection(mongoDB, store.CleanupAuditCollection)

	// Connect to NATS
	n, err := natscli.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(1)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	roomStore := store.NewRoomStore(dbpool)
	sessionStore := store.NewSessionStore(dbpool)
	auditStore := store.NewAuditStore(mongoDB, 30*24*time.Hour)

	notifier := broker.NewNotifier(n.Conn)
	sessionService := service.NewSessionService(roomStore, sessionStore, notifier)

	idleGrace := 30 * time.Minute
	if v := os.Getenv("ROOM_IDLE_GRACE_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid ROOM_IDLE_GRACE_MINUTES value: %v", err)
		}
		idleGrace = time.Duration(minutes) * time.Minute
	}
	cleanupService := service.NewCleanupService(roomStore, auditStore, notifier, idleGrace)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// phase timeouts are checked often, idle rooms only once a minute
	phaseTicker := time.NewTicker(5 * time.Second)
	defer phaseTicker.Stop()
	reapTicker := time.NewTicker(60 * time.Second)
	defer reapTicker.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	log.Infof("%s service running, instance %s", SERVICE_NAME, instanceId)

	for {
		select {
		case <-phaseTicker.C:
			if advanced := sessionService.SweepTimeouts(ctx); advanced > 0 {
				log.Infof("phase sweep advanced %d sessions", advanced)
			}
		case <-reapTicker.C:
			if _, err := cleanupService.Sweep(ctx, service.TriggerScheduled); err != nil {
				log.Errorf("cleanup sweep error: %v", err)
			}
		case <-stop:
			log.Infof("%s service gracefully stopped", SERVICE_NAME)
			return
		}
	}
}
