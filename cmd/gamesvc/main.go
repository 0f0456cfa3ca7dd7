package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/promptfighter/game-services/configs"
	mongodb "github.com/promptfighter/game-services/internal/db"
	"github.com/promptfighter/game-services/internal/gamesvc/broker"
	"github.com/promptfighter/game-services/internal/gamesvc/db"
	handlers "github.com/promptfighter/game-services/internal/gamesvc/handlers"
	"github.com/promptfighter/game-services/internal/gamesvc/imagegen"
	"github.com/promptfighter/game-services/internal/gamesvc/service"
	"github.com/promptfighter/game-services/internal/gamesvc/store"
	nats "github.com/promptfighter/game-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	instanceId = "001"
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
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	roomStore := store.NewRoomStore(dbpool)
	memberStore := store.NewMemberStore(dbpool)
	sessionStore := store.NewSessionStore(dbpool)
	submissionStore := store.NewSubmissionStore(dbpool)
	voteStore := store.NewVoteStore(dbpool)
	targetImageStore := store.NewTargetImageStore(dbpool)
	profileStore := store.NewProfileStore(dbpool)
	auditStore := store.NewAuditStore(mongoDB, 30*24*time.Hour)

	notifier := broker.NewNotifier(n.Conn)

	roomService := service.NewRoomService(roomStore, memberStore, sessionStore, targetImageStore, notifier)
	sessionService := service.NewSessionService(roomStore, sessionStore, notifier)
	ledgerService := service.NewLedgerService(roomStore, memberStore, sessionStore, submissionStore, voteStore, notifier)
	scoreService := service.NewScoreService(memberStore, sessionStore, submissionStore)
	profileService := service.NewProfileService(profileStore)

	idleGrace := 30 * time.Minute
	if v := os.Getenv("ROOM_IDLE_GRACE_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid ROOM_IDLE_GRACE_MINUTES value: %v", err)
		}
		idleGrace = time.Duration(minutes) * time.Minute
	}
	cleanupService := service.NewCleanupService(roomStore, auditStore, notifier, idleGrace)

	images := imagegen.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"))

	// init peer message broker
	b := broker.NewBroker(n.Conn, roomService, ledgerService, profileService)

	// subscribe to socket service
	sub, err := b.SubscribSocketService(broker.TopicSocketService)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(roomService, sessionService, ledgerService,
		scoreService, cleanupService, profileService, images)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GAME_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
