package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/gamesvc/models"
	"github.com/promptfighter/game-services/internal/gamesvc/service"
)

const (
	// socket originated queries arrive here
	TopicSocketService = "socket.service"
	// directed replies back to a single socket
	TopicGameService = "game.service"
	// room events fanned out to every socket subscribed to the room
	TopicGameEvents = "game.events"
)

type Broker struct {
	Conn           *nats.Conn
	RoomService    *service.RoomService
	LedgerService  *service.LedgerService
	ProfileService *service.ProfileService
}

func NewBroker(nc *nats.Conn, roomService *service.RoomService,
	ledgerService *service.LedgerService, profileService *service.ProfileService) *Broker {
	return &Broker{
		Conn:           nc,
		RoomService:    roomService,
		LedgerService:  ledgerService,
		ProfileService: profileService,
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	//unmarshal nats message
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "init":
		// unmarshal socket message
		profile := models.Profile{}
		err := json.Unmarshal(msg.Data, &profile)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		created, err := b.ProfileService.GetOrCreateProfile(ctx, profile)
		if err != nil {
			log.Errorf("Error [ProfileService.GetOrCreateProfile] %s", err)
			return
		}

		b.PublishInitResponse(created, msg.SocketId)
	case "get-room-state":
		var request comm.RoomStateRequest
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			return
		}
		roomID, err := uuid.Parse(request.RoomId)
		if err != nil {
			log.Errorf("Error get-room-state: bad room id %q", request.RoomId)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		state, err := b.RoomService.GetRoomState(ctx, roomID)
		if err != nil {
			log.Errorf("Error [RoomService.GetRoomState] %s", err)
			return
		}

		b.PublishRoomStateResponse(state, msg.SocketId)
	case "get-round-state":
		var request comm.RoomStateRequest
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			return
		}
		roomID, err := uuid.Parse(request.RoomId)
		if err != nil {
			log.Errorf("Error get-round-state: bad room id %q", request.RoomId)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		state, err := b.LedgerService.RoundState(ctx, roomID)
		if err != nil {
			log.Errorf("Error [LedgerService.RoundState] %s", err)
			return
		}

		b.PublishRoundStateResponse(state, msg.SocketId)
	default:
		log.Errorf("Unknown message type %q", msg.Type)
		return
	}
}

func (b *Broker) PublishInitResponse(p *models.Profile, socketId string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Errorf("unable to marshal profile %s %s", p.UserID, socketId)
	}

	msg := &comm.WSMessage{
		Type:     "init-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(TopicGameService, payload)
}

func (b *Broker) PublishRoomStateResponse(state *comm.RoomState, socketId string) {
	data, err := json.Marshal(state)
	if err != nil {
		log.Errorf("[PublishRoomStateResponse] unable to marshal room state for %s", socketId)
	}

	msg := &comm.WSMessage{
		Type:     "get-room-state-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(TopicGameService, payload)
}

func (b *Broker) PublishRoundStateResponse(state *comm.RoundState, socketId string) {
	data, err := json.Marshal(state)
	if err != nil {
		log.Errorf("[PublishRoundStateResponse] unable to marshal round state for %s", socketId)
	}

	msg := &comm.WSMessage{
		Type:     "get-round-state-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(TopicGameService, payload)
}

// PublishRoomEvent fans a room event out to the socket service, which relays
// it to every socket subscribed to the room.
func (b *Broker) PublishRoomEvent(ev comm.RoomEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.Publish(TopicGameEvents, payload)
}

// consume message from socket service
func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
