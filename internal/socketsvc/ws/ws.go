package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
	"github.com/promptfighter/game-services/internal/socketsvc/broker"
)

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	roomMap sync.Map // to keep track of socketId with roomId
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "init":
		s.handleInit(socketId, message)
	case "subscribe-room":
		s.handleSubscribeRoom(socketId, message)
	case "unsubscribe-room":
		s.roomMap.Delete(socketId)
	case "get-room-state", "get-round-state":
		s.forwardToGameService(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleInit(socketId string, msg *comm.WSMessage) {

	var payload struct {
		UserId   string `json:"user_id"`
		Username string `json:"username"`
		Avatar   string `json:"avatar_url"`
	}

	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: invalid_init_data Malformed init payload %s", err)
		return
	}

	if payload.UserId == "" {
		log.Error("Invalid init payload: missing required user fields")
		return
	}

	s.forwardToGameService(socketId, msg)
}

// handleSubscribeRoom registers the socket for the room's event fanout. A
// socket follows one room at a time; subscribing again moves it.
func (s *Ws) handleSubscribeRoom(socketId string, msg *comm.WSMessage) {
	var payload struct {
		RoomId string `json:"room_id"`
	}

	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: malformed subscribe-room payload %s", err)
		return
	}
	if payload.RoomId == "" {
		log.Error("Invalid subscribe-room payload: missing room_id")
		return
	}

	s.StoreRoom(socketId, payload.RoomId)
	log.Infof("Socket %s subscribed to room %s", socketId, payload.RoomId)
}

// forwardToGameService stamps the socket id onto the message and relays it
// over NATS for the game service to answer.
func (s *Ws) forwardToGameService(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	topic := "socket.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId string, roomId string) {
	s.roomMap.Store(socketId, roomId)
}

func (s *Ws) GetRoom(socketId string) (string, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return "", false
	}
	return room.(string), true
}

func (s *Ws) GetRoomSockets(roomId string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == roomId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

// HandleDisconnect drops the connection and its room subscription.
func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
