package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetRoomSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncGetRoomSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetRoomSockets: fncGetRoomSockets,
	}
}

// consume directed replies from the game service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// consume room events from the game and sweep services
func (b *Broker) SubscribeRoomEvents(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleRoomEvent)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives directed replies from the game service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "init-response", "get-room-state-response", "get-round-state-response":
		b.sendMessage(message)
	default:
		log.Errorf("Unknown message type %q", message.Type)
		return
	}
}

// handleRoomEvent fans a room event out to every socket following the room.
// The event only names what changed; clients re-fetch the state they need.
func (b *Broker) handleRoomEvent(msgNats *nats.Msg) {
	event := comm.RoomEvent{}
	if err := json.Unmarshal(msgNats.Data, &event); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	sockets, ok := b.GetRoomSockets(event.RoomId)
	if !ok {
		return
	}

	msg := &comm.WSMessage{
		Type: "room-event",
		Data: msgNats.Data,
	}
	for _, socketId := range sockets {
		msg.SocketId = socketId
		b.sendMessage(msg)
	}
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %v", socketId, err)
		}
	}
}
