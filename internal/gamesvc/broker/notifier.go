package broker

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/promptfighter/game-services/internal/comm"
)

// Notifier is the publish-only half of the broker, for services that emit
// room events but never answer socket queries.
type Notifier struct {
	Conn *nats.Conn
}

func NewNotifier(nc *nats.Conn) *Notifier {
	return &Notifier{Conn: nc}
}

func (n *Notifier) PublishRoomEvent(ev comm.RoomEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := n.Conn.Publish(TopicGameEvents, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", TopicGameEvents, err)
		return err
	}
	return nil
}
