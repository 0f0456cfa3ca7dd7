package comm

import (
	"encoding/json"
	"time"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "subscribe-room", "get-room-state"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// Event classes fanned out per room. An event is a signal to re-fetch the
// slice of state it names, never a carrier of that state.
const (
	EventMembershipChanged  = "membership-changed"
	EventPhaseChanged       = "phase-changed"
	EventSubmissionReceived = "submission-received"
	EventVoteCast           = "vote-cast"
	EventRoomReaped         = "room-reaped"
)

// Reasons attached to phase-changed events.
const (
	ReasonOwner           = "owner"
	ReasonTimeout         = "timeout"
	ReasonAllPlayersVoted = "all_players_voted"
)

type RoomEvent struct {
	Class     string `json:"class"`
	RoomId    string `json:"room_id"`
	Phase     string `json:"phase,omitempty"`
	Round     int    `json:"round,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func NewRoomEvent(class, roomId string) RoomEvent {
	return RoomEvent{
		Class:     class,
		RoomId:    roomId,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Socket originated state queries answered by the game service.
type RoomStateRequest struct {
	RoomId string `json:"room_id"`
	UserId string `json:"user_id"`
}

type RoomState struct {
	Room    *models.Room         `json:"room"`
	Members []*models.RoomMember `json:"members"`
	Session *models.Session      `json:"session,omitempty"`
}

type RoundState struct {
	RoomId      string               `json:"room_id"`
	Round       int                  `json:"round"`
	Submissions []*models.Submission `json:"submissions"`
	Progress    VotingProgress       `json:"progress"`
}

type VotingProgress struct {
	TotalPlayers int `json:"totalPlayers"`
	VotedPlayers int `json:"votedPlayers"`
}

type CleanupResult struct {
	CleanupId          string `json:"cleanup_id"`
	CleanedRooms       int    `json:"cleaned_rooms"`
	CleanedSessions    int    `json:"cleaned_sessions"`
	CleanedPlayers     int    `json:"cleaned_players"`
	CleanedVotes       int    `json:"cleaned_votes"`
	CleanedSubmissions int    `json:"cleaned_submissions"`
	ExecutionTimeMs    int64  `json:"execution_time_ms"`
	Trigger            string `json:"trigger"` // "scheduled" or "manual"
}
