package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/playperu/pelicansoup/internal/soup"
)

// Room event types.
const (
	EventPlayerJoined   = "player_joined"
	EventStatusChanged  = "status_changed"
	EventQuestionAsked  = "question_asked"
	EventQuestionJudged = "question_judged"
	EventGuessMade      = "guess_made"
	EventChatMessage    = "chat_message"

	EventVoteCast         = "vote_cast"
	EventPlayerEliminated = "player_eliminated"
)

// RoomEvent is the payload published to room subscribers. Only the field
// matching Type is set.
type RoomEvent struct {
	Type     string                `json:"type"`
	RoomCode string                `json:"roomCode"`
	Status   soup.RoomStatus       `json:"status,omitempty"`
	Truth    string                `json:"truth,omitempty"`
	Player   *soup.Player          `json:"player,omitempty"`
	Question *soup.QuestionAttempt `json:"question,omitempty"`
	Guess    *soup.GuessAttempt    `json:"guess,omitempty"`
	Message  *soup.ChatMessage     `json:"message,omitempty"`
}

// Broker fans room events out to stream subscribers.
type Broker interface {
	// Subscribe returns a channel that receives JSON-encoded events for
	// the room.
	Subscribe(room string) chan []byte
	Unsubscribe(room string, ch chan []byte)
	Publish(ctx context.Context, room string, event RoomEvent)
}

// MemoryBroker is an in-process pub/sub keyed by room code.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

func (b *MemoryBroker) Subscribe(room string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[room] == nil {
		b.subs[room] = make(map[chan []byte]struct{})
	}
	b.subs[room][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *MemoryBroker) Unsubscribe(room string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[room], ch)
	if len(b.subs[room]) == 0 {
		delete(b.subs, room)
	}
	b.mu.Unlock()
}

func (b *MemoryBroker) Publish(_ context.Context, room string, event RoomEvent) {
	data, _ := json.Marshal(event)
	b.deliver(room, data)
}

// deliver sends an encoded event to every local subscriber of room.
func (b *MemoryBroker) deliver(room string, data []byte) {
	b.mu.RLock()
	for ch := range b.subs[room] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

func (b *MemoryBroker) subscribers(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[room])
}
