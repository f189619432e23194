package nats

import (
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"voyager.com/holdem/game"
	"voyager.com/holdem/logging"
)

var natsLogger = log.With().Str("logger_name", "nats::table").Logger()

/**
For each room we listen on one subject for incoming player messages and
publish notifications on another:

	table.<roomID>.action   player -> engine (PLAYER_ACTED, REVEAL)
	table.<roomID>.updates  engine -> all players

The action subject is the only inbound path; fired timer callbacks reach
the session directly through the scheduler, and both are serialized by
the session loop.
*/

func actionSubject(roomID string) string {
	return fmt.Sprintf("table.%s.action", roomID)
}

func updatesSubject(roomID string) string {
	return fmt.Sprintf("table.%s.updates", roomID)
}

// playerMsg is the inbound wire format.
type playerMsg struct {
	MessageType string `json:"messageType"`
	PlayerID    uint64 `json:"playerId"`
	Action      string `json:"action"`
	Amount      int64  `json:"amount"`
}

const (
	msgPlayerActed = "PLAYER_ACTED"
	msgReveal      = "REVEAL"
)

// TableAdapter bridges NATS and the table sessions. It implements
// game.MessageReceiver for the outbound direction.
type TableAdapter struct {
	nc      *natsgo.Conn
	manager *game.Manager

	mu            sync.Mutex
	subscriptions map[string]*natsgo.Subscription
	limiters      map[string]*rate.Limiter
}

func NewTableAdapter(url string) (*TableAdapter, error) {
	nc, err := natsgo.Connect(url)
	if err != nil {
		return nil, err
	}
	return &TableAdapter{
		nc:            nc,
		subscriptions: make(map[string]*natsgo.Subscription),
		limiters:      make(map[string]*rate.Limiter),
	}, nil
}

// BindManager wires the adapter to the session manager. Must be called
// before any room is subscribed.
func (a *TableAdapter) BindManager(manager *game.Manager) {
	a.manager = manager
}

// SubscribeRoom starts listening for player actions for one room. Bursts
// beyond a few actions per second are dropped before they reach the
// session loop.
func (a *TableAdapter) SubscribeRoom(roomID string) error {
	sub, err := a.nc.Subscribe(actionSubject(roomID), func(msg *natsgo.Msg) {
		a.onPlayerMsg(roomID, msg.Data)
	})
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.subscriptions[roomID] = sub
	a.limiters[roomID] = rate.NewLimiter(rate.Limit(5), 10)
	a.mu.Unlock()
	return nil
}

// UnsubscribeRoom stops listening for a room, e.g. when it is torn down.
func (a *TableAdapter) UnsubscribeRoom(roomID string) {
	a.mu.Lock()
	sub, ok := a.subscriptions[roomID]
	delete(a.subscriptions, roomID)
	delete(a.limiters, roomID)
	a.mu.Unlock()
	if ok {
		sub.Unsubscribe()
	}
}

func (a *TableAdapter) Close() {
	a.mu.Lock()
	for roomID, sub := range a.subscriptions {
		sub.Unsubscribe()
		delete(a.subscriptions, roomID)
	}
	a.mu.Unlock()
	a.nc.Close()
}

func (a *TableAdapter) onPlayerMsg(roomID string, data []byte) {
	a.mu.Lock()
	limiter := a.limiters[roomID]
	a.mu.Unlock()
	if limiter != nil && !limiter.Allow() {
		natsLogger.Warn().
			Str(logging.RoomIDKey, roomID).
			Msg("Dropping player message; rate limit exceeded")
		return
	}

	var msg playerMsg
	err := jsoniter.Unmarshal(data, &msg)
	if err != nil {
		natsLogger.Error().Err(err).
			Str(logging.RoomIDKey, roomID).
			Msg("Unable to decode player message")
		return
	}

	session, ok := a.manager.GetSession(roomID)
	if !ok {
		natsLogger.Warn().
			Str(logging.RoomIDKey, roomID).
			Msg("Dropping player message for unknown room")
		return
	}

	switch msg.MessageType {
	case msgPlayerActed:
		actionType, err := game.ParseActionType(msg.Action)
		if err != nil {
			a.publishRejection(roomID, msg.PlayerID, err)
			return
		}
		err = session.PlayerActed(msg.PlayerID, game.Action{Type: actionType, Amount: msg.Amount})
		if err != nil {
			a.publishRejection(roomID, msg.PlayerID, err)
		}
	case msgReveal:
		err = session.RevealCards(msg.PlayerID)
		if err != nil {
			a.publishRejection(roomID, msg.PlayerID, err)
		}
	default:
		natsLogger.Warn().
			Str(logging.RoomIDKey, roomID).
			Str(logging.MsgTypeKey, msg.MessageType).
			Msg("Unknown player message type")
	}
}

type outboundMsg struct {
	MessageType string              `json:"messageType"`
	Table       *game.TableSnapshot `json:"table,omitempty"`
	LastAction  *game.LastAction    `json:"lastAction,omitempty"`
	PotInfo     []*game.Pot         `json:"potInfo,omitempty"`
	PlayerID    uint64              `json:"playerId,omitempty"`
	Error       string              `json:"error,omitempty"`
	ErrorKind   string              `json:"errorKind,omitempty"`
}

func (a *TableAdapter) publish(roomID string, msg outboundMsg) {
	data, err := jsoniter.Marshal(msg)
	if err != nil {
		natsLogger.Error().Err(err).
			Str(logging.RoomIDKey, roomID).
			Msg("Unable to encode outbound message")
		return
	}
	err = a.nc.Publish(updatesSubject(roomID), data)
	if err != nil {
		natsLogger.Error().Err(err).
			Str(logging.RoomIDKey, roomID).
			Str(logging.MsgTypeKey, msg.MessageType).
			Msg("Unable to publish outbound message")
	}
}

func (a *TableAdapter) publishRejection(roomID string, playerID uint64, actionErr error) {
	msg := outboundMsg{
		MessageType: "ACTION_REJECTED",
		PlayerID:    playerID,
		Error:       actionErr.Error(),
	}
	if kind := game.KindOf(actionErr); kind != 0 {
		msg.ErrorKind = kind.String()
	}
	a.publish(roomID, msg)
}

// HandStarted implements game.MessageReceiver.
func (a *TableAdapter) HandStarted(snapshot *game.TableSnapshot) {
	a.publish(snapshot.RoomID, outboundMsg{
		MessageType: "HAND_STARTED",
		Table:       snapshot,
	})
}

// StateUpdated implements game.MessageReceiver.
func (a *TableAdapter) StateUpdated(snapshot *game.TableSnapshot, lastAction *game.LastAction) {
	a.publish(snapshot.RoomID, outboundMsg{
		MessageType: "STATE_UPDATED",
		Table:       snapshot,
		LastAction:  lastAction,
	})
}

// HandEnded implements game.MessageReceiver.
func (a *TableAdapter) HandEnded(snapshot *game.TableSnapshot, pots []*game.Pot) {
	a.publish(snapshot.RoomID, outboundMsg{
		MessageType: "HAND_ENDED",
		Table:       snapshot,
		PotInfo:     pots,
	})
}
