package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/connectfour/internal/service/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

// Message is what spectators receive.
type Message struct {
	Type string        `json:"type"`
	Game game.Snapshot `json:"game"`
}

type spectator struct {
	gameID string
	conn   *websocket.Conn
	send   chan []byte

	// writeMu serialises the write pump and the pinger; conn writes are not
	// safe for concurrent use.
	writeMu sync.Mutex
	once    sync.Once
}

func (s *spectator) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *spectator) close() {
	s.once.Do(func() {
		close(s.send)
		s.conn.Close()
	})
}

// ConnectionManager tracks spectators per game. It implements game.Notifier.
type ConnectionManager struct {
	mu         sync.RWMutex
	spectators map[string]map[*spectator]struct{}
	logger     *zap.Logger
}

func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		spectators: make(map[string]map[*spectator]struct{}),
		logger:     logger.Named("ws"),
	}
}

func (cm *ConnectionManager) add(s *spectator) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	set, ok := cm.spectators[s.gameID]
	if !ok {
		set = make(map[*spectator]struct{})
		cm.spectators[s.gameID] = set
	}
	set[s] = struct{}{}
}

func (cm *ConnectionManager) remove(s *spectator) {
	cm.mu.Lock()
	if set, ok := cm.spectators[s.gameID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(cm.spectators, s.gameID)
		}
	}
	cm.mu.Unlock()
	s.close()
}

// SpectatorCount returns how many feeds are open for gameID.
func (cm *ConnectionManager) SpectatorCount(gameID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.spectators[gameID])
}

// Notify queues snapshot for every spectator of gameID. Spectators that fall
// too far behind are disconnected.
func (cm *ConnectionManager) Notify(gameID string, snapshot game.Snapshot) {
	data, err := json.Marshal(Message{Type: "snapshot", Game: snapshot})
	if err != nil {
		cm.logger.Error("encode snapshot", zap.String("game_id", gameID), zap.Error(err))
		return
	}

	var slow []*spectator
	cm.mu.RLock()
	for s := range cm.spectators[gameID] {
		select {
		case s.send <- data:
		default:
			slow = append(slow, s)
		}
	}
	cm.mu.RUnlock()

	for _, s := range slow {
		cm.logger.Warn("dropping slow spectator", zap.String("game_id", gameID))
		cm.remove(s)
	}
}

// CloseGame disconnects every spectator of gameID.
func (cm *ConnectionManager) CloseGame(gameID string) {
	cm.mu.Lock()
	set := cm.spectators[gameID]
	delete(cm.spectators, gameID)
	cm.mu.Unlock()

	for s := range set {
		s.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game removed"))
		s.close()
	}
}
