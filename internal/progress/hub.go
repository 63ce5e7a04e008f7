package progress

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/store"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 16
	broadcastQueue = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	searchID string
}

// Hub fans search events out to websocket subscribers. Clients subscribe to
// one search id; an empty id subscribes to everything.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, broadcastQueue),
		logger:     logger.With().Str("component", "progress").Logger(),
	}
}

// Run processes registrations and broadcasts until the channels close.
// Callers start it once in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.searchID] == nil {
				h.clients[c.searchID] = make(map[*client]bool)
			}
			h.clients[c.searchID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[c.searchID]; ok {
				if set[c] {
					delete(set, c)
					close(c.send)
				}
				if len(set) == 0 {
					delete(h.clients, c.searchID)
				}
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode event")
				continue
			}
			h.mu.RLock()
			for _, id := range []string{ev.SearchID, ""} {
				for c := range h.clients[id] {
					select {
					case c.send <- data:
					default:
						// Slow consumer, drop the event.
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription for the given
// search id.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, searchID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, clientBuffer), searchID: searchID}
	h.register <- c

	go c.writePump()
	go c.readPump()
	return nil
}

func (c *client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) emit(ev Event) {
	ev.Timestamp = time.Now().UnixMilli()
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn().Str("search_id", ev.SearchID).Msg("progress queue full, dropping event")
	}
}

func (h *Hub) SearchProgress(searchID string, status store.Status, progress int) {
	h.emit(Event{
		Type:     EventSearchProgress,
		SearchID: searchID,
		Progress: &ProgressPayload{Status: status, Progress: progress},
	})
}

func (h *Hub) SearchFiltered(searchID string, filters *models.SearchFilters, originalCount, filteredCount int) {
	h.emit(Event{
		Type:     EventSearchFiltered,
		SearchID: searchID,
		Filtered: &FilteredPayload{Filters: filters, OriginalCount: originalCount, FilteredCount: filteredCount},
	})
}

func (h *Hub) SearchSorted(searchID, sortBy, sortOrder string, results []models.FlightResult) {
	h.emit(Event{
		Type:     EventSearchSorted,
		SearchID: searchID,
		Sorted:   &SortedPayload{SortBy: sortBy, SortOrder: sortOrder, Results: results},
	})
}
