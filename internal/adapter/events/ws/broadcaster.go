package ws

import (
	"log"
	"net/http"
	"sync"

	"gridwar/internal/domain/game"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Broadcaster fans committed domain events out to connected observers over
// its own listener. Publish never blocks: a client that cannot keep up is
// dropped rather than allowed to stall the game loop.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []game.DomainEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*websocket.Conn]chan []game.DomainEvent)}
}

func (b *Broadcaster) Publish(events []game.DomainEvent) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, ch := range b.clients {
		select {
		case ch <- events:
		default:
			// Slow consumer; disconnect it.
			delete(b.clients, conn)
			close(ch)
			_ = conn.Close()
		}
	}
}

// ListenAndServe serves the /events websocket endpoint until the listener
// fails. Run it on its own goroutine.
func (b *Broadcaster) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", b.handleEvents)
	return http.ListenAndServe(addr, mux)
}

func (b *Broadcaster) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("event feed upgrade: %v", err)
		return
	}

	ch := make(chan []game.DomainEvent, 16)
	b.mu.Lock()
	b.clients[conn] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		if _, ok := b.clients[conn]; ok {
			delete(b.clients, conn)
			close(ch)
		}
		b.mu.Unlock()
		_ = conn.Close()
	}()

	for events := range ch {
		if err := conn.WriteJSON(events); err != nil {
			return
		}
	}
}
