// Package stream is a backend that broadcasts frames to websocket clients.
//
// Every rendered frame goes out as one binary message: a 16 byte header
// (width, height as little-endian uint32, frame id as little-endian uint64)
// followed by width*height RGBA quadruplets. Size changes are announced as
// JSON text messages.
package stream

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"softviewport/pixel"
	"softviewport/render"
)

const headerSize = 16

// ErrShortFrame is returned by DecodeFrame for truncated messages.
var ErrShortFrame = errors.New("stream: short frame")

// Frame is one decoded binary message.
type Frame struct {
	ID     uint64
	Width  int
	Height int
	Pix    []byte
}

// Topology is the text message sent on connect and after every resize.
type Topology struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Server implements render.Renderer, render.Resizer and render.Surface.
// It is safe for concurrent use.
type Server struct {
	mu           sync.Mutex
	width        int
	height       int
	frameID      uint64
	last         []byte
	clients      map[*websocket.Conn]bool
	startTime    time.Time
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	log          zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithWriteTimeout bounds how long a slow client may block a broadcast.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

func New(width, height int, opts ...Option) *Server {
	s := &Server{
		width:        width,
		height:       height,
		clients:      map[*websocket.Conn]bool{},
		startTime:    time.Now(),
		writeTimeout: 200 * time.Millisecond,
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler serves the websocket at /frames and a JSON status at /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", s.HandleFrames)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

func (s *Server) HandleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("upgrade failed")
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.send(conn, websocket.TextMessage, s.topology())
	if s.last != nil {
		s.send(conn, websocket.BinaryMessage, s.last)
	}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info().Str("remote", r.RemoteAddr).Int("clients", n).Msg("client connected")

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
			s.log.Info().Str("remote", r.RemoteAddr).Msg("client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"width":    s.width,
		"height":   s.height,
		"clients":  len(s.clients),
	}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Server) Renderer() (render.Renderer, error) { return s, nil }

func (s *Server) Render(buf []pixel.Pixel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(buf) != s.width*s.height {
		return fmt.Errorf("%w: got %d pixels, want %dx%d", render.ErrRendering, len(buf), s.width, s.height)
	}
	msg := s.frame()
	pixel.RGBA(msg[headerSize:], buf)
	s.broadcastFrame(msg)
	return nil
}

func (s *Server) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastFrame(s.frame())
	return nil
}

func (s *Server) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.last = nil
	b := s.topology()
	for c := range s.clients {
		s.send(c, websocket.TextMessage, b)
	}
}

// Close disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for c := range s.clients {
		errs = append(errs, c.Close())
		delete(s.clients, c)
	}
	return errors.Join(errs...)
}

// frame allocates the next frame message with its header filled in and a
// zeroed pixel payload.
func (s *Server) frame() []byte {
	s.frameID++
	msg := make([]byte, headerSize+s.width*s.height*4)
	binary.LittleEndian.PutUint32(msg[0:], uint32(s.width))
	binary.LittleEndian.PutUint32(msg[4:], uint32(s.height))
	binary.LittleEndian.PutUint64(msg[8:], s.frameID)
	return msg
}

func (s *Server) topology() []byte {
	b, _ := json.Marshal(Topology{Type: "topology", Width: s.width, Height: s.height})
	return b
}

// broadcastFrame must be called with s.mu held; it serializes all writes.
func (s *Server) broadcastFrame(msg []byte) {
	s.last = msg
	for c := range s.clients {
		s.send(c, websocket.BinaryMessage, msg)
	}
}

func (s *Server) send(c *websocket.Conn, kind int, msg []byte) {
	c.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := c.WriteMessage(kind, msg); err != nil {
		s.log.Debug().Err(err).Msg("write frame")
	}
}

// DecodeFrame parses a binary frame message.
func DecodeFrame(msg []byte) (Frame, error) {
	if len(msg) < headerSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(msg))
	}
	f := Frame{
		Width:  int(binary.LittleEndian.Uint32(msg[0:])),
		Height: int(binary.LittleEndian.Uint32(msg[4:])),
		ID:     binary.LittleEndian.Uint64(msg[8:]),
		Pix:    msg[headerSize:],
	}
	if len(f.Pix) != f.Width*f.Height*4 {
		return Frame{}, fmt.Errorf("%w: %d pixel bytes for %dx%d", ErrShortFrame, len(f.Pix), f.Width, f.Height)
	}
	return f, nil
}
