package network

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/amalg/go-snake/internal/game"
)

// ErrPanelInUse is reported to a second client while one is attached.
var ErrPanelInUse = errors.New("panel already in use")

// writeTimeout bounds how long a slow panel may stall the game loop.
const writeTimeout = time.Second

// Server exposes one engine to a single remote panel. The panel receives
// every frame and sends directions back.
type Server struct {
	engine   *game.Engine
	addr     string
	listener net.Listener
	panel    *clientConn
	mu       sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
}

// clientConn represents the connected panel.
type clientConn struct {
	conn net.Conn
	name string
	mu   sync.Mutex
}

// NewServer creates a server for the engine and subscribes to its frames.
// The caller runs the engine.
func NewServer(addr string, engine *game.Engine) *Server {
	s := &Server{
		engine: engine,
		addr:   addr,
		done:   make(chan struct{}),
	}

	engine.OnFrame(s.broadcastFrame)

	return s
}

// Start begins accepting connections.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.Printf("[SERVER] Listening on %s", s.listener.Addr())
	printLocalIPs(s.listener.Addr().String())

	go s.acceptLoop()

	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Attached reports whether a panel is connected.
func (s *Server) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel != nil
}

// Stop shuts down the server.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Lock()
		if s.panel != nil {
			s.panel.conn.Close()
		}
		s.mu.Unlock()
	})
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("[SERVER] Accept error: %v", err)
				continue
			}
		}
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	defer conn.Close()

	env, err := Decode(conn)
	if err != nil {
		log.Printf("[SERVER] Failed to read join message: %v", err)
		return
	}

	if env.Type != MsgJoin {
		log.Printf("[SERVER] Expected join message, got %s", env.Type)
		Encode(conn, MsgError, ErrorMsg{Message: "expected join message"})
		return
	}

	var joinMsg JoinMsg
	if err := DecodePayload(env, &joinMsg); err != nil {
		log.Printf("[SERVER] Failed to decode join message: %v", err)
		return
	}

	cc := &clientConn{conn: conn, name: joinMsg.Name}
	if err := s.attach(cc); err != nil {
		log.Printf("[SERVER] Rejected %s: %v", joinMsg.Name, err)
		Encode(conn, MsgError, ErrorMsg{Message: err.Error()})
		return
	}
	defer s.detach(cc)

	log.Printf("[SERVER] Panel attached: %s (%s)", joinMsg.Name, conn.RemoteAddr())

	for {
		select {
		case <-s.done:
			return
		default:
		}

		env, err := Decode(conn)
		if err != nil {
			log.Printf("[SERVER] Panel %s disconnected: %v", cc.name, err)
			return
		}

		switch env.Type {
		case MsgSteer:
			var steer SteerMsg
			if err := DecodePayload(env, &steer); err != nil {
				log.Printf("[SERVER] Invalid steer from %s: %v", cc.name, err)
				s.sendError(cc, err.Error())
				continue
			}
			s.engine.Steer(steer.Direction)
		case MsgRestart:
			s.engine.Restart()
		case MsgRedraw:
			s.sendRedraw(cc)
		default:
			log.Printf("[SERVER] Unknown message type from %s: %s", cc.name, env.Type)
		}
	}
}

// attach registers cc as the panel and sends the welcome and a full redraw.
// cc stays locked until the redraw is out so no tick frame overtakes it.
func (s *Server) attach(cc *clientConn) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	s.mu.Lock()
	if s.panel != nil {
		s.mu.Unlock()
		return ErrPanelInUse
	}
	s.panel = cc
	s.mu.Unlock()

	if err := s.writeLocked(cc, MsgWelcome, WelcomeMsg{Config: s.engine.Config}); err != nil {
		s.detach(cc)
		return fmt.Errorf("send welcome: %w", err)
	}
	if err := s.writeLocked(cc, MsgFrame, FrameMsg{Frame: s.engine.Redraw()}); err != nil {
		s.detach(cc)
		return fmt.Errorf("send redraw: %w", err)
	}
	return nil
}

func (s *Server) detach(cc *clientConn) {
	s.mu.Lock()
	if s.panel == cc {
		s.panel = nil
		log.Printf("[SERVER] Panel detached: %s", cc.name)
	}
	s.mu.Unlock()
}

func (s *Server) broadcastFrame(f game.Frame) {
	s.mu.Lock()
	cc := s.panel
	s.mu.Unlock()

	if cc != nil {
		s.sendFrame(cc, f)
	}
}

func (s *Server) sendFrame(cc *clientConn, f game.Frame) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if err := s.writeLocked(cc, MsgFrame, FrameMsg{Frame: f}); err != nil {
		log.Printf("[SERVER] Failed to send frame to %s: %v", cc.name, err)
		cc.conn.Close()
	}
}

// sendRedraw takes the snapshot while holding cc.mu. A tick frame sent
// after it at worst repeats pixels the redraw already shows.
func (s *Server) sendRedraw(cc *clientConn) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if err := s.writeLocked(cc, MsgFrame, FrameMsg{Frame: s.engine.Redraw()}); err != nil {
		log.Printf("[SERVER] Failed to send redraw to %s: %v", cc.name, err)
		cc.conn.Close()
	}
}

func (s *Server) sendError(cc *clientConn, message string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	s.writeLocked(cc, MsgError, ErrorMsg{Message: message})
}

// writeLocked MUST be called while cc.mu is held.
func (s *Server) writeLocked(cc *clientConn, msgType MsgType, payload interface{}) error {
	cc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return Encode(cc.conn, msgType, payload)
}

// printLocalIPs logs all local network interfaces for panels to connect to.
func printLocalIPs(addr string) {
	_, port, _ := net.SplitHostPort(addr)

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return
	}

	log.Println("[SERVER] Panels can connect using:")
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				log.Printf("[SERVER]   %s:%s", ipnet.IP.String(), port)
			}
		}
	}
}
