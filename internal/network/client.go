package network

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/amalg/go-snake/internal/game"
)

// frameBuffer is how many frames the client holds for a slow UI.
const frameBuffer = 32

// Client is a remote panel. It forwards input to the server and yields
// the frames the server sends back.
type Client struct {
	conn      net.Conn
	config    game.Config
	feed      *game.Feed
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
}

// NewClient connects to the server and takes control of its panel.
func NewClient(addr, name string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	c := &Client{
		conn: conn,
		done: make(chan struct{}),
	}
	c.feed = game.NewFeed(frameBuffer, c.requestRedraw)

	// Send join message
	if err := Encode(conn, MsgJoin, JoinMsg{Name: name}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send join: %w", err)
	}

	// Read welcome message
	env, err := Decode(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}

	if env.Type == MsgError {
		var errMsg ErrorMsg
		DecodePayload(env, &errMsg)
		conn.Close()
		return nil, fmt.Errorf("server error: %s", errMsg.Message)
	}

	if env.Type != MsgWelcome {
		conn.Close()
		return nil, fmt.Errorf("expected welcome, got %s", env.Type)
	}

	var welcome WelcomeMsg
	if err := DecodePayload(env, &welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode welcome: %w", err)
	}
	c.config = welcome.Config

	go c.receiveLoop()

	return c, nil
}

// Config returns the game configuration received from the server.
func (c *Client) Config() game.Config {
	return c.config
}

// Frames returns the frames sent by the server. The channel closes when
// the connection ends.
func (c *Client) Frames() <-chan game.Frame {
	return c.feed.C()
}

// Steer sends a direction to the server.
func (c *Client) Steer(d game.Direction) {
	if err := c.send(MsgSteer, SteerMsg{Direction: d}); err != nil {
		log.Printf("[CLIENT] Failed to send steer: %v", err)
	}
}

// Restart asks the server for a new game.
func (c *Client) Restart() {
	if err := c.send(MsgRestart, struct{}{}); err != nil {
		log.Printf("[CLIENT] Failed to send restart: %v", err)
	}
}

// Close disconnects from the server.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) send(msgType MsgType, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Encode(c.conn, msgType, payload)
}

// requestRedraw runs when the UI falls behind. The server answers with a
// reset frame, so nothing is queued locally.
func (c *Client) requestRedraw() (game.Frame, bool) {
	if err := c.send(MsgRedraw, struct{}{}); err != nil {
		log.Printf("[CLIENT] Failed to request redraw: %v", err)
	}
	return game.Frame{}, false
}

func (c *Client) receiveLoop() {
	defer c.feed.Close()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		env, err := Decode(c.conn)
		if err != nil {
			return
		}

		switch env.Type {
		case MsgFrame:
			var frameMsg FrameMsg
			if err := DecodePayload(env, &frameMsg); err != nil {
				log.Printf("[CLIENT] Bad frame: %v", err)
				continue
			}
			c.feed.Push(frameMsg.Frame)
		case MsgError:
			var errMsg ErrorMsg
			DecodePayload(env, &errMsg)
			log.Printf("[CLIENT] Server error: %s", errMsg.Message)
		}
	}
}
