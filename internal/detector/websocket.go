// Package detector talks to the face landmark service. The service holds the mesh
// model; this process only ships frames to it and reads keypoints back.
//
// Wire protocol, one websocket per session:
//
//	client -> {"type":"config","max_faces":N}        (text, once after dialing)
//	server -> {"type":"ready"} | {"type":"error",...} (text, once the model is loaded)
//	client -> <encoded frame bytes>                    (binary, per detection)
//	server -> {"faces":[{"keypoints":[{"x":..,"y":..,"z":..},...]}]} | {"error":"..."}
package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/kozaktomas/face-filter/internal/constants"
	"github.com/kozaktomas/face-filter/internal/detection"
	"github.com/kozaktomas/face-filter/internal/logging"
	"github.com/kozaktomas/face-filter/internal/overlay"
	"github.com/kozaktomas/face-filter/internal/video"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrClosed is returned by EstimateFaces after Close.
var ErrClosed = errors.New("detector closed")

// Options tunes the websocket client.
type Options struct {
	MaxFaces         int
	HandshakeTimeout time.Duration
	LoadTimeout      time.Duration // how long to wait for the model to report ready
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxFaces <= 0 {
		o.MaxFaces = constants.DefaultMaxFaces
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = 60 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	return o
}

type configMessage struct {
	Type     string `json:"type"`
	MaxFaces int    `json:"max_faces"`
}

type statusMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type facesMessage struct {
	Faces []overlay.FaceKeypoints `json:"faces"`
	Error string                  `json:"error,omitempty"`
}

// Client is a landmark detector backed by one websocket connection.
type Client struct {
	url  string
	opts Options

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	stop   chan struct{}
}

// Loader returns a detection.Loader that dials url and waits for the model.
func Loader(url string, opts Options) detection.Loader {
	return func(ctx context.Context) (detection.Detector, error) {
		c, err := Dial(ctx, url, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Dial connects to the landmark service and blocks until it reports the model loaded.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	if url == "" {
		return nil, errors.New("detector url not configured")
	}
	c := &Client{url: url, opts: opts.withDefaults(), stop: make(chan struct{})}
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	go c.keepAlive()
	return c, nil
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	logging.Info(logging.Fields{"url": c.url}, "connecting to landmark service")

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = c.opts.HandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.opts.WriteTimeout))
		if err != nil {
			logging.Warn(logging.Fields{"error": err.Error()}, "error sending pong")
		}
		return nil
	})

	if err := c.handshake(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Client) handshake(ctx context.Context, conn *websocket.Conn) error {
	payload, err := json.Marshal(configMessage{Type: "config", MaxFaces: c.opts.MaxFaces})
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("sending config: %w", err)
	}

	stopWatch := watchContext(ctx, conn)
	defer stopWatch()
	conn.SetReadDeadline(time.Now().Add(c.opts.LoadTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("waiting for model: %w", ctx.Err())
		}
		return fmt.Errorf("waiting for model: %w", err)
	}
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var status statusMessage
	if err := json.Unmarshal(message, &status); err != nil {
		return fmt.Errorf("error unmarshaling status: %w", err)
	}
	switch status.Type {
	case "ready":
		return nil
	case "error":
		return fmt.Errorf("model failed to load: %s", status.Message)
	default:
		return fmt.Errorf("unexpected status message %q", status.Type)
	}
}

// watchContext unblocks pending reads on conn once ctx is done.
func watchContext(ctx context.Context, conn *websocket.Conn) func() bool {
	return context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
}

func (c *Client) keepAlive() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		conn := c.conn
		if conn == nil {
			c.mu.Unlock()
			continue
		}
		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.opts.WriteTimeout))
		if err != nil {
			logging.Warn(logging.Fields{"error": err.Error()}, "ping failed, marking connection as dead")
			c.conn = nil
			conn.Close()
		}
		c.mu.Unlock()
	}
}

// EstimateFaces sends one frame and waits for its keypoints. A broken connection is
// dropped and redialed on the next call.
func (c *Client) EstimateFaces(ctx context.Context, frame video.Frame) ([]overlay.FaceKeypoints, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if len(frame.Data) == 0 {
		return nil, video.ErrEmptyFrame
	}

	if c.conn == nil {
		conn, err := c.connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot reconnect to landmark service: %w", err)
		}
		c.conn = conn
	}
	conn := c.conn

	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame.Data); err != nil {
		c.drop()
		return nil, fmt.Errorf("error sending frame: %w", err)
	}

	stopWatch := watchContext(ctx, conn)
	conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	_, message, err := conn.ReadMessage()
	stopWatch()
	if err != nil {
		c.drop()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("error reading faces: %w", err)
	}
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var result facesMessage
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling faces: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("landmark service: %s", result.Error)
	}

	logging.Debug(logging.Fields{"frame": frame.Seq, "faces": len(result.Faces)}, "received faces")
	return result.Faces, nil
}

// drop forgets the current connection. Caller holds c.mu.
func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Connected reports whether the client currently holds a live connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close shuts the connection down. Further calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.stop)
	if c.conn == nil {
		return nil
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.opts.WriteTimeout))
	err := c.conn.Close()
	c.conn = nil
	return err
}
