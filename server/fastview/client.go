package fastview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	pingResolution = time.Millisecond * 500
	// The number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// Client publishes element updates to a single web page via websocket and relays
// the messages the page sends back (input values). Element updates are not
// necessarily idempotent here (scripts, structural ops), so none are dropped:
// throttling belongs upstream, where updates can be batched.
type Client struct {
	ws       *websock
	rootCtx  context.Context
	messages chan ClientMessage
}

// NewClient upgrades the request to a websocket. On failure an http error has
// already been written.
func NewClient(
	w http.ResponseWriter,
	r *http.Request,
) (*Client, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		return nil, err
	}
	ws.SetReadLimit(maxMessageSize)

	return &Client{
		ws:       NewWebSocket(ws),
		rootCtx:  r.Context(),
		messages: make(chan ClientMessage, 16),
	}, nil
}

// Messages returns the chan of messages received from the page. It is closed when
// the client stops reading.
func (cli *Client) Messages() <-chan ClientMessage {
	return cli.messages
}

// Sync publishes updates to the client until the client disconnects, the request
// context is cancelled, or an unexpected socket error occurs. Sync returns nil upon
// client disconnect. The socket is closed when Sync returns.
func (cli *Client) Sync(updates <-chan []EleUpdate) error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)
	// A nil return does not cancel groupCtx; a page that left or a closed updates chan must.
	ctx, cancel := context.WithCancel(groupCtx)
	defer cancel()

	group.Go(func() error {
		defer cancel()
		defer close(cli.messages)
		return quiet(ctx, cli.readMessages(ctx))
	})
	group.Go(func() error {
		return quiet(ctx, cli.pingPong(ctx))
	})
	group.Go(func() error {
		defer cancel()
		return quiet(ctx, cli.publish(ctx, updates))
	})
	// Reads block in the socket regardless of ctx; closing the socket releases them.
	group.Go(func() error {
		<-ctx.Done()
		cli.ws.Close()
		return nil
	})

	return group.Wait()
}

// quiet drops errors caused by teardown that another routine already started.
func quiet(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// Runs the ping-pong for the client liveness check.
// NOTE: This function requires that readMessages is running to ensure the pong handler is called.
func (cli *Client) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.Conn().SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}

			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *Client) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (err error) {
			if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					err = fmt.Errorf("ping failed: %T %v", err, err)
				}
			}
			return
		})
}

// readMessages relays messages from the page. Errors returned by websocket Read methods
// are permanent, hence any error must trigger full teardown; a normal closure is not an error.
func (cli *Client) readMessages(ctx context.Context) error {
	for {
		var data []byte
		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, data, readErr = ws.ReadMessage()
				return
			})
		if err != nil {
			if isClosure(err) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.EleId == "" {
			// Malformed page messages are ignored; the page is not trusted.
			continue
		}

		select {
		case cli.messages <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

func (cli *Client) publish(ctx context.Context, updates <-chan []EleUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-updates:
			// Graceful input channel closure
			if !ok {
				return nil
			}
			if len(batch) == 0 {
				break
			}

			err := cli.ws.Write(
				ctx,
				func(ws *websocket.Conn) (writeErr error) {
					if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
						writeErr = fmt.Errorf("failed to set deadline: %T %w", writeErr, writeErr)
						return
					}

					if writeErr = ws.WriteJSON(batch); writeErr != nil {
						if isError(writeErr) {
							writeErr = fmt.Errorf("publish failed: %T %v", writeErr, writeErr)
						}
					}
					return
				})
			if err != nil {
				return err
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived)
}

// ErrSockCongestion indicates there are too many waiters on the socket for a given op.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	writeDeadline = time.Second
)

// websock serializes writes to the websocket, whose requirements are that there may be
// only one concurrent reader and one concurrent writer at a time. Only readMessages reads.
type websock struct {
	// These are merely mutexes, but channel semantics are cleaner.
	writeSem chan struct{}
	closed   chan struct{}
	ws       *websocket.Conn
}

func NewWebSocket(ws *websocket.Conn) *websock {
	return &websock{
		writeSem: make(chan struct{}, 1),
		closed:   make(chan struct{}),
		ws:       ws,
	}
}

// Returns the underlying websocket.
// This should only be used non-concurrently for setup, e.g. adding handlers.
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Close sends a close frame and closes the websocket. Subsequent calls do nothing.
func (sock *websock) Close() {
	select {
	case <-sock.closed:
		return
	default:
		close(sock.closed)
	}

	_ = sock.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	sock.ws.Close()
}

// Read runs a read operation on the internal web socket.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	if ctx.Err() != nil {
		return nil
	}
	return readFn(sock.ws)
}

// Write serializes write operations to the websocket.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
