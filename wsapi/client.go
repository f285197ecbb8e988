package wsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"go.uber.org/zap"
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("wsapi: client closed")

const defaultCallTimeout = 5 * time.Second

// Client is a remote bridge. Methods are safe for concurrent use; each one
// blocks until the server answers or the call timeout expires. Client
// satisfies render.Source.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
	log     *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	seq     uint64
	pending map[uint64]chan Response
	err     error

	events chan string
	done   chan struct{}
}

// Dial connects to a server at url, e.g. "ws://localhost:8090/ws".
func Dial(ctx context.Context, url string, log *zap.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		conn:    conn,
		timeout: defaultCallTimeout,
		log:     log,
		pending: make(map[uint64]chan Response),
		events:  make(chan string, 16),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// SetTimeout changes the per-call timeout used by the typed methods.
func (c *Client) SetTimeout(d time.Duration) { c.timeout = d }

// Events delivers pushed event names. Events are dropped when the channel is
// full.
func (c *Client) Events() <-chan string { return c.events }

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close shuts the connection down and fails pending calls.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.err == nil {
		c.err = ErrClosed
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var resp Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.fail(err)
			return
		}
		if resp.Event != "" {
			select {
			case c.events <- resp.Event:
			default:
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.Seq]
		delete(c.pending, resp.Seq)
		c.mu.Unlock()
		if !ok {
			c.log.Debug("response without caller", zap.Uint64("seq", resp.Seq))
			continue
		}
		ch <- resp
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		err = ErrClosed
	}
	if c.err == nil {
		c.err = err
	}
	for seq, ch := range c.pending {
		close(ch)
		delete(c.pending, seq)
	}
}

// Call sends req and waits for its response. The request sequence number is
// assigned by the client.
func (c *Client) Call(ctx context.Context, req Request) (json.RawMessage, error) {
	ch := make(chan Response, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.seq++
	req.Seq = c.seq
	c.pending[req.Seq] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.Seq)
		return nil, fmt.Errorf("%s: %w", req.Op, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("%s: %w", req.Op, c.closedErr())
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("%s: %s", req.Op, resp.Error)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.forget(req.Seq)
		return nil, fmt.Errorf("%s: %w", req.Op, ctx.Err())
	}
}

func (c *Client) forget(seq uint64) {
	c.mu.Lock()
	delete(c.pending, seq)
	c.mu.Unlock()
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return ErrClosed
}

func (c *Client) call(req Request, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	raw, err := c.Call(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", req.Op, err)
	}
	return nil
}

func (c *Client) document(req Request) (string, error) {
	var raw json.RawMessage
	if err := c.call(req, &raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

// SpawnEntity returns the new id or bridge.SpawnFailed.
func (c *Client) SpawnEntity(typ string, x, y, z float32) (int, error) {
	id := bridge.SpawnFailed
	err := c.call(Request{Op: OpSpawnEntity, Type: typ, X: x, Y: y, Z: z}, &id)
	return id, err
}

// The remaining methods mirror the bridge operations of the same name.

func (c *Client) DestroyEntity(id int) error {
	return c.call(Request{Op: OpDestroyEntity, Id: id}, nil)
}

func (c *Client) GetEntity(id int) (string, error) {
	return c.document(Request{Op: OpGetEntity, Id: id})
}

func (c *Client) GetTransform(id int) (string, error) {
	return c.document(Request{Op: OpGetTransform, Id: id})
}

func (c *Client) GetEntityCount() (int, error) {
	var n int
	err := c.call(Request{Op: OpGetEntityCount}, &n)
	return n, err
}

func (c *Client) ListEntityIds() (string, error) {
	return c.document(Request{Op: OpListEntityIds})
}

func (c *Client) ClearScene() error {
	return c.call(Request{Op: OpClearScene}, nil)
}

func (c *Client) EntityMemoryCost() (int, error) {
	var kb int
	err := c.call(Request{Op: OpEntityMemoryCost}, &kb)
	return kb, err
}

func (c *Client) MemoryLimit() (int, error) {
	var kb int
	err := c.call(Request{Op: OpMemoryLimit}, &kb)
	return kb, err
}

func (c *Client) MemoryPercentage() (float64, error) {
	var pct float64
	err := c.call(Request{Op: OpMemoryPercentage}, &pct)
	return pct, err
}

func (c *Client) CanSpawn(typ string) (bool, error) {
	var ok bool
	err := c.call(Request{Op: OpCanSpawn, Type: typ}, &ok)
	return ok, err
}

func (c *Client) MemoryCost(typ string) (int, error) {
	var kb int
	err := c.call(Request{Op: OpMemoryCost, Type: typ}, &kb)
	return kb, err
}

func (c *Client) ManagedHeapEstimate() (int, error) {
	var kb int
	err := c.call(Request{Op: OpManagedHeapEstimate}, &kb)
	return kb, err
}

func (c *Client) SceneID() (string, error) {
	var id string
	err := c.call(Request{Op: OpSceneID}, &id)
	return id, err
}

func (c *Client) Snapshot() (bridge.Snapshot, error) {
	var doc SnapshotDoc
	if err := c.call(Request{Op: OpSnapshot}, &doc); err != nil {
		return bridge.Snapshot{}, err
	}
	return doc.Snapshot(), nil
}
