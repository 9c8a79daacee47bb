package socketrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

var _ Remote = (*Client)(nil)

// Client drives a running explorer over its control socket.
type Client struct {
	conn    net.Conn
	mu      sync.Mutex
	nextID  int
	timeout time.Duration
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	return &Client{
		conn:    conn,
		timeout: 10 * time.Second,
		scanner: scanner,
		encoder: json.NewEncoder(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call performs a JSON-RPC call and unmarshals the result into dest.
func (c *Client) call(method string, params any, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	c.conn.SetDeadline(time.Now().Add(c.timeout))
	defer c.conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(req); err != nil {
		return fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("socketrpc: read: %w", err)
		}
		return fmt.Errorf("socketrpc: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}
	if resp.ID != id {
		return fmt.Errorf("socketrpc: response id %d, want %d", resp.ID, id)
	}
	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

func (c *Client) viewCall(method string, params any) (model.ViewInfo, error) {
	var info model.ViewInfo
	err := c.call(method, params, &info)
	return info, err
}

func (c *Client) View() (model.ViewInfo, error) {
	return c.viewCall("View", map[string]any{})
}

func (c *Client) Zoom(in bool) (model.ViewInfo, error) {
	return c.viewCall("Zoom", map[string]any{"In": in})
}

func (c *Client) Pan(col, row int) (model.ViewInfo, error) {
	return c.viewCall("Pan", map[string]any{"Col": col, "Row": row})
}

func (c *Client) Hover(col, row int) (viewer.Hover, error) {
	var h viewer.Hover
	err := c.call("Hover", map[string]any{"Col": col, "Row": row}, &h)
	return h, err
}

func (c *Client) SetQuality(q int) (model.ViewInfo, error) {
	return c.viewCall("SetQuality", map[string]any{"Quality": q})
}

func (c *Client) SetPalette(name string) (model.ViewInfo, error) {
	return c.viewCall("SetPalette", map[string]any{"Name": name})
}

func (c *Client) Jump(preset string) (model.ViewInfo, error) {
	return c.viewCall("Jump", map[string]any{"Preset": preset})
}

func (c *Client) Reset() (model.ViewInfo, error) {
	return c.viewCall("Reset", map[string]any{})
}
