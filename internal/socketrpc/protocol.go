package socketrpc

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes a Remote (a running explorer) over a Unix
// domain socket. Each method maps 1:1 to the Remote interface.
//
//   Method        Params                    Result
//   ──────────    ──────────────────────    ──────────────
//   View          (none)                    model.ViewInfo
//   Zoom          {In: bool}                model.ViewInfo
//   Pan           {Col: int, Row: int}      model.ViewInfo
//   Hover         {Col: int, Row: int}      viewer.Hover
//   SetQuality    {Quality: int}            model.ViewInfo
//   SetPalette    {Name: string}            model.ViewInfo
//   Jump          {Preset: string}          model.ViewInfo
//   Reset         (none)                    model.ViewInfo
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error (unknown preset, palette, ...)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/mandelview/mandelview.sock, falling back to
// ~/.local/state/mandelview/mandelview.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "mandelview", "mandelview.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/mandelview.sock"
	}
	return filepath.Join(home, ".local", "state", "mandelview", "mandelview.sock")
}
