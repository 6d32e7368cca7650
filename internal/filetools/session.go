package filetools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ragbase/ragbase-go/internal/logging"
)

// Request is one tool invocation received over the session.
type Request struct {
	// ID correlates the response with its request.
	ID int64 `json:"id"`

	// Tool is the tool name: create_file, list_files, or the list_tools
	// handshake.
	Tool string `json:"tool"`

	// Args carries the tool arguments.
	Args json.RawMessage `json:"args,omitempty"`
}

// Response is the result of one tool invocation.
type Response struct {
	ID     int64  `json:"id"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// toolNames is the answer to the list_tools handshake.
var toolNames = []string{"create_file", "list_files"}

// Server answers tool requests over a newline-delimited JSON session,
// typically stdin/stdout. One session per process lifetime; requests are
// handled sequentially in arrival order.
type Server struct{}

// NewServer constructs a Server.
func NewServer() *Server { return &Server{} }

// Serve reads requests from r and writes one response per request to w until
// r reaches EOF or ctx is cancelled. EOF is a clean shutdown, not an error.
// A malformed line produces an id-less error response and the session
// continues.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	log := logging.FromContext(ctx)
	out := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		resp := Response{}
		if err := json.Unmarshal(line, &req); err != nil {
			resp.Error = fmt.Sprintf("invalid request: %v", err)
		} else {
			resp = s.handle(&req)
		}

		log.Debug("tool request handled",
			slog.Int64("id", resp.ID),
			slog.String("tool", req.Tool),
			slog.Bool("ok", resp.Error == ""),
		)

		payload, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("filetools: marshal response: %w", err)
		}
		payload = append(payload, '\n')
		if _, err := out.Write(payload); err != nil {
			return fmt.Errorf("filetools: write response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("filetools: flush response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("filetools: read request: %w", err)
	}
	return nil
}

// handle dispatches one request to its tool.
func (s *Server) handle(req *Request) Response {
	resp := Response{ID: req.ID}

	switch req.Tool {
	case "list_tools":
		names, err := json.Marshal(toolNames)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Result = string(names)

	case "create_file":
		var input createFileInput
		if len(req.Args) > 0 {
			if err := json.Unmarshal(req.Args, &input); err != nil {
				resp.Error = fmt.Sprintf("create_file: invalid args: %v", err)
				return resp
			}
		}
		if input.FilePath == "" {
			resp.Error = "create_file: file_path is required"
			return resp
		}
		resp.Result = CreateFile(input.FilePath, input.Content)

	case "list_files":
		var input listFilesInput
		if len(req.Args) > 0 {
			if err := json.Unmarshal(req.Args, &input); err != nil {
				resp.Error = fmt.Sprintf("list_files: invalid args: %v", err)
				return resp
			}
		}
		resp.Result = ListFiles(input.Directory)

	default:
		resp.Error = fmt.Sprintf("unknown tool %q", req.Tool)
	}

	return resp
}

// Client drives a tool session from the caller side. It is safe for
// concurrent use; calls are serialised over the single session.
type Client struct {
	mu     sync.Mutex
	enc    *json.Encoder
	dec    *json.Decoder
	nextID int64
	closer io.Closer
}

// NewClient wraps an established session transport. closer may be nil when
// the caller owns the transport lifetime.
func NewClient(r io.Reader, w io.Writer, closer io.Closer) *Client {
	return &Client{
		enc:    json.NewEncoder(w),
		dec:    json.NewDecoder(r),
		closer: closer,
	}
}

// ListTools performs the session handshake and returns the server's tool names.
func (c *Client) ListTools(ctx context.Context) ([]string, error) {
	result, err := c.Call(ctx, "list_tools", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(result), &names); err != nil {
		return nil, fmt.Errorf("filetools: decode tool list: %w", err)
	}
	return names, nil
}

// Call invokes one tool and returns its result string.
func (c *Client) Call(ctx context.Context, tool string, args any) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.nextID++
	req := Request{ID: c.nextID, Tool: tool}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("filetools: encode args: %w", err)
		}
		req.Args = raw
	}

	if err := c.enc.Encode(&req); err != nil {
		return "", fmt.Errorf("filetools: send request: %w", err)
	}

	var resp Response
	if err := c.dec.Decode(&resp); err != nil {
		return "", fmt.Errorf("filetools: read response: %w", err)
	}
	if resp.ID != req.ID {
		return "", fmt.Errorf("filetools: response id %d for request %d", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("filetools: %s: %s", tool, resp.Error)
	}
	return resp.Result, nil
}

// Close tears the session down.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
