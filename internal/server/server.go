package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ironsheep/line-filter-mcp/internal/imaging"
	"github.com/ironsheep/line-filter-mcp/internal/linefilter"
)

// Server handles MCP protocol communication
type Server struct {
	cache   *imaging.ImageCache
	weights linefilter.WeightSource
	log     zerolog.Logger

	mu      sync.Mutex
	filters map[linefilter.Config]*linefilter.Filter
}

// Option configures a Server.
type Option func(*Server)

// WithWeights sets the perimeter weight source. The default serves the
// weight files embedded in the binary.
func WithWeights(src linefilter.WeightSource) Option {
	return func(s *Server) { s.weights = src }
}

// WithLogger sets the logger used for request failures and filter debug
// output. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:   imaging.NewImageCache(),
		weights: linefilter.EmbeddedSource(),
		log:     zerolog.Nop(),
		filters: make(map[linefilter.Config]*linefilter.Filter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses to w until r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "line-filter-mcp",
				"version": "0.1.0",
			},
		},
	}
}

// maxCachedFilters bounds the filter cache; clients choose the config freely.
const maxCachedFilters = 32

// filterFor returns the filter for cfg, building it on first use.
//
// Filters are immutable and safe for concurrent use, so one instance per
// configuration serves every request. The cache is emptied once it holds
// maxCachedFilters entries.
func (s *Server) filterFor(cfg linefilter.Config) (*linefilter.Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.filters[cfg]; ok {
		return f, nil
	}

	f, err := linefilter.LoadFilter(cfg, s.weights,
		linefilter.WithLogger(s.log.With().Str("component", "linefilter").Logger()))
	if err != nil {
		return nil, err
	}
	if len(s.filters) >= maxCachedFilters {
		s.filters = make(map[linefilter.Config]*linefilter.Filter)
	}
	s.filters[cfg] = f
	return f, nil
}
