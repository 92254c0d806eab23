package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Server struct {
	name    string
	version string
	log     *slog.Logger

	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewServer(name, version string, log *slog.Logger) *Server {
	return &Server{
		name:    name,
		version: version,
		log:     log.With("component", "mcp"),
		tools:   make(map[string]Tool),
	}
}

// RegisterTool adds a tool. Names must be unique.
func (s *Server) RegisterTool(t Tool) error {
	if t.Name == "" || t.Handler == nil {
		return errors.New("tool needs a name and a handler")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tools[t.Name]; ok {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	s.tools[t.Name] = t
	s.order = append(s.order, t.Name)
	return nil
}

// HandleRaw processes one JSON-RPC message or batch and returns the encoded
// reply. It returns nil when there is nothing to send back.
func (s *Server) HandleRaw(ctx context.Context, raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return s.handleBatch(ctx, trimmed)
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return encode(errorResponse(nil, JSONRPCParseError, "parse error"))
	}
	resp := s.Handle(ctx, &req)
	if resp == nil {
		return nil
	}
	return encode(resp)
}

func (s *Server) handleBatch(ctx context.Context, raw []byte) []byte {
	var batch []json.RawMessage
	if err := json.Unmarshal(raw, &batch); err != nil {
		return encode(errorResponse(nil, JSONRPCParseError, "parse error"))
	}
	if len(batch) == 0 {
		return encode(errorResponse(nil, JSONRPCInvalidRequest, "empty batch"))
	}

	out := make([]*Response, 0, len(batch))
	for _, item := range batch {
		var req Request
		if err := json.Unmarshal(item, &req); err != nil {
			out = append(out, errorResponse(nil, JSONRPCInvalidRequest, "invalid request"))
			continue
		}
		if resp := s.Handle(ctx, &req); resp != nil {
			out = append(out, resp)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return encode(out)
}

// Handle dispatches a decoded request. Notifications yield nil.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return errorResponse(req.ID, JSONRPCInvalidRequest, "invalid request")
	}

	if req.IsNotification() {
		s.log.DebugContext(ctx, "notification", "method", req.Method)
		return nil
	}

	var (
		result any
		rpcErr *Error
	)
	switch req.Method {
	case "initialize":
		result, rpcErr = s.initialize(req.Params)
	case "ping":
		result = struct{}{}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, rpcErr = s.callTool(ctx, req.Params)
	default:
		rpcErr = &Error{Code: JSONRPCMethodNotFound, Message: "method not found: " + req.Method}
	}

	if rpcErr != nil {
		return &Response{JSONRPC: jsonrpcVersion, ID: req.ID, Error: rpcErr}
	}
	return &Response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: result}
}

func (s *Server) initialize(params json.RawMessage) (any, *Error) {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, InvalidParams("invalid initialize params: %v", err)
		}
	}

	version := p.ProtocolVersion
	if !supportedProtocolVersions[version] {
		version = LatestProtocolVersion
	}

	return initializeResult{
		ProtocolVersion: version,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: serverInfo{Name: s.name, Version: s.version},
	}, nil
}

func (s *Server) listTools() listToolsResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		tools = append(tools, s.tools[name])
	}
	return listToolsResult{Tools: tools}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p callToolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, InvalidParams("invalid tools/call params: %v", err)
	}

	s.mu.RLock()
	tool, ok := s.tools[p.Name]
	s.mu.RUnlock()
	if !ok {
		return nil, InvalidParams("unknown tool: %s", p.Name)
	}

	start := time.Now()
	res, err := tool.Handler(ctx, p.Arguments)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			s.log.WarnContext(ctx, "tool call rejected", "tool", p.Name, "error", err)
			return nil, rpcErr
		}
		s.log.WarnContext(ctx, "tool call failed", "tool", p.Name, "error", err, "duration", time.Since(start))
		return ErrorResult(err), nil
	}

	s.log.InfoContext(ctx, "tool call completed", "tool", p.Name, "duration", time.Since(start))
	return res, nil
}

func errorResponse(id json.RawMessage, code int, msg string) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Error: &Error{Code: code, Message: msg}}
}

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(errorResponse(nil, JSONRPCInternalError, "encode response: "+err.Error()))
	}
	return b
}
