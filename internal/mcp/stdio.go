package mcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	maxInflight  = 8
	scanBufBytes = 64 * 1024
)

// ServeStdio reads one JSON-RPC message per line from in and writes replies
// to out, one per line. Requests run concurrently; replies may be reordered.
// It returns when in reaches EOF and every in-flight request has finished.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInflight)

	var mu sync.Mutex
	write := func(b []byte) error {
		mu.Lock()
		defer mu.Unlock()
		if _, err := out.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("write stdio reply: %w", err)
		}
		return nil
	}

	s.log.InfoContext(ctx, "mcp stdio transport started", "server", s.name)

	r := bufio.NewReaderSize(in, scanBufBytes)
	var buf []byte
	var readErr error
	for {
		line, tooLarge, err := readMessage(r, buf[:0])
		buf = line

		switch msg := bytes.TrimSpace(line); {
		case tooLarge:
			s.log.WarnContext(ctx, "mcp stdio message too large, dropped", "limit", maxMessageBytes)
			reply := encode(errorResponse(nil, JSONRPCInvalidRequest, "message too large"))
			g.Go(func() error { return write(reply) })
		case len(msg) > 0:
			msg = append([]byte(nil), msg...)
			g.Go(func() error {
				reply := s.handleSafely(gctx, msg)
				if reply == nil {
					return nil
				}
				return write(reply)
			})
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if readErr != nil {
		return fmt.Errorf("read stdio: %w", readErr)
	}

	s.log.InfoContext(ctx, "mcp stdio transport stopped")
	return nil
}

func (s *Server) handleSafely(ctx context.Context, msg []byte) (reply []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.ErrorContext(ctx, "mcp handler panic", "panic", rec)
			reply = encode(errorResponse(nil, JSONRPCInternalError, "internal error"))
		}
	}()
	return s.HandleRaw(ctx, msg)
}

// readMessage reads one line into buf without its newline. A line longer than
// maxMessageBytes is consumed to its end and reported as tooLarge with no data.
func readMessage(r *bufio.Reader, buf []byte) (line []byte, tooLarge bool, err error) {
	for {
		chunk, rerr := r.ReadSlice('\n')
		chunk = bytes.TrimSuffix(chunk, []byte{'\n'})
		if !tooLarge {
			if len(buf)+len(chunk) > maxMessageBytes {
				tooLarge = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(rerr, bufio.ErrBufferFull) {
			continue
		}
		return buf, tooLarge, rerr
	}
}
