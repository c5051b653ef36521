// Package server implements the line-oriented TCP protocol that lets
// remote clients drive the engine: one goroutine per connection, reading
// newline-terminated commands and writing newline-terminated replies.
//
// The accept loop and per-connection goroutine shape follow a standard
// layout: a listener accepted in a loop, a WaitGroup tracking in-flight
// connections, and closing the listener to signal shutdown and unblock Accept.
// The protocol itself is a handful of plain-text commands with no framing
// beyond newlines, so the per-connection handler is a bufio.Scanner loop
// rather than a length-prefixed packet reader.
package server

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/iamNilotpal/kvstore/internal/engine"
	kverrors "github.com/iamNilotpal/kvstore/pkg/errors"
)

// Server accepts TCP connections and dispatches line-protocol commands
// against an Engine.
type Server struct {
	engine   *engine.Engine
	log      *zap.SugaredLogger
	addr     string
	listener net.Listener
	wg       sync.WaitGroup
}

// Config holds the parameters needed to construct a Server.
type Config struct {
	Engine *engine.Engine
	Logger *zap.SugaredLogger
	Addr   string
}

// New constructs a Server bound to the given engine. It does not start
// listening; call Serve for that.
func New(config *Config) *Server {
	return &Server{engine: config.Engine, log: config.Logger, addr: config.Addr}
}

// Serve binds the listen address and accepts connections until the
// listener is closed, typically via Shutdown from another goroutine. It
// returns nil on a clean shutdown and a non-nil error if the address cannot
// be bound; any other Accept error is logged and the loop keeps accepting.
func (s *Server) Serve() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.log.Infow("server listening", "addr", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if isClosedListenerError(err) {
				s.log.Infow("server stopping")
				s.wg.Wait()
				return nil
			}
			s.log.Errorw("accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown closes the listener, causing Serve's Accept loop to return
// after in-flight connections finish.
func (s *Server) Shutdown() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func isClosedListenerError(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	remoteAddr := conn.RemoteAddr().String()
	s.log.Debugw("client connected", "addr", remoteAddr)

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Text()
		reply := s.dispatch(line)

		if _, err := writer.WriteString(reply); err != nil {
			s.log.Debugw("write error", "addr", remoteAddr, "error", err)
			return
		}
		if err := writer.Flush(); err != nil {
			s.log.Debugw("flush error", "addr", remoteAddr, "error", err)
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.Debugw("read error", "addr", remoteAddr, "error", err)
	}
	s.log.Debugw("client disconnected", "addr", remoteAddr)
}

// dispatch parses one line and returns the full reply text, including its
// trailing newline. A protocol-level parse error or an engine-level
// failure both produce an "ERR ..." reply; neither closes the connection.
func (s *Server) dispatch(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "ERR unknown command\n"
	}
	if len(fields) > 4 {
		fields = fields[:4]
	}

	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "GET":
		return s.handleGet(args)
	case "SET":
		return s.handleSet(args)
	case "DEL":
		return s.handleDel(args)
	case "PING":
		return "PONG\n"
	case "STATS":
		return s.handleStats(args)
	default:
		return "ERR unknown command\n"
	}
}

func (s *Server) handleGet(args []string) string {
	if len(args) != 1 {
		return "ERR wrong number of arguments for GET\n"
	}

	value, ok, err := s.engine.Get(args[0])
	if err != nil {
		return errReply(err)
	}
	if !ok {
		return "nil\n"
	}
	return value + "\n"
}

func (s *Server) handleSet(args []string) string {
	if len(args) != 2 && len(args) != 3 {
		return "ERR wrong number of arguments for SET\n"
	}

	var ttlMillis int64
	if len(args) == 3 {
		parsed, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return "ERR invalid TTL value\n"
		}
		ttlMillis = parsed
	}

	value := args[1]
	if err := s.engine.Set(args[0], &value, ttlMillis); err != nil {
		return errReply(err)
	}
	return "OK\n"
}

func (s *Server) handleDel(args []string) string {
	if len(args) != 1 {
		return "ERR wrong number of arguments for DEL\n"
	}

	deleted, err := s.engine.Del(args[0])
	if err != nil {
		return errReply(err)
	}
	if deleted {
		return "OK\n"
	}
	return "nil\n"
}

func (s *Server) handleStats(args []string) string {
	if len(args) != 0 {
		return "ERR wrong number of arguments for STATS\n"
	}

	stats := s.engine.Stats()
	return fmt.Sprintf(
		"writeOffset=%d capacity=%d keys=%d\n",
		stats.WriteOffset, stats.FileSize, stats.LiveKeys,
	)
}

func errReply(err error) string {
	return "ERR " + describeErr(err) + "\n"
}

// describeErr reduces an engine error to the short text the line protocol
// puts after "ERR ". It does not leak internal detail fields (paths,
// byte counts) into the reply; the server does not log them either.
func describeErr(err error) string {
	switch kverrors.GetErrorCode(err) {
	case kverrors.ErrorCodeInvalidInput:
		return "invalid argument"
	case kverrors.ErrorCodeNullValue:
		return "value must not be nil"
	case kverrors.ErrorCodeCapacityExhausted:
		return "capacity exhausted"
	default:
		return "internal error"
	}
}
