// Package server exposes the admin store over a line-oriented TCP protocol.
// Each request is one line; each reply is "OK <json>", "ERR <message>" or
// "PONG".
package server

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
	"github.com/celerix-dev/celerix-admin/pkg/sdk"
)

// MaxConnections caps concurrently served connections.
const MaxConnections = 100

type Router struct {
	store sdk.AdminStore
	cert  *tls.Certificate
	log   zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	stopped  bool
	wg       sync.WaitGroup
}

func NewRouter(s sdk.AdminStore, log zerolog.Logger) *Router {
	return &Router{
		store: s,
		log:   log.With().Str("component", "router").Logger(),
		conns: make(map[net.Conn]struct{}),
	}
}

// SetCertificate sets the TLS certificate for the router
func (r *Router) SetCertificate(cert tls.Certificate) {
	r.cert = &cert
}

// Addr returns the bound address, or nil before Listen.
func (r *Router) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Listen starts the TCP server and blocks until Stop.
func (r *Router) Listen(port string) error {
	var listener net.Listener
	var err error

	if r.cert != nil {
		config := &tls.Config{Certificates: []tls.Certificate{*r.cert}}
		listener, err = tls.Listen("tcp", ":"+port, config)
	} else {
		listener, err = net.Listen("tcp", ":"+port)
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		listener.Close()
		return nil
	}
	r.listener = listener
	r.mu.Unlock()

	semaphore := make(chan struct{}, MaxConnections)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if r.isStopped() {
				return nil
			}
			r.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		semaphore <- struct{}{}
		if !r.track(conn) {
			<-semaphore
			conn.Close()
			return nil
		}

		// Bound the lifetime of idle or slow clients.
		conn.SetDeadline(time.Now().Add(5 * time.Minute))

		go func(c net.Conn) {
			defer func() {
				r.untrack(c)
				c.Close()
				<-semaphore
				r.wg.Done()
			}()
			r.HandleConnection(c)
		}(conn)
	}
}

// Stop closes the listener and every open connection, then waits for the
// handlers to return.
func (r *Router) Stop() error {
	r.mu.Lock()
	r.stopped = true
	var err error
	if r.listener != nil {
		err = r.listener.Close()
	}
	for c := range r.conns {
		c.Close()
	}
	r.mu.Unlock()

	r.wg.Wait()
	return err
}

func (r *Router) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *Router) track(c net.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.conns[c] = struct{}{}
	r.wg.Add(1)
	return true
}

func (r *Router) untrack(c net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

// HandleConnection serves commands on conn until QUIT, an error or a timeout.
func (r *Router) HandleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)
	r.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection opened")

	for {
		// Set a deadline for the next command
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		line, err := reader.ReadString('\n')
		if err != nil {
			return // Connection closed or timeout
		}

		line = strings.TrimRight(line, "\r\n")
		cmd, rest := splitArgs(line, 1)
		if len(cmd) == 0 {
			continue
		}

		command := strings.ToUpper(cmd[0])
		if command == "QUIT" {
			return
		}
		r.dispatch(conn, command, rest)
	}
}

func (r *Router) dispatch(conn io.Writer, command, rest string) {
	switch command {
	case "PING":
		fmt.Fprintln(conn, "PONG")

	case "COLLECTIONS":
		reply(conn)(r.store.Collections())

	case "LIST":
		args, raw := splitArgs(rest, 1)
		if len(args) < 1 {
			replyErr(conn, errors.New("usage: LIST <collection> [query]"))
			return
		}
		q, err := decodeQuery(raw)
		if err != nil {
			replyErr(conn, err)
			return
		}
		reply(conn)(r.store.List(args[0], q))

	case "GET":
		args, _ := splitArgs(rest, 2)
		if len(args) < 2 {
			replyErr(conn, errors.New("usage: GET <collection> <id>"))
			return
		}
		reply(conn)(r.store.Get(args[0], args[1]))

	case "OPTIONS":
		args, _ := splitArgs(rest, 2)
		if len(args) < 2 {
			replyErr(conn, errors.New("usage: OPTIONS <collection> <field>"))
			return
		}
		reply(conn)(r.store.Options(args[0], args[1]))

	case "BOARD":
		args, raw := splitArgs(rest, 2)
		if len(args) < 2 {
			replyErr(conn, errors.New("usage: BOARD <collection> <field> [query]"))
			return
		}
		q, err := decodeQuery(raw)
		if err != nil {
			replyErr(conn, err)
			return
		}
		reply(conn)(r.store.Board(args[0], args[1], q))

	case "TABLE":
		args, raw := splitArgs(rest, 1)
		if len(args) < 1 {
			replyErr(conn, errors.New("usage: TABLE <collection> [query]"))
			return
		}
		q, err := decodeQuery(raw)
		if err != nil {
			replyErr(conn, err)
			return
		}
		reply(conn)(r.store.Table(args[0], q))

	case "SUGGEST":
		// The query is everything after the collection, spaces included.
		args, raw := splitArgs(rest, 1)
		if len(args) < 1 {
			replyErr(conn, errors.New("usage: SUGGEST <collection> <query>"))
			return
		}
		reply(conn)(r.store.Suggest(args[0], raw))

	case "DASHBOARD":
		var f dashboard.Filter
		if strings.TrimSpace(rest) != "" {
			if err := json.Unmarshal([]byte(rest), &f); err != nil {
				replyErr(conn, errors.New("invalid json filter"))
				return
			}
		}
		reply(conn)(r.store.Dashboard(f))

	case "SETTINGS":
		reply(conn)(r.store.Settings())

	case "SETTINGS_SET":
		var s schema.Settings
		if err := json.Unmarshal([]byte(rest), &s); err != nil {
			replyErr(conn, errors.New("invalid json value"))
			return
		}
		if err := binding.Validator.ValidateStruct(&s); err != nil {
			replyErr(conn, err)
			return
		}
		if err := r.store.SaveSettings(s); err != nil {
			replyErr(conn, err)
			return
		}
		fmt.Fprintln(conn, "OK")

	case "SETTINGS_RESET":
		reply(conn)(r.store.ResetSettings())

	default:
		replyErr(conn, fmt.Errorf("unknown command %s", command))
	}
}

// reply writes "OK <json>" for v, or the error.
func reply(conn io.Writer) func(v any, err error) {
	return func(v any, err error) {
		if err != nil {
			replyErr(conn, err)
			return
		}
		res, err := json.Marshal(v)
		if err != nil {
			fmt.Fprintln(conn, "ERR internal error")
			return
		}
		fmt.Fprintln(conn, "OK", string(res))
	}
}

// replyErr keeps the reply on one line.
func replyErr(conn io.Writer, err error) {
	msg := strings.ReplaceAll(err.Error(), "\n", "; ")
	fmt.Fprintln(conn, "ERR", msg)
}

func decodeQuery(raw string) (listing.Query, error) {
	var q listing.Query
	if strings.TrimSpace(raw) == "" {
		return q, nil
	}
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return q, errors.New("invalid json query")
	}
	return q, nil
}

// splitArgs returns up to n space-separated fields from the front of line and
// the remainder after the separator that follows them.
func splitArgs(line string, n int) ([]string, string) {
	fields := make([]string, 0, n)
	for len(fields) < n {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			break
		}
		i := strings.IndexAny(line, " \t")
		if i < 0 {
			fields = append(fields, line)
			line = ""
			break
		}
		fields = append(fields, line[:i])
		line = line[i+1:]
	}
	return fields, line
}
