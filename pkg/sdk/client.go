// Package sdk provides the client-side library for interacting with the admin store.
// It supports both remote connections via TCP/TLS and local embedded mode.
package sdk

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

// Client is a remote client for the admin daemon.
// It implements the AdminStore interface.
type Client struct {
	addr       string
	disableTLS bool
	log        zerolog.Logger
	conn       net.Conn
	reader     *bufio.Reader
	mu         sync.Mutex // Protects concurrent access to the connection
}

// Connect establishes a TLS-encrypted connection to a remote daemon.
// If CELERIX_DISABLE_TLS is set to "true", it falls back to plain TCP.
func Connect(addr string) (*Client, error) {
	return Dial(Options{
		Addr:       addr,
		DisableTLS: os.Getenv("CELERIX_DISABLE_TLS") == "true",
		Logger:     zerolog.Nop(),
	})
}

// Dial connects to opts.Addr.
func Dial(opts Options) (*Client, error) {
	c := &Client{addr: opts.Addr, disableTLS: opts.DisableTLS, log: opts.Logger}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	var conn net.Conn
	var err error

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}

	if c.disableTLS {
		conn, err = dialer.Dial("tcp", c.addr)
	} else {
		config := &tls.Config{
			InsecureSkipVerify: true, // The daemon uses a self-signed certificate
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", c.addr, config)
	}

	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Internal helper for TCP communication
func (c *Client) sendAndReceive(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	var resp string

	// Try up to 3 times with backoff
	for i := 0; i < 3; i++ {
		if c.conn == nil {
			if reconnectErr := c.reconnect(); reconnectErr != nil {
				err = fmt.Errorf("reconnect failed: %w", reconnectErr)
				time.Sleep(time.Duration(i*100) * time.Millisecond)
				continue
			}
		}

		c.conn.SetDeadline(time.Now().Add(30 * time.Second))

		_, err = fmt.Fprint(c.conn, cmd+"\n")
		if err == nil {
			resp, err = c.reader.ReadString('\n')
			if err == nil {
				resp = strings.TrimSpace(resp)
				if strings.HasPrefix(resp, "ERR") {
					return "", remoteError(strings.TrimPrefix(resp, "ERR "))
				}
				return resp, nil
			}
		}

		c.log.Warn().Err(err).Int("attempt", i+1).Msg("request failed, reconnecting")

		// Force a reconnect on the next iteration
		if closeErr := c.reconnect(); closeErr != nil {
			c.log.Warn().Err(closeErr).Msg("reconnect failed")
		}

		time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
	}

	return "", fmt.Errorf("failed after 3 attempts. last error: %v", err)
}

// call sends cmd and decodes the JSON payload of the OK reply into out.
func (c *Client) call(cmd string, out any) error {
	resp, err := c.sendAndReceive(cmd)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), out)
}

// remoteSentinels are matched by message so errors.Is works across the wire.
var remoteSentinels = []error{
	ErrCollectionNotFound,
	ErrRecordNotFound,
	ErrUnknownFilter,
	ErrInvalidRange,
}

func remoteError(msg string) error {
	for _, e := range remoteSentinels {
		if strings.HasPrefix(msg, e.Error()) {
			return fmt.Errorf("%w%s", e, strings.TrimPrefix(msg, e.Error()))
		}
	}
	return errors.New(msg)
}

func encodeQuery(q listing.Query) string {
	b, _ := json.Marshal(q)
	return string(b)
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	resp, err := c.sendAndReceive("PING")
	if err != nil {
		return err
	}
	if resp != "PONG" {
		return fmt.Errorf("unexpected reply %q", resp)
	}
	return nil
}

func (c *Client) Collections() ([]string, error) {
	var list []string
	err := c.call("COLLECTIONS", &list)
	return list, err
}

func (c *Client) List(collection string, q listing.Query) (any, error) {
	var records []any
	err := c.call(fmt.Sprintf("LIST %s %s", collection, encodeQuery(q)), &records)
	return records, err
}

func (c *Client) Get(collection, id string) (any, error) {
	var val any
	err := c.call(fmt.Sprintf("GET %s %s", collection, id), &val)
	return val, err
}

func (c *Client) Options(collection, field string) ([]string, error) {
	var list []string
	err := c.call(fmt.Sprintf("OPTIONS %s %s", collection, field), &list)
	return list, err
}

func (c *Client) Board(collection, field string, q listing.Query) (any, error) {
	var groups []listing.Group[any]
	err := c.call(fmt.Sprintf("BOARD %s %s %s", collection, field, encodeQuery(q)), &groups)
	return groups, err
}

func (c *Client) Table(collection string, q listing.Query) (export.Table, error) {
	var t export.Table
	err := c.call(fmt.Sprintf("TABLE %s %s", collection, encodeQuery(q)), &t)
	return t, err
}

func (c *Client) Suggest(collection, query string) (string, error) {
	var s string
	query = strings.NewReplacer("\n", " ", "\r", " ").Replace(query)
	err := c.call(fmt.Sprintf("SUGGEST %s %s", collection, query), &s)
	return s, err
}

func (c *Client) Dashboard(f dashboard.Filter) (dashboard.View, error) {
	var v dashboard.View
	b, _ := json.Marshal(f)
	err := c.call("DASHBOARD "+string(b), &v)
	return v, err
}

func (c *Client) Settings() (schema.Settings, error) {
	var s schema.Settings
	err := c.call("SETTINGS", &s)
	return s, err
}

func (c *Client) SaveSettings(s schema.Settings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.call("SETTINGS_SET "+string(b), nil)
}

func (c *Client) ResetSettings() (schema.Settings, error) {
	var s schema.Settings
	err := c.call("SETTINGS_RESET", &s)
	return s, err
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	fmt.Fprintln(c.conn, "QUIT")
	err := c.conn.Close()
	c.conn = nil
	return err
}

// --- Generics Support ---

// convert returns val as T, re-marshaling when it arrived as generic JSON.
func convert[T any](val any) (T, error) {
	var target T
	// If it's already the right type (e.g. from the Catalog), just return it
	if v, ok := val.(T); ok {
		return v, nil
	}

	// Otherwise, it is a map/slice from JSON, so we re-marshal/unmarshal
	bytes, err := json.Marshal(val)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(bytes, &target)
	return target, err
}

// Get retrieves a type-safe record using Go generics.
func Get[T any](s CollectionReader, collection, id string) (T, error) {
	val, err := s.Get(collection, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return convert[T](val)
}

// List retrieves type-safe records using Go generics.
func List[T any](s CollectionReader, collection string, q listing.Query) ([]T, error) {
	val, err := s.List(collection, q)
	if err != nil {
		return nil, err
	}
	return convert[[]T](val)
}

// Board retrieves type-safe board columns using Go generics.
func Board[T any](s CollectionBrowser, collection, field string, q listing.Query) ([]listing.Group[T], error) {
	val, err := s.Board(collection, field, q)
	if err != nil {
		return nil, err
	}
	return convert[[]listing.Group[T]](val)
}
