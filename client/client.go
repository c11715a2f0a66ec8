// Package client is a minimal chat client speaking the line protocol, used by
// the probe command and the end to end suite.
package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"ipk-chat/protocol"
	"net"
	"time"
)

type Encoder interface {
	Encode() []byte
}

type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	pending []byte
}

func Dial(ctx context.Context, address string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not connect to server at %s: %w", address, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

func (c *Client) Send(frame Encoder) error {
	return c.SendRaw(frame.Encode())
}

// SendRaw writes bytes as is, which allows sending malformed or partial frames.
func (c *Client) SendRaw(data []byte) error {
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// ReadLine waits for the next complete line, delimiter included. Segmented
// deliveries are reassembled. A timeout of zero waits forever; bytes received
// before a timeout are kept for the next call.
func (c *Client) ReadLine(timeout time.Duration) (string, error) {
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return "", err
	}

	for {
		chunk, err := c.reader.ReadBytes('\n')
		c.pending = append(c.pending, chunk...)
		if err != nil {
			return "", err
		}
		if bytes.HasSuffix(c.pending, []byte(protocol.Delimiter)) {
			line := string(c.pending)
			c.pending = c.pending[:0]
			return line, nil
		}
	}
}

func (c *Client) LocalAddr() string {
	return c.conn.LocalAddr().String()
}

func (c *Client) Close() error {
	return c.conn.Close()
}
