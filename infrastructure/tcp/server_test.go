package tcp

import (
	"bufio"
	"context"
	"io"
	"ipk-chat/domain"
	"ipk-chat/moderation"
	"ipk-chat/observability"
	"ipk-chat/runtime"
	"ipk-chat/services"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	addr     string
	registry *runtime.RoomRegistry
	reg      *prometheus.Registry
	cancel   context.CancelFunc
	done     chan error
}

func startServer(t *testing.T) *testServer {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	policy, err := moderation.NewPolicy([]string{"recverr", "test123"}, []string{"reqseg", "seg"})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	registry := runtime.NewRoomRegistry()
	chat := services.NewChatService(log, registry, runtime.NewBroadcaster(log, registry), observability.NewMetrics(reg), policy, services.ChatSettings{
		SharedSecret:      "password",
		DefaultDelivery:   domain.Segmented(5, time.Millisecond),
		TriggeredDelivery: domain.Segmented(3, time.Millisecond),
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server := NewServer(Config{ShutdownTimeout: 2 * time.Second}, log, NewHandler(log, chat, 0))
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	ts := &testServer{addr: listener.Addr().String(), registry: registry, reg: reg, cancel: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ts
}

func (ts *testServer) requireClients(t *testing.T, n int) {
	t.Helper()
	expected := "# HELP chat_client_count Number of connected clients\n# TYPE chat_client_count gauge\nchat_client_count " + strconv.Itoa(n) + "\n"
	require.Eventually(t, func() bool {
		return testutil.GatherAndCompare(ts.reg, strings.NewReader(expected), observability.ClientCountName) == nil
	}, 2*time.Second, 10*time.Millisecond)
}

type client struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *client) send(line string) {
	c.t.Helper()
	_, err := io.WriteString(c.conn, line)
	require.NoError(c.t, err)
}

func (c *client) expect(line string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	got, err := c.reader.ReadString('\n')
	require.NoError(c.t, err)
	require.Equal(c.t, line, got)
}

// expectSilence asserts nothing arrives within a short window.
func (c *client) expectSilence() {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err := c.reader.ReadByte()
	var netErr net.Error
	require.ErrorAs(c.t, err, &netErr)
	require.True(c.t, netErr.Timeout())
}

func (c *client) expectClosed() {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, err := c.reader.ReadByte()
	require.ErrorIs(c.t, err, io.EOF)
}

func login(t *testing.T, ts *testServer, user, display string) *client {
	t.Helper()
	c := dial(t, ts.addr)
	c.send("AUTH " + user + " AS " + display + " USING password\r\n")
	c.expect("REPLY OK IS Authentication successful\r\n")
	return c
}

func TestServer_Message_Reaches_Peer(t *testing.T) {
	ts := startServer(t)

	// Given two authenticated clients
	a := login(t, ts, "alice", "Alice")
	b := login(t, ts, "bob", "Bob")
	a.expect("MSG FROM SERVER IS Bob joined default\r\n")
	ts.requireClients(t, 2)

	// When A talks
	a.send("MSG FROM Alice IS hello\r\n")

	// Then B reassembles the segmented line
	b.expect("MSG FROM Alice IS hello\r\n")
	a.expectSilence()
}

func TestServer_Blocked_Message_Is_Not_Broadcast(t *testing.T) {
	ts := startServer(t)
	a := login(t, ts, "alice", "Alice")
	b := login(t, ts, "bob", "Bob")
	a.expect("MSG FROM SERVER IS Bob joined default\r\n")

	a.send("MSG FROM Alice IS this is test123 content\r\n")

	a.expect("ERR FROM Alice IS Inappropriate message\r\n")
	b.expectSilence()
}

func TestServer_Bye_Closes_The_Connection(t *testing.T) {
	ts := startServer(t)
	a := login(t, ts, "alice", "Alice")
	b := login(t, ts, "bob", "Bob")
	a.expect("MSG FROM SERVER IS Bob joined default\r\n")
	ts.requireClients(t, 2)

	a.send("BYE FROM Alice\r\n")

	a.expectClosed()
	b.expect("MSG FROM SERVER IS Alice left the chat\r\n")
	ts.requireClients(t, 1)
	require.Eventually(t, func() bool {
		return len(ts.registry.Members(domain.DefaultRoom)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_Abrupt_Disconnect_Is_Announced(t *testing.T) {
	ts := startServer(t)
	a := login(t, ts, "alice", "Alice")
	b := login(t, ts, "bob", "Bob")
	a.expect("MSG FROM SERVER IS Bob joined default\r\n")

	require.NoError(t, b.conn.Close())

	a.expect("MSG FROM SERVER IS Bob left the chat\r\n")
	ts.requireClients(t, 1)
}

func TestServer_Unauthenticated_Requests(t *testing.T) {
	ts := startServer(t)
	c := dial(t, ts.addr)

	// Split the frame across writes, delimiter included
	c.send("JOIN default AS x\r")
	c.send("\n")
	c.expect("ERR FROM UNKNOWN IS Invalid AUTH format\r\n")

	c.send("AUTH alice AS Alice USING wrong\r\n")
	c.expect("REPLY NOK IS Authentication failed\r\n")
	ts.requireClients(t, 0)
}

func TestServer_Join_And_Malformed(t *testing.T) {
	ts := startServer(t)
	a := login(t, ts, "alice", "Alice")
	b := login(t, ts, "bob", "Bob")
	a.expect("MSG FROM SERVER IS Bob joined default\r\n")

	b.send("JOIN lobby AS Bob\r\n")
	b.expect("REPLY NOK IS Join failed: Unexisting room\r\n")

	b.send("JOIN nondefault AS Bobby\r\n")
	b.expect("REPLY OK IS Join success\r\n")

	b.send("hello?\r\n")
	b.expect("ERR FROM Bobby IS Invalid message format\r\n")

	// A is no longer in the same room as B
	a.send("MSG FROM Alice IS anyone\r\n")
	b.expectSilence()
}

func TestServer_Shutdown_Closes_Clients(t *testing.T) {
	ts := startServer(t)
	a := login(t, ts, "alice", "Alice")

	ts.cancel()

	a.expectClosed()
	select {
	case err := <-ts.done:
		require.NoError(t, err)
		ts.done <- err
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
