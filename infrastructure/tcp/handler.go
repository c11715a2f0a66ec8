package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"ipk-chat/domain"
	"ipk-chat/protocol"
	"ipk-chat/services"
	"log/slog"
	"net"
)

// Handler drives one client connection from accept to cleanup.
type Handler struct {
	log          *slog.Logger
	chat         services.IChatService
	maxFrameSize int
}

func NewHandler(log *slog.Logger, chat services.IChatService, maxFrameSize int) *Handler {
	return &Handler{log: log, chat: chat, maxFrameSize: maxFrameSize}
}

// Handle reads frames until the client leaves, the connection fails or ctx is
// cancelled. Whatever the reason, the session is released from its room
// before the connection is closed.
func (h *Handler) Handle(ctx context.Context, conn net.Conn) error {
	session := domain.NewSession(conn, conn.RemoteAddr().String())
	log := h.log.With("session", session.ID, "remote", session.RemoteAddr)
	log.Debug("Connection accepted")

	// Closing the socket is what unblocks the read loop on shutdown
	stop := context.AfterFunc(ctx, func() { _ = session.Close() })
	defer stop()

	announce := true
	defer func() {
		h.chat.Disconnect(ctx, session, announce)
		_ = session.Close()
		log.Debug("Connection closed")
	}()

	scanner := protocol.NewScanner(conn, h.maxFrameSize)
	for scanner.Scan() {
		outcome, err := h.chat.Handle(ctx, session, protocol.Parse(scanner.Bytes()))
		if err != nil {
			return fmt.Errorf("session %s: %w", session.ID, err)
		}
		if outcome == services.Close {
			announce = false
			return nil
		}
	}

	err := scanner.Err()
	if err == nil || errors.Is(err, io.EOF) || session.IsClosed() {
		return nil
	}
	return fmt.Errorf("read from %s: %w", session.RemoteAddr, err)
}
