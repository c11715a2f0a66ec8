package services

import (
	"context"
	"fmt"
	"ipk-chat/contract"
	"ipk-chat/domain"
	"ipk-chat/errors"
	"ipk-chat/moderation"
	"ipk-chat/protocol"
	"log/slog"
)

// Outcome tells the connection handler whether to keep reading frames.
type Outcome int

const (
	Continue Outcome = iota
	Close
)

type ChatSettings struct {
	SharedSecret string
	// DefaultDelivery is used for messages without a segmentation trigger word.
	DefaultDelivery   domain.Delivery
	TriggeredDelivery domain.Delivery
}

type IChatService interface {
	Handle(ctx context.Context, session *domain.Session, frame protocol.Frame) (Outcome, error)
	Disconnect(ctx context.Context, session *domain.Session, announce bool)
}

// ChatService is the per-session state machine.
// Handle is called by the goroutine owning the session, one frame at a time.
// A returned error means the reply could not be written to the sender, the
// session is then considered dead.
type ChatService struct {
	log         *slog.Logger
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	metrics     contract.IMetrics
	policy      moderation.Policy
	settings    ChatSettings
}

func NewChatService(
	log *slog.Logger,
	registry contract.IRegistry,
	broadcaster contract.IBroadcaster,
	metrics contract.IMetrics,
	policy moderation.Policy,
	settings ChatSettings,
) *ChatService {
	return &ChatService{
		log:         log,
		registry:    registry,
		broadcaster: broadcaster,
		metrics:     metrics,
		policy:      policy,
		settings:    settings,
	}
}

func (s *ChatService) Handle(ctx context.Context, session *domain.Session, frame protocol.Frame) (Outcome, error) {
	s.log.Debug("Frame received",
		"session", session.ID,
		"kind", frame.Kind().String(),
		"authenticated", session.IsAuthenticated())

	if !session.IsAuthenticated() {
		auth, ok := frame.(protocol.Auth)
		if !ok {
			return Continue, s.reject(session, errors.ErrNotAuthenticated)
		}
		return Continue, s.reject(session, s.authenticate(ctx, session, auth))
	}

	var err error
	switch f := frame.(type) {
	case protocol.Join:
		err = s.join(ctx, session, f)
	case protocol.Msg:
		err = s.message(ctx, session, f)
	case protocol.Bye:
		if f.DisplayName != session.DisplayName() {
			return Continue, s.reject(session, errors.ErrDisplayNameMismatch)
		}
		s.broadcaster.Broadcast(ctx, session, protocol.LeftNotice(session.DisplayName()), domain.Atomic())
		s.log.Info("Client said goodbye", "session", session.ID, "display", session.DisplayName())
		return Close, nil
	default:
		// A second AUTH lands here as well
		err = errors.ErrMalformedFrame
	}
	return Continue, s.reject(session, err)
}

// Disconnect releases everything the session holds once its connection is gone.
// When announce is set, the remaining room members are told the client left.
func (s *ChatService) Disconnect(ctx context.Context, session *domain.Session, announce bool) {
	if announce && session.IsAuthenticated() && session.Room() != "" {
		s.broadcaster.Broadcast(ctx, session, protocol.LeftNotice(session.DisplayName()), domain.Atomic())
	}
	left := s.registry.Leave(session)
	if session.IsCounted() {
		s.metrics.DecrementActiveClients()
	}
	s.log.Debug("Session released",
		"session", session.ID,
		"left_room", left,
		"announced", announce)
}

func (s *ChatService) authenticate(ctx context.Context, session *domain.Session, f protocol.Auth) error {
	if f.Secret != s.settings.SharedSecret {
		s.log.Info("Authentication refused", "session", session.ID, "user", f.UserID)
		return errors.ErrAuthFailed
	}

	session.Authenticate(f.UserID, f.DisplayName)
	if err := s.registry.Join(session, domain.DefaultRoom); err != nil {
		return fmt.Errorf("join %s: %w", domain.DefaultRoom, err)
	}
	if err := session.Send(protocol.ReplyOK("Authentication successful")); err != nil {
		return err
	}
	s.broadcaster.Broadcast(ctx, session, protocol.JoinedNotice(f.DisplayName, string(domain.DefaultRoom)), domain.Atomic())
	session.MarkCounted()
	s.metrics.IncrementActiveClients()

	s.log.Info("Client authenticated",
		"session", session.ID,
		"user", f.UserID,
		"display", f.DisplayName,
		"room", domain.DefaultRoom)
	return nil
}

func (s *ChatService) join(ctx context.Context, session *domain.Session, f protocol.Join) error {
	room, ok := domain.ParseRoom(f.Room)
	if !ok {
		return errors.ErrUnknownRoom
	}
	if err := s.registry.Join(session, room); err != nil {
		return fmt.Errorf("join %s: %w", room, err)
	}
	session.Rename(f.DisplayName)

	if err := session.Send(protocol.ReplyOK("Join success")); err != nil {
		return err
	}
	s.broadcaster.Broadcast(ctx, session, protocol.JoinedNotice(f.DisplayName, string(room)), domain.Atomic())
	s.log.Info("Client joined room", "session", session.ID, "display", f.DisplayName, "room", room)
	return nil
}

func (s *ChatService) message(ctx context.Context, session *domain.Session, f protocol.Msg) error {
	if f.DisplayName != session.DisplayName() {
		return errors.ErrDisplayNameMismatch
	}

	verdict := s.policy.Inspect(f.Content)
	if verdict.Blocked {
		s.log.Info("Message blocked", "session", session.ID, "word", verdict.BlockedWord)
		return errors.ErrInappropriateMessage
	}

	delivery := s.settings.DefaultDelivery
	if verdict.Segmented {
		delivery = s.settings.TriggeredDelivery
	}
	report := s.broadcaster.Broadcast(ctx, session, protocol.Msg{DisplayName: f.DisplayName, Content: f.Content}.Encode(), delivery)
	s.metrics.IncrementMessagesSent()

	s.log.Debug("Message relayed",
		"session", session.ID,
		"room", session.Room(),
		"delivered", report.Delivered(),
		"segmented", delivery.IsSegmented())
	return nil
}

// reject writes the reply matching a refused request. Any error outside the
// protocol taxonomy, or a failed write, is returned as is.
func (s *ChatService) reject(session *domain.Session, err error) error {
	if err == nil {
		return nil
	}
	reply, ok := replyFor(session, err)
	if !ok {
		return err
	}
	if sendErr := session.Send(reply); sendErr != nil {
		return sendErr
	}
	return nil
}

func replyFor(session *domain.Session, err error) ([]byte, bool) {
	switch {
	case errors.Is(err, errors.ErrNotAuthenticated):
		return protocol.Error(protocol.UnknownSender, "Invalid AUTH format"), true
	case errors.Is(err, errors.ErrAuthFailed):
		return protocol.ReplyNOK("Authentication failed"), true
	case errors.Is(err, errors.ErrUnknownRoom):
		return protocol.ReplyNOK("Join failed: Unexisting room"), true
	case errors.Is(err, errors.ErrDisplayNameMismatch):
		return protocol.Error(session.DisplayName(), "Display name mismatch"), true
	case errors.Is(err, errors.ErrInappropriateMessage):
		return protocol.Error(session.DisplayName(), "Inappropriate message"), true
	case errors.Is(err, errors.ErrMalformedFrame):
		return protocol.Error(session.DisplayName(), "Invalid message format"), true
	}
	return nil, false
}
