package e2e

import (
	"ipk-chat/protocol"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseChatSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestMessageBlockAndBye() {
	a, alice := s.Login("alice")
	b, bob := s.Login("bob")
	s.Require().NoError(b.Send(protocol.Join{Room: "nondefault", DisplayName: bob}))
	s.Expect(b, string(protocol.ReplyOK("Join success")))
	s.Require().NoError(a.Send(protocol.Join{Room: "nondefault", DisplayName: alice}))
	s.Expect(a, string(protocol.ReplyOK("Join success")))
	s.Expect(b, string(protocol.JoinedNotice(alice, "nondefault")))

	s.Step("Step 1: a message reaches the peer", func() {
		s.Require().NoError(a.Send(protocol.Msg{DisplayName: alice, Content: "hello"}))
		s.Expect(b, string(protocol.Msg{DisplayName: alice, Content: "hello"}.Encode()))
	})

	s.Step("Step 2: an inappropriate message is refused", func() {
		s.Require().NoError(a.Send(protocol.Msg{DisplayName: alice, Content: "this is test123 content"}))
		s.Expect(a, string(protocol.Error(alice, "Inappropriate message")))
	})

	s.Step("Step 3: bye is announced and closes the connection", func() {
		s.Require().NoError(a.Send(protocol.Bye{DisplayName: alice}))
		s.Expect(b, string(protocol.LeftNotice(alice)))
		_, err := a.ReadLine(s.Config.ReadTimeout)
		s.Require().Error(err)
	})
}
