package e2e

import (
	"context"
	"fmt"
	"ipk-chat/client"
	"ipk-chat/protocol"
	"time"

	"github.com/gookit/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type BaseChatSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseChatSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ChatAddr == "" {
		s.T().Skip("CHAT_ADDR is not set, skipping end to end suite")
	}
}

// Step prints a colorized header before running one step of a scenario
func (s *BaseChatSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	s.Run(name, fn)
}

// Connect dials the server and closes the connection at the end of the test.
func (s *BaseChatSuite) Connect() *client.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, s.Config.ChatAddr)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

// Login connects and authenticates under a unique display name.
func (s *BaseChatSuite) Login(prefix string) (*client.Client, string) {
	c := s.Connect()
	display := prefix + "-" + uuid.NewString()[:8]
	s.Require().NoError(c.Send(protocol.Auth{UserID: display, DisplayName: display, Secret: s.Config.Secret}))
	s.Expect(c, string(protocol.ReplyOK("Authentication successful")))
	return c, display
}

// Expect reads lines until want shows up, skipping notices about other clients.
func (s *BaseChatSuite) Expect(c *client.Client, want string) {
	deadline := time.Now().Add(s.Config.ReadTimeout)
	for {
		line, err := c.ReadLine(time.Until(deadline))
		s.Require().NoError(err, "waiting for %q", want)
		if line == want {
			return
		}
		s.T().Logf("skipping %q", line)
	}
}
