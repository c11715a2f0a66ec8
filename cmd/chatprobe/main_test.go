package main

import (
	"ipk-chat/protocol"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	req := require.New(t)
	display := "Probe"

	frame, raw := parseInput("hello world", &display)
	req.Empty(raw)
	req.Equal(protocol.Msg{DisplayName: "Probe", Content: "hello world"}, frame)

	frame, _ = parseInput("/join nondefault Probe2", &display)
	req.Equal(protocol.Join{Room: "nondefault", DisplayName: "Probe2"}, frame)
	req.Equal("Probe2", display)

	frame, _ = parseInput("/bye", &display)
	req.Equal(protocol.Bye{DisplayName: "Probe2"}, frame)

	frame, raw = parseInput("/raw JOIN", &display)
	req.Nil(frame)
	req.Equal("JOIN", raw)

	frame, raw = parseInput("   ", &display)
	req.Nil(frame)
	req.Empty(raw)
}
