package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"ipk-chat/client"
	"ipk-chat/protocol"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
)

// Exit codes for the probe.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	Addr        string `envconfig:"CHAT_ADDR" default:"127.0.0.1:4596"`
	UserID      string `envconfig:"PROBE_USER" default:"probe"`
	DisplayName string `envconfig:"PROBE_DISPLAY_NAME" default:"Probe"`
	Secret      string `envconfig:"PROBE_SECRET" default:"password"`
	Colours     bool   `envconfig:"PROBE_COLOURS" default:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Probe error: %v\n", err)
	}
	os.Exit(code)
}

// run authenticates, then relays stdin to the server until BYE, EOF or Ctrl+C.
// Plain lines are sent as messages, "/join <room> [name]" and "/bye" map to
// the other frames and "/raw <text>" sends text followed by CR LF untouched.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, config.Addr)
	if err != nil {
		return exitRuntime, err
	}
	defer c.Close()
	context.AfterFunc(ctx, func() { _ = c.Close() })

	display := config.DisplayName
	p := printer{colours: config.Colours}

	if err := c.Send(protocol.Auth{UserID: config.UserID, DisplayName: display, Secret: config.Secret}); err != nil {
		return exitRuntime, err
	}

	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := c.ReadLine(0)
			if err != nil {
				readErr <- err
				return
			}
			p.received(line)
		}
	}()

	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				p.info("Connection closed by server")
				return exitOK, nil
			}
			return exitRuntime, err
		case text, ok := <-input:
			if !ok {
				_ = c.Send(protocol.Bye{DisplayName: display})
				return exitOK, nil
			}
			frame, raw := parseInput(text, &display)
			if raw != "" {
				err = c.SendRaw([]byte(raw + protocol.Delimiter))
			} else if frame != nil {
				err = c.Send(frame)
			}
			if err != nil {
				return exitRuntime, err
			}
		}
	}
}

func parseInput(text string, display *string) (client.Encoder, string) {
	fields := strings.Fields(text)
	switch {
	case len(fields) == 0:
		return nil, ""
	case fields[0] == "/raw":
		return nil, strings.TrimSpace(strings.TrimPrefix(text, "/raw"))
	case fields[0] == "/bye":
		return protocol.Bye{DisplayName: *display}, ""
	case fields[0] == "/join" && len(fields) >= 2:
		if len(fields) >= 3 {
			*display = fields[2]
		}
		return protocol.Join{Room: fields[1], DisplayName: *display}, ""
	}
	return protocol.Msg{DisplayName: *display, Content: text}, ""
}

type printer struct {
	colours bool
}

func (p printer) received(line string) {
	text := strings.TrimSuffix(line, protocol.Delimiter)
	if !p.colours {
		fmt.Println(text)
		return
	}
	switch {
	case strings.HasPrefix(text, "REPLY OK"):
		color.Green.Println(text)
	case strings.HasPrefix(text, "REPLY NOK"), strings.HasPrefix(text, "ERR FROM"):
		color.Red.Println(text)
	case strings.HasPrefix(text, "MSG FROM "+protocol.ServerSender+" "):
		color.Cyan.Println(text)
	default:
		fmt.Println(text)
	}
}

func (p printer) info(text string) {
	if p.colours {
		color.Yellow.Println(text)
		return
	}
	fmt.Println(text)
}
