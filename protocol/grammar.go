package protocol

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxIdentifierLength  = 20
	MaxDisplayNameLength = 20
	MaxSecretLength      = 128
	MaxContentLength     = 60000
)

// Parse classifies one frame, delimiter included. The whole line has to match
// one production of the grammar, otherwise a Malformed frame is returned.
// Tokens are separated by one or more whitespace characters, except inside the
// "MSG FROM" and "BYE FROM" keywords which use exactly one space.
func Parse(frame []byte) Frame {
	malformed := Malformed{Line: bytes.Clone(frame)}

	body, ok := bytes.CutSuffix(frame, delimiter)
	if !ok || !utf8.Valid(body) {
		return malformed
	}
	c := &cursor{s: string(body)}

	var (
		parsed  Frame
		matched bool
	)
	switch {
	case c.keyword("AUTH"):
		parsed, matched = parseAuth(c)
	case c.keyword("JOIN"):
		parsed, matched = parseJoin(c)
	case c.keyword("MSG FROM"):
		parsed, matched = parseMsg(c)
	case c.keyword("BYE FROM"):
		parsed, matched = parseBye(c)
	}
	if !matched {
		return malformed
	}
	return parsed
}

// AUTH <id> AS <display> USING <secret>
func parseAuth(c *cursor) (Frame, bool) {
	var f Auth
	ok := c.separator() &&
		c.field(&f.UserID, isIdentifier, MaxIdentifierLength) &&
		c.separator() && c.keyword("AS") && c.separator() &&
		c.field(&f.DisplayName, isDisplayName, MaxDisplayNameLength) &&
		c.separator() && c.keyword("USING") && c.separator() &&
		c.field(&f.Secret, isIdentifier, MaxSecretLength) &&
		c.done()
	return f, ok
}

// JOIN <room> AS <display>
func parseJoin(c *cursor) (Frame, bool) {
	var f Join
	ok := c.separator() &&
		c.field(&f.Room, isIdentifier, MaxIdentifierLength) &&
		c.separator() && c.keyword("AS") && c.separator() &&
		c.field(&f.DisplayName, isDisplayName, MaxDisplayNameLength) &&
		c.done()
	return f, ok
}

// MSG FROM <display> IS <content>
func parseMsg(c *cursor) (Frame, bool) {
	var f Msg
	ok := c.separator() &&
		c.field(&f.DisplayName, isDisplayName, MaxDisplayNameLength) &&
		c.separator() && c.keyword("IS")
	if !ok {
		return f, false
	}
	content, ok := c.content()
	if !ok {
		return f, false
	}
	f.Content = content
	return f, true
}

// BYE FROM <display>
func parseBye(c *cursor) (Frame, bool) {
	var f Bye
	ok := c.separator() &&
		c.field(&f.DisplayName, isDisplayName, MaxDisplayNameLength) &&
		c.done()
	return f, ok
}

// cursor walks a frame body left to right.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) rest() string {
	return c.s[c.pos:]
}

func (c *cursor) done() bool {
	return c.pos == len(c.s)
}

// keyword consumes k when it is followed by whitespace or the end of the line.
func (c *cursor) keyword(k string) bool {
	rest := c.rest()
	if !strings.HasPrefix(rest, k) {
		return false
	}
	if next, _ := utf8.DecodeRuneInString(rest[len(k):]); len(rest) > len(k) && !unicode.IsSpace(next) {
		return false
	}
	c.pos += len(k)
	return true
}

// separator consumes a run of whitespace and fails on an empty run.
func (c *cursor) separator() bool {
	return c.whitespace() > 0
}

func (c *cursor) whitespace() int {
	n := 0
	for !c.done() {
		r, size := utf8.DecodeRuneInString(c.rest())
		if !unicode.IsSpace(r) {
			break
		}
		c.pos += size
		n++
	}
	return n
}

// field consumes the next token and checks its length and character class.
func (c *cursor) field(dst *string, allowed func(rune) bool, maxLength int) bool {
	start := c.pos
	for !c.done() {
		r, size := utf8.DecodeRuneInString(c.rest())
		if unicode.IsSpace(r) {
			break
		}
		c.pos += size
	}
	token := c.s[start:c.pos]
	length := utf8.RuneCountInString(token)
	if length == 0 || length > maxLength {
		return false
	}
	for _, r := range token {
		if !allowed(r) {
			return false
		}
	}
	*dst = token
	return true
}

// content consumes the separator after IS and returns the remainder of the
// line. The separator is greedy: when nothing follows it, the last whitespace
// character of the run becomes the content, provided the run is at least two
// characters long.
func (c *cursor) content() (string, bool) {
	start := c.pos
	if c.whitespace() == 0 {
		return "", false
	}
	content := c.rest()
	if content == "" {
		run := c.s[start:]
		if utf8.RuneCountInString(run) < 2 {
			return "", false
		}
		_, size := utf8.DecodeLastRuneInString(run)
		content = run[len(run)-size:]
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", false
	}
	c.pos = len(c.s)
	return content, true
}

// isIdentifier matches [A-Za-z0-9_-].
func isIdentifier(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// isDisplayName matches printable ASCII without space, [!-~].
func isDisplayName(r rune) bool {
	return r >= '!' && r <= '~'
}
