package protocol

import "fmt"

type Kind int

const (
	KindMalformed Kind = iota
	KindAuth
	KindJoin
	KindMsg
	KindBye
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AUTH"
	case KindJoin:
		return "JOIN"
	case KindMsg:
		return "MSG"
	case KindBye:
		return "BYE"
	default:
		return "MALFORMED"
	}
}

// Frame is the result of matching one line against the grammar.
// The concrete type is one of Auth, Join, Msg, Bye or Malformed.
type Frame interface {
	Kind() Kind
}

type Auth struct {
	UserID      string
	DisplayName string
	Secret      string
}

type Join struct {
	Room        string
	DisplayName string
}

type Msg struct {
	DisplayName string
	Content     string
}

type Bye struct {
	DisplayName string
}

// Malformed keeps the offending line for logging.
type Malformed struct {
	Line []byte
}

func (Auth) Kind() Kind      { return KindAuth }
func (Join) Kind() Kind      { return KindJoin }
func (Msg) Kind() Kind       { return KindMsg }
func (Bye) Kind() Kind       { return KindBye }
func (Malformed) Kind() Kind { return KindMalformed }

func (f Auth) Encode() []byte {
	return line(fmt.Sprintf("AUTH %s AS %s USING %s", f.UserID, f.DisplayName, f.Secret))
}

func (f Join) Encode() []byte {
	return line(fmt.Sprintf("JOIN %s AS %s", f.Room, f.DisplayName))
}

func (f Msg) Encode() []byte {
	return line(fmt.Sprintf("MSG FROM %s IS %s", f.DisplayName, f.Content))
}

func (f Bye) Encode() []byte {
	return line(fmt.Sprintf("BYE FROM %s", f.DisplayName))
}
