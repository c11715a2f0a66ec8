package protocol

import "fmt"

const (
	Delimiter = "\r\n"

	// ServerSender signs notices emitted by the server itself.
	ServerSender = "SERVER"
	// UnknownSender signs errors sent before the client has a display name.
	UnknownSender = "UNKNOWN"
)

func ReplyOK(text string) []byte {
	return line("REPLY OK IS " + text)
}

func ReplyNOK(text string) []byte {
	return line("REPLY NOK IS " + text)
}

func Error(from, text string) []byte {
	return line(fmt.Sprintf("ERR FROM %s IS %s", from, text))
}

func ServerNotice(text string) []byte {
	return Msg{DisplayName: ServerSender, Content: text}.Encode()
}

func JoinedNotice(displayName, room string) []byte {
	return ServerNotice(fmt.Sprintf("%s joined %s", displayName, room))
}

func LeftNotice(displayName string) []byte {
	return ServerNotice(displayName + " left the chat")
}

func line(s string) []byte {
	return []byte(s + Delimiter)
}
