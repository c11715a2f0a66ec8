package domain

type RoomName string

const (
	DefaultRoom    RoomName = "default"
	NonDefaultRoom RoomName = "nondefault"
)

var knownRooms = []RoomName{DefaultRoom, NonDefaultRoom}

// ParseRoom maps a room identifier received on the wire to one of the rooms
// the server hosts. Rooms outside the fixed set are refused.
func ParseRoom(name string) (RoomName, bool) {
	for _, room := range knownRooms {
		if string(room) == name {
			return room, true
		}
	}
	return "", false
}

func KnownRooms() []RoomName {
	return append([]RoomName(nil), knownRooms...)
}
