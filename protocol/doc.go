// Package protocol implements the textual chat wire format.
//
// Every frame is one line terminated by CR LF. The package splits a raw byte
// stream into frames (ScanFrames), classifies a frame against the grammar
// (Parse) and builds the lines exchanged in both directions.
//
// Client to server:
//
//	AUTH <id> AS <display> USING <secret>
//	JOIN <room> AS <display>
//	MSG FROM <display> IS <content>
//	BYE FROM <display>
//
// Server to client:
//
//	REPLY OK IS <text>
//	REPLY NOK IS <text>
//	MSG FROM <display> IS <content>
//	ERR FROM <display> IS <text>
package protocol
