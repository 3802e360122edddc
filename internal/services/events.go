package services

// Wire event names shared by the WebSocket gateway and the delivery bus.
const (
	// EventSetUserSocket binds the connection to a username (identify).
	EventSetUserSocket = "set_user_socket"

	// EventSendPrivateMessage carries an inbound message from a client.
	EventSendPrivateMessage = "send_private_message"

	// EventGetPrivateMessage is the targeted outbound delivery push.
	EventGetPrivateMessage = "get_private_message"

	// EventAck acknowledges a client frame that carried an id.
	EventAck = "ack"
)
