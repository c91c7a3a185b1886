// Package socket relays chat events between WebSocket clients.
//
// Every frame is a JSON envelope:
//
//	{"event": "join_chat", "data": "<chat id>"}
//	{"event": "leave_chat", "data": "<chat id>"}
//	{"event": "new_message", "data": {"chatId": "<chat id>", "message": {...}}}
//
// The server answers new_message by sending message_received with the same
// data to every client in the chat's room, the sender included, and reports
// rejected events with an error event. Delivery is best effort: there is no
// acknowledgement, ordering guarantee or replay.
//
// A Hub owns the rooms. Run it once with RunWithContext; clients register
// with it when they connect and are closed when the context is canceled.
package socket
