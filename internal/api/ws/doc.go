/*
Package ws streams animated surfaces over WebSocket.

A client connects to /stream and sends JSON messages:

	{"type": "stream", "request": {"expression": "sin(x - t)", "t0": 0, "t1": 6.28, "frames": 30}}
	{"type": "cancel", "stream_id": "..."}
	{"type": "ping"}

Each accepted stream is announced with a stream_start message carrying a
UUID, followed by one frame message per time slice and a closing complete
(or stream_cancelled) message. Frame meshes encode undefined heights as
null. Messages are encoded with sonic; writes on a connection are
serialized, so several streams may share it.
*/
package ws
