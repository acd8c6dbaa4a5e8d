// Package relay is the per-connection engine bridging a browser
// websocket to a live assistant stream. Each connection gets one Relay
// running two loops: the inbound loop forwards client audio and text
// upstream, and the outbound loop routes assistant events back to the
// client through readiness-gated audio buffers, a transcription
// aggregator, and a tool-call coordinator that times result delivery
// against assistant speech.
package relay
