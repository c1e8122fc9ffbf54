// Package live implements the real-time voice conversation pipeline
// that lets an AI host run a quiz round over a bidirectional audio
// stream.
//
// The pipeline bridges a microphone capture source and the Gemini Live
// WebSocket endpoint: continuous PCM capture at 16kHz, base64 PCM16
// transmission, and gap-free scheduled playback of streamed 24kHz
// response audio, including immediate interruption when the player
// starts speaking over the host.
//
// The moving parts:
//
//   - Session: one connection attempt to the live endpoint. States
//     connecting -> active -> (closed | error); not restartable, a new
//     Session is created to retry.
//   - Capture: turns a steady stream of microphone chunks into encoded
//     frames handed to the Session, with a mute gate.
//   - Scheduler: schedules decoded response buffers back-to-back
//     against a single cursor so bursty network delivery still plays
//     without gaps or overlaps, and flushes everything on interruption.
//
// Session state transitions are driven by a pure Transition function
// over typed events, so the whole protocol is testable without a
// network connection or audio hardware.
package live
