// Package sim provides the deterministic discrete-event engine that drives a
// Sender and a Receiver protocol implementation over a fault-injecting channel.
//
// # Reading Guide
//
// Start with these three files to understand the engine kernel:
//   - protocol.go: the Protocol and SystemContext contracts every implementation plugs into
//   - event.go: the three event types that drive the simulation (PacketArrival, TimerExpiry, AppSend)
//   - simulator.go: the event loop, callback dispatch, and action commit
//
// # Architecture
//
// The sim package owns the clock, the event queue, the timer generation table,
// the channel fault model, and all bookkeeping. Everything else lives in
// sub-packages:
//   - sim/trace/: serializable run reports and summary statistics
//   - sim/scenario/: declarative test scenarios (actions + assertions)
//   - sim/rdt/: built-in reference protocols (naive, stop-and-wait, go-back-n)
//   - sim/luaproto/: protocol implementations loaded from Lua scripts
//   - sim/pcapout/: pcap export of the packet journal
//
// # Key Interfaces
//
// Protocol implementations interact with the engine through two small
// interfaces:
//   - Protocol: Init, OnPacket, OnTimer, OnAppData callbacks
//   - SystemContext: the scoped capability handed to each callback; every
//     effect (send, timer start/cancel, delivery, log, metric) is buffered
//     and committed only after the callback returns
//
// All execution is single-threaded and synchronous. Determinism is the core
// contract: identical config, seed, and scheduled actions produce identical
// runs, byte for byte.
package sim
