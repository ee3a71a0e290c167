// Package luaproto loads sender/receiver protocol pairs written in Lua,
// so a protocol can be graded without compiling Go.
//
// A protocol script is executed once and must return a table with two
// sub-tables, sender and receiver, each holding callback functions:
//
//	return {
//	  sender = {
//	    init        = function(ctx) end,
//	    on_app_data = function(ctx, data) ... end,
//	    on_packet   = function(ctx, pkt) ... end,
//	    on_timer    = function(ctx, timer_id) ... end,
//	  },
//	  receiver = {
//	    on_packet = function(ctx, pkt) ... end,
//	  },
//	}
//
// Missing callbacks are no-ops. Packets cross the boundary as tables with
// snake_case header fields plus a payload string. ctx exposes the same
// capabilities Go protocols get, as methods on a userdata. Two helper
// globals are preloaded: checksum(s) computes the Internet checksum of a
// string, and the flags table holds the header flag bits.
package luaproto

import (
	"fmt"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/rdtlab/rdtlab/sim"
)

// Runtime owns the Lua state behind a loaded protocol pair. Close it when
// the simulation is done.
type Runtime struct {
	state    *lua.LState
	sender   *endpoint
	receiver *endpoint
}

// Load executes the script at path and binds its sender and receiver
// callback tables.
func Load(path string) (*Runtime, error) {
	L := lua.NewState()
	registerContextType(L)
	registerGlobals(L)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading protocol script: %w", err)
	}
	table, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("protocol script %s did not return a table", path)
	}
	rt := &Runtime{state: L}
	var err error
	if rt.sender, err = rt.bind(table, "sender"); err != nil {
		L.Close()
		return nil, err
	}
	if rt.receiver, err = rt.bind(table, "receiver"); err != nil {
		L.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) bind(root *lua.LTable, name string) (*endpoint, error) {
	tbl, ok := rt.state.GetField(root, name).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("protocol script has no %s table", name)
	}
	return &endpoint{rt: rt, callbacks: tbl}, nil
}

// Close releases the Lua state.
func (rt *Runtime) Close() { rt.state.Close() }

// Sender returns the script's sender side.
func (rt *Runtime) Sender() sim.Protocol { return rt.sender }

// Receiver returns the script's receiver side.
func (rt *Runtime) Receiver() sim.Protocol { return rt.receiver }

// endpoint adapts one callback table to the Protocol interface. Both
// endpoints share the script's globals; keeping sender and receiver state
// in separate locals is the script's responsibility.
type endpoint struct {
	rt        *Runtime
	callbacks *lua.LTable
}

var _ sim.Protocol = (*endpoint)(nil)

func (e *endpoint) Init(ctx sim.SystemContext) {
	e.call("init", ctx)
}

func (e *endpoint) OnPacket(ctx sim.SystemContext, pkt sim.Packet) {
	e.call("on_packet", ctx, packetToLua(e.rt.state, pkt))
}

func (e *endpoint) OnTimer(ctx sim.SystemContext, timerID uint32) {
	e.call("on_timer", ctx, lua.LNumber(timerID))
}

func (e *endpoint) OnAppData(ctx sim.SystemContext, data []byte) {
	e.call("on_app_data", ctx, lua.LString(data))
}

// call invokes the named callback if the script defines it. Script errors
// are logged, not fatal: a buggy protocol should fail its assertions, not
// crash the harness.
func (e *endpoint) call(name string, ctx sim.SystemContext, args ...lua.LValue) {
	fn := e.rt.state.GetField(e.callbacks, name)
	if fn == lua.LNil {
		return
	}
	callArgs := make([]lua.LValue, 0, len(args)+1)
	callArgs = append(callArgs, wrapContext(e.rt.state, ctx))
	callArgs = append(callArgs, args...)
	if err := e.rt.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, callArgs...); err != nil {
		logrus.Errorf("lua callback %s: %v", name, err)
	}
}
