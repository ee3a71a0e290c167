package luaproto

import (
	"fmt"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/rdtlab/rdtlab/sim"
	"github.com/rdtlab/rdtlab/sim/rdt"
)

const contextTypeName = "rdtlab.context"

func registerContextType(L *lua.LState) {
	mt := L.NewTypeMetatable(contextTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), contextMethods))
}

var contextMethods = map[string]lua.LGFunction{
	"send_packet":   ctxSendPacket,
	"start_timer":   ctxStartTimer,
	"cancel_timer":  ctxCancelTimer,
	"deliver_data":  ctxDeliverData,
	"log":           ctxLog,
	"now":           ctxNow,
	"record_metric": ctxRecordMetric,
}

func registerGlobals(L *lua.LState) {
	L.SetGlobal("checksum", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(rdt.Checksum([]byte(L.CheckString(1)))))
		return 1
	}))
	flags := L.NewTable()
	L.SetField(flags, "FIN", lua.LNumber(sim.FlagFIN))
	L.SetField(flags, "SYN", lua.LNumber(sim.FlagSYN))
	L.SetField(flags, "RST", lua.LNumber(sim.FlagRST))
	L.SetField(flags, "PSH", lua.LNumber(sim.FlagPSH))
	L.SetField(flags, "ACK", lua.LNumber(sim.FlagACK))
	L.SetField(flags, "URG", lua.LNumber(sim.FlagURG))
	L.SetGlobal("flags", flags)
}

func wrapContext(L *lua.LState, ctx sim.SystemContext) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = ctx
	L.SetMetatable(ud, L.GetTypeMetatable(contextTypeName))
	return ud
}

func checkContext(L *lua.LState) sim.SystemContext {
	ud := L.CheckUserData(1)
	if ctx, ok := ud.Value.(sim.SystemContext); ok {
		return ctx
	}
	L.ArgError(1, "context expected")
	return nil
}

func ctxSendPacket(L *lua.LState) int {
	ctx := checkContext(L)
	pkt, err := luaToPacket(L.CheckTable(2))
	if err != nil {
		L.RaiseError("send_packet: %v", err)
		return 0
	}
	ctx.SendPacket(pkt)
	return 0
}

func ctxStartTimer(L *lua.LState) int {
	ctx := checkContext(L)
	delay := L.CheckNumber(2)
	id := L.CheckNumber(3)
	ctx.StartTimer(uint64(delay), uint32(id))
	return 0
}

func ctxCancelTimer(L *lua.LState) int {
	ctx := checkContext(L)
	ctx.CancelTimer(uint32(L.CheckNumber(2)))
	return 0
}

func ctxDeliverData(L *lua.LState) int {
	ctx := checkContext(L)
	ctx.DeliverData([]byte(L.CheckString(2)))
	return 0
}

func ctxLog(L *lua.LState) int {
	ctx := checkContext(L)
	ctx.Log(L.CheckString(2))
	return 0
}

func ctxNow(L *lua.LState) int {
	ctx := checkContext(L)
	L.Push(lua.LNumber(ctx.Now()))
	return 1
}

func ctxRecordMetric(L *lua.LState) int {
	ctx := checkContext(L)
	ctx.RecordMetric(L.CheckString(2), float64(L.CheckNumber(3)))
	return 0
}

// packetSpec mirrors the table shape scripts build for send_packet.
// gluamapper maps snake_case keys onto the CamelCase fields.
type packetSpec struct {
	SrcPort    uint16
	DstPort    uint16
	SeqNum     uint32
	AckNum     uint32
	Flags      uint8
	WindowSize uint16
	Checksum   uint16
	UrgentPtr  uint16
	Payload    string
}

func luaToPacket(tbl *lua.LTable) (sim.Packet, error) {
	var spec packetSpec
	if err := gluamapper.Map(tbl, &spec); err != nil {
		return sim.Packet{}, fmt.Errorf("bad packet table: %w", err)
	}
	pkt := sim.Packet{
		Header: sim.Header{
			SrcPort:    spec.SrcPort,
			DstPort:    spec.DstPort,
			SeqNum:     spec.SeqNum,
			AckNum:     spec.AckNum,
			Flags:      spec.Flags,
			WindowSize: spec.WindowSize,
			Checksum:   spec.Checksum,
			UrgentPtr:  spec.UrgentPtr,
		},
	}
	if spec.Payload != "" {
		pkt.Payload = []byte(spec.Payload)
	}
	return pkt, nil
}

func packetToLua(L *lua.LState, pkt sim.Packet) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "src_port", lua.LNumber(pkt.Header.SrcPort))
	L.SetField(tbl, "dst_port", lua.LNumber(pkt.Header.DstPort))
	L.SetField(tbl, "seq_num", lua.LNumber(pkt.Header.SeqNum))
	L.SetField(tbl, "ack_num", lua.LNumber(pkt.Header.AckNum))
	L.SetField(tbl, "flags", lua.LNumber(pkt.Header.Flags))
	L.SetField(tbl, "window_size", lua.LNumber(pkt.Header.WindowSize))
	L.SetField(tbl, "checksum", lua.LNumber(pkt.Header.Checksum))
	L.SetField(tbl, "urgent_ptr", lua.LNumber(pkt.Header.UrgentPtr))
	L.SetField(tbl, "payload", lua.LString(pkt.Payload))
	return tbl
}
