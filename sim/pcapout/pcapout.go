// Package pcapout renders a run's packet journal as a classic pcap file
// so channel traffic can be inspected in Wireshark or tcpdump.
//
// The capture point is the receiving NIC: packets the channel dropped
// never appear, and frames are ordered by arrival time, so reordering
// caused by variable latency shows up exactly as the receiver saw it.
// Endpoints get fixed synthetic addresses (10.0.0.1 for the sender,
// 10.0.0.2 for the receiver) and timestamps start at the Unix epoch, so
// two identical runs produce byte-identical files.
package pcapout

import (
	"fmt"
	"net"
	"os"
	"sort"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/rdtlab/rdtlab/sim"
)

const snapLen = 65536

// Fallback ports for packets whose headers carry none.
const (
	senderPort   = 5001
	receiverPort = 5002
)

var (
	endpointIP = map[sim.Endpoint]net.IP{
		sim.Sender:   net.IPv4(10, 0, 0, 1),
		sim.Receiver: net.IPv4(10, 0, 0, 2),
	}
	endpointMAC = map[sim.Endpoint]net.HardwareAddr{
		sim.Sender:   {0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		sim.Receiver: {0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
	}
)

// WriteFile writes every delivered journal entry to filename as an
// Ethernet/IPv4/TCP frame.
func WriteFile(filename string, journal []sim.JournalEntry) error {
	entries := make([]sim.JournalEntry, 0, len(journal))
	for _, e := range journal {
		if e.Outcome.Delivered() {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time+entries[i].Latency < entries[j].Time+entries[j].Latency
	})

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating pcap file: %w", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		return fmt.Errorf("writing pcap header: %w", err)
	}

	base := time.Unix(0, 0).UTC()
	for _, e := range entries {
		data, err := frame(e)
		if err != nil {
			return fmt.Errorf("serializing packet sent at %dms: %w", e.Time, err)
		}
		ci := gopacket.CaptureInfo{
			Timestamp:     base.Add(time.Duration(e.Time+e.Latency) * time.Millisecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			return fmt.Errorf("writing packet sent at %dms: %w", e.Time, err)
		}
	}
	return nil
}

// frame builds a well-formed Ethernet/IPv4/TCP frame for one entry.
// Checksums are recomputed for the synthetic stack; the protocol's own
// checksum outcome is recorded in the report's link events.
func frame(e sim.JournalEntry) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       endpointMAC[e.From],
		DstMAC:       endpointMAC[e.To],
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    endpointIP[e.From],
		DstIP:    endpointIP[e.To],
	}
	hdr := e.Packet.Header
	srcPort, dstPort := ports(e)
	tcp := layers.TCP{
		SrcPort: srcPort,
		DstPort: dstPort,
		Seq:     hdr.SeqNum,
		Ack:     hdr.AckNum,
		FIN:     hdr.Flags&sim.FlagFIN != 0,
		SYN:     hdr.Flags&sim.FlagSYN != 0,
		RST:     hdr.Flags&sim.FlagRST != 0,
		PSH:     hdr.Flags&sim.FlagPSH != 0,
		ACK:     hdr.Flags&sim.FlagACK != 0,
		URG:     hdr.Flags&sim.FlagURG != 0,
		Window:  hdr.WindowSize,
		Urgent:  hdr.UrgentPtr,
	}
	if err := tcp.SetNetworkLayerForChecksum(&ip); err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &ip, &tcp, gopacket.Payload(e.Packet.Payload)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ports(e sim.JournalEntry) (src, dst layers.TCPPort) {
	src = layers.TCPPort(e.Packet.Header.SrcPort)
	dst = layers.TCPPort(e.Packet.Header.DstPort)
	if src == 0 {
		if e.From == sim.Sender {
			src = senderPort
		} else {
			src = receiverPort
		}
	}
	if dst == 0 {
		if e.To == sim.Receiver {
			dst = receiverPort
		} else {
			dst = senderPort
		}
	}
	return src, dst
}
