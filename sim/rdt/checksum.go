// Package rdt provides the built-in reference protocol implementations:
// a naive fire-and-forget pair, an alternating-bit stop-and-wait pair, and
// a go-back-n pair with an adaptive window. They serve as graded baselines
// and as executable examples of the protocol contract.
package rdt

// Checksum computes the Internet checksum over data: big-endian 16-bit
// one's-complement sum with an odd trailing byte padded into the high
// octet, complemented at the end.
func Checksum(data []byte) uint16 {
	var sum uint32
	for len(data) >= 2 {
		sum += uint32(data[0])<<8 | uint32(data[1])
		data = data[2:]
	}
	if len(data) == 1 {
		sum += uint32(data[0]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xFFFF + sum>>16
	}
	return ^uint16(sum)
}
