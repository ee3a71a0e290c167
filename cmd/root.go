package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rdtlab/rdtlab/sim"
	"github.com/rdtlab/rdtlab/sim/luaproto"
	"github.com/rdtlab/rdtlab/sim/pcapout"
	"github.com/rdtlab/rdtlab/sim/rdt"
	"github.com/rdtlab/rdtlab/sim/trace"
)

var (
	logLevel string // Log verbosity level

	// CLI flags for protocol selection
	protocolName string // Built-in protocol pair
	luaScript    string // Lua protocol script, wins over protocolName

	// CLI flags for the channel
	lossRate    float64 // Per-packet loss probability
	corruptRate float64 // Per-packet corruption probability
	minLatency  uint64  // Minimum one-way latency (ms)
	maxLatency  uint64  // Maximum one-way latency (ms)
	seed        uint64  // Channel RNG seed

	// CLI flags for the scripted run
	sends    []string // TIME:DATA application sends
	dropSeqs []uint   // Deterministic sender-packet drops
	dropAcks []uint   // Deterministic receiver-ACK drops

	// CLI flags for file-driven input
	sendFile     string // Data file chunked into application sends
	chunkSize    int    // Chunk size in bytes for sendFile
	sendInterval uint64 // Virtual ms between file chunks

	// CLI flags for outputs
	reportPath  string // Report destination (.json or .yaml)
	pcapPath    string // Packet capture destination
	showSummary bool   // Print a YAML summary to stdout
)

var defaultSends = []string{"1000:Packet 1", "2000:Packet 2", "3000:Packet 3"}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "rdtlab",
	Short: "Deterministic simulator for reliable data transfer protocols",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a protocol pair over the fault-injecting channel",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg := sim.Config{
			LossRate:    lossRate,
			CorruptRate: corruptRate,
			MinLatency:  minLatency,
			MaxLatency:  maxLatency,
			Seed:        seed,
		}
		sender, receiver, cleanup, err := resolveProtocols()
		if err != nil {
			logrus.Fatalf("resolving protocol: %v", err)
		}
		defer cleanup()

		s, err := sim.NewSimulator(cfg, sender, receiver)
		if err != nil {
			logrus.Fatalf("building simulator: %v", err)
		}
		if err := scheduleInputs(s); err != nil {
			logrus.Fatalf("%v", err)
		}
		for _, v := range dropSeqs {
			s.DropNextSenderSeq(uint32(v))
		}
		for _, v := range dropAcks {
			s.DropNextReceiverAck(uint32(v))
		}

		startTime := time.Now()
		s.RunUntilComplete()
		report := s.Report()
		logrus.Infof("run complete: %dms virtual time, %d sender packets, %d chunks delivered (wall %s)",
			report.DurationMS, report.SenderPacketCount, len(report.DeliveredData),
			time.Since(startTime).Round(time.Millisecond))

		if reportPath != "" {
			if err := trace.WriteFile(reportPath, report); err != nil {
				logrus.Fatalf("writing report: %v", err)
			}
			logrus.Infof("report written to %s", reportPath)
		}
		if pcapPath != "" {
			if err := pcapout.WriteFile(pcapPath, s.Journal); err != nil {
				logrus.Fatalf("writing pcap: %v", err)
			}
			logrus.Infof("pcap written to %s", pcapPath)
		}
		if showSummary {
			out, err := yaml.Marshal(trace.Summarize(report))
			if err != nil {
				logrus.Fatalf("rendering summary: %v", err)
			}
			fmt.Print(string(out))
		}
	},
}

// protocolsCmd lists the built-in protocol pairs
var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List built-in protocol pairs",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range rdt.Names() {
			marker := " "
			if name == rdt.DefaultProtocol {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level %q", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveProtocols builds the protocol pair from the CLI flags. The
// cleanup function releases the Lua state when a script was loaded.
func resolveProtocols() (sim.Protocol, sim.Protocol, func(), error) {
	if luaScript != "" {
		rt, err := luaproto.Load(luaScript)
		if err != nil {
			return nil, nil, nil, err
		}
		return rt.Sender(), rt.Receiver(), rt.Close, nil
	}
	sender, receiver, err := rdt.NewPair(protocolName)
	if err != nil {
		return nil, nil, nil, err
	}
	return sender, receiver, func() {}, nil
}

// scheduleInputs loads the application sends from flags onto the
// simulator. A --send-file wins over --send specs.
func scheduleInputs(s *sim.Simulator) error {
	if sendFile == "" {
		for _, spec := range sends {
			at, data, err := parseSend(spec)
			if err != nil {
				return err
			}
			s.ScheduleAppSend(at, []byte(data))
		}
		return nil
	}
	if chunkSize <= 0 {
		return fmt.Errorf("--chunk-size must be positive, got %d", chunkSize)
	}
	data, err := os.ReadFile(sendFile)
	if err != nil {
		return fmt.Errorf("reading send file: %v", err)
	}
	n := 0
	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		s.ScheduleAppSend(uint64(n+1)*sendInterval, data[off:end])
		n++
	}
	logrus.Infof("scheduled %d chunks from %s (%d bytes)", n, sendFile, len(data))
	return nil
}

func parseSend(spec string) (uint64, string, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("send %q: want TIME:DATA", spec)
	}
	at, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("send %q: bad time: %v", spec, err)
	}
	return at, parts[1], nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&protocolName, "protocol", rdt.DefaultProtocol, "Built-in protocol pair to run")
	runCmd.Flags().StringVar(&luaScript, "lua", "", "Lua protocol script (overrides --protocol)")

	// Channel configuration
	runCmd.Flags().Float64Var(&lossRate, "loss", 0.1, "Per-packet loss probability")
	runCmd.Flags().Float64Var(&corruptRate, "corrupt", 0.0, "Per-packet corruption probability")
	runCmd.Flags().Uint64Var(&minLatency, "min-latency", 100, "Minimum one-way latency in ms")
	runCmd.Flags().Uint64Var(&maxLatency, "max-latency", 500, "Maximum one-way latency in ms")
	runCmd.Flags().Uint64Var(&seed, "seed", 42, "Seed for the channel RNG")

	// Scripted inputs
	runCmd.Flags().StringArrayVar(&sends, "send", defaultSends, "Application send as TIME:DATA (repeatable)")
	runCmd.Flags().UintSliceVar(&dropSeqs, "drop-seq", nil, "Drop the next sender packet with this sequence number (repeatable)")
	runCmd.Flags().UintSliceVar(&dropAcks, "drop-ack", nil, "Drop the next receiver ACK with this acknowledgment number (repeatable)")
	runCmd.Flags().StringVar(&sendFile, "send-file", "", "Chunk this file into application sends (overrides --send)")
	runCmd.Flags().IntVar(&chunkSize, "chunk-size", 512, "Chunk size in bytes for --send-file")
	runCmd.Flags().Uint64Var(&sendInterval, "send-interval", 1000, "Virtual ms between chunks for --send-file")

	// Outputs
	runCmd.Flags().StringVar(&reportPath, "report", "", "Write the run report to this file (.json or .yaml)")
	runCmd.Flags().StringVar(&pcapPath, "pcap", "", "Write delivered packets to this pcap file")
	runCmd.Flags().BoolVar(&showSummary, "summary", false, "Print a YAML run summary to stdout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(protocolsCmd)
}
