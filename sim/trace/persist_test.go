package trace

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleReport() *Report {
	return &Report{
		Config: Config{
			LossRate:    0.1,
			CorruptRate: 0.05,
			MinLatency:  50,
			MaxLatency:  200,
			Seed:        42,
		},
		DurationMS: 3100,
		DeliveredData: [][]byte{
			[]byte("Packet 1"),
			[]byte("Packet 2"),
		},
		SenderPacketCount: 3,
		SenderWindowSizes: []uint16{4, 5, 6},
		Metrics: map[string][]MetricSample{
			"window": {
				{Time: 1000, Value: 4},
				{Time: 2000, Value: 5},
			},
		},
		LinkEvents: []LinkEvent{
			{Time: 1000, Description: "[Sender->Receiver] SEND seq=0 ack=0 (latency=100ms)"},
			{Time: 1100, Description: "[Receiver] DELIVERED 8 bytes to application"},
		},
	}
}

func TestWriteFile_ReadFile_JSONRoundTrip(t *testing.T) {
	// GIVEN a populated report written as JSON
	want := sampleReport()
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// WHEN read back
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// THEN every field survives the round trip
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-tripped report differs:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestWriteFile_ReadFile_YAMLRoundTrip(t *testing.T) {
	// GIVEN the same report written as YAML
	want := sampleReport()
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// WHEN read back
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// THEN every field survives the round trip
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-tripped report differs:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestReadFile_MissingFile_Error(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadFile_MalformedJSON_Error(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	_, err := ReadFile(path)
	if err == nil {
		t.Fatal("expected decode error for malformed JSON")
	}
}
