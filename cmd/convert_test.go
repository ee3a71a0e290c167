package cmd

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rdtlab/rdtlab/sim/trace"
)

func TestConvertCmd_JSONToYAML_RoundTrips(t *testing.T) {
	oldLevel := logLevel
	defer func() { logLevel = oldLevel }()
	logLevel = "warn"

	dir := t.TempDir()
	in := filepath.Join(dir, "report.json")
	out := filepath.Join(dir, "report.yaml")
	want := sampleCmdReport()
	if err := trace.WriteFile(in, want); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	convertCmd.Run(convertCmd, []string{in, out})

	got, err := trace.ReadFile(out)
	if err != nil {
		t.Fatalf("reading converted report: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("converted report mismatch:\n got %+v\nwant %+v", got, want)
	}
}
