package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kuncheriajose/firehawk-frontend/internal/export"
)

const dataset = `[
  {"id":"1","name":"ford torino","mpg":17,"cylinders":8},
  {"id":"2","name":"chevrolet vega","mpg":28,"cylinders":4},
  {"id":"3","name":"ford pinto","mpg":25,"cylinders":4},
  {"id":"4","name":"amc gremlin","mpg":21,"cylinders":6}
]`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cars.json")
	if err := os.WriteFile(path, []byte(dataset), 0644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOptionsCmd(t *testing.T) {
	out, err := run(t, "options", "--input", writeDataset(t))
	if err != nil {
		t.Fatalf("options error = %v", err)
	}
	if !strings.Contains(out, "makes (3): amc, chevrolet, ford") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "cylinders (3): 4, 6, 8") {
		t.Errorf("output = %q", out)
	}
}

func TestColumnsCmd(t *testing.T) {
	out, err := run(t, "columns", "-i", writeDataset(t))
	if err != nil {
		t.Fatalf("columns error = %v", err)
	}
	if !strings.Contains(out, "schema: autompg (Auto MPG)") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, " 1. name") {
		t.Errorf("first column missing: %q", out)
	}
}

func TestExportCmd(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "export", "-i", writeDataset(t), "--out", dir, "--make", "ford", "--sort", "mpg", "--desc")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "exported 2 of 4 records") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, export.Filename(export.DefaultBaseName, time.Now())))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	want := "name,mpg,cylinders,id\r\nford pinto,25,4,3\r\nford torino,17,8,1\r\n"
	if string(data) != want {
		t.Errorf("export = %q, want %q", data, want)
	}
}

func TestCommands_RequireInput(t *testing.T) {
	for _, name := range []string{"options", "columns", "export", "publish"} {
		if _, err := run(t, name); err == nil {
			t.Errorf("%s without --input should fail", name)
		}
	}
}
