package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	expected := []string{"auth", "sync", "push", "films", "pending", "rate", "serve", "config"}
	for _, name := range expected {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseRating(t *testing.T) {
	if _, err := parseRating("abc"); err == nil {
		t.Error("expected an error for a non-numeric rating")
	}
	if _, err := parseRating("0"); err == nil {
		t.Error("expected an error for rating 0")
	}
	if _, err := parseRating("11"); err == nil {
		t.Error("expected an error for rating 11")
	}
	value, err := parseRating("7")
	if err != nil || value != 7 {
		t.Errorf("parseRating(7) = %d, %v", value, err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "--path", target})

	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(data), "[trakt]") {
		t.Fatalf("sample missing trakt section:\n%s", data)
	}

	// A second run without --overwrite refuses to clobber the file.
	root = newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "--path", target})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error when the file already exists")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	rendered := renderTable(
		[]string{"A", "B"},
		[][]string{{"only"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	if !strings.Contains(rendered, "only") {
		t.Fatalf("row content missing:\n%s", rendered)
	}
}
