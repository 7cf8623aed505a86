package main

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	actual := make(map[string]bool)
	for _, cmd := range root.Commands() {
		actual[cmd.Name()] = true
	}
	for _, expected := range []string{"watch", "host", "schema"} {
		if !actual[expected] {
			t.Errorf("expected subcommand %q not found in root command", expected)
		}
	}
}

func TestWatchFlags(t *testing.T) {
	cmd := newWatchCmd()
	for _, name := range []string{"config", "prefs", "host", "plain", "offset", "debug"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("watch is missing --%s", name)
		}
	}
}

func TestHostFlags(t *testing.T) {
	cmd := newHostCmd()
	for _, name := range []string{"config", "almanac", "listen", "legacy", "debug"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("host is missing --%s", name)
		}
	}
}

func TestSchemaUsesTOMLNames(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"schema"})
	if err := root.Execute(); err != nil {
		t.Fatalf("schema returned error: %v", err)
	}

	var doc struct {
		Ref         string                     `json:"$ref"`
		Definitions map[string]json.RawMessage `json:"$defs"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("schema output is not JSON: %v", err)
	}
	var cfg struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(doc.Definitions["Config"], &cfg); err != nil {
		t.Fatalf("Config definition: %v", err)
	}
	for _, key := range []string{"host_addr", "listen", "almanac_path", "log_dir", "location", "time_zone"} {
		if _, ok := cfg.Properties[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}
