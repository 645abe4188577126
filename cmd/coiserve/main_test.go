package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ericselin/coiserve"
)

func TestDefaults(t *testing.T) {
	opts, err := parseFlags("coiserve", nil)
	if err != nil {
		t.Fatal(err)
	}
	config, err := opts.serverConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != coiserve.DefaultPort || config.Root != coiserve.DefaultRoot || config.Host != "" {
		t.Fatalf("Config is %+v", config)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "coiserve.yaml")
	if err := os.WriteFile(filename, []byte("port: 9000\nroot: ./public\nhost: 127.0.0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := parseFlags("coiserve", []string{"-config", filename, "-port", "9100"})
	if err != nil {
		t.Fatal(err)
	}
	config, err := opts.serverConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != 9100 {
		t.Fatalf("Port is %d", config.Port)
	}
	if config.Root != "./public" {
		t.Fatalf("Root is %s", config.Root)
	}
	if config.Host != "127.0.0.1" {
		t.Fatalf("Host is %s", config.Host)
	}
}

func TestMissingConfigFile(t *testing.T) {
	opts, err := parseFlags("coiserve", []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := opts.serverConfig(); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestUnknownFlag(t *testing.T) {
	if _, err := parseFlags("coiserve", []string{"-nope"}); err == nil {
		t.Fatal("Expected error for unknown flag")
	}
}
