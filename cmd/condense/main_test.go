package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.txt")
	if err := os.WriteFile(path, []byte("You agree to everything."), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	got, err := readSource(context.Background(), []string{path}, "", logger)
	if err != nil {
		t.Fatalf("readSource: %v", err)
	}
	if got != "You agree to everything." {
		t.Errorf("got %q", got)
	}
}

func TestReadSourceFileAndURLConflict(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	_, err := readSource(context.Background(), []string{"terms.txt"}, "https://example.com", logger)
	if err == nil {
		t.Fatal("expected conflict error")
	}
}

func TestRootCmdFlagDefaults(t *testing.T) {
	cmd := rootCmd()
	if got, _ := cmd.Flags().GetInt("chunk-tokens"); got != 700 {
		t.Errorf("chunk-tokens default = %d", got)
	}
	if got, _ := cmd.Flags().GetInt("max-passes"); got != 3 {
		t.Errorf("max-passes default = %d", got)
	}
	if got, _ := cmd.Flags().GetString("model"); got == "" {
		t.Error("model default empty")
	}
}

func TestRootCmdHelp(t *testing.T) {
	cmd := rootCmd()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(out.String(), "Summarize a terms-and-conditions document") {
		t.Error("help text missing description")
	}
}
