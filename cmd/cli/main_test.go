package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestShowLedger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ledger/2024-03" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"month":"2024-03","invoice_total":"550","share_eu":"275","share_dinda":"275","balance_eu":"65","balance_dinda":"-65","pending_count":2}`))
	}))
	defer server.Close()

	baseURL = server.URL

	out := captureOutput(t, func() {
		showLedger("2024-03")
	})

	if !strings.Contains(out, "2024-03") || !strings.Contains(out, "550") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "balance eu") {
		t.Fatalf("expected balance line, got %q", out)
	}
}

func TestImportInvoice(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/imports" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		received, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reference_month":"2024-03","created":1,"merged":0,"skipped":0,"noise":0,"projected":2,"failed":0}`))
	}))
	defer server.Close()

	baseURL = server.URL

	payload := `{"reference_month":"2024-03","candidates":[{"date":"2024-03-05","description":"NETFLIX.COM","amount":"29.90"}]}`
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	out := captureOutput(t, func() {
		importInvoice(path)
	})

	if string(received) != payload {
		t.Fatalf("expected payload forwarded verbatim, got %q", string(received))
	}
	if !strings.Contains(out, "created:   1") {
		t.Fatalf("unexpected output: %q", out)
	}
}
