package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "billsplit-cli",
		Short: "BillSplit CLI tool",
		Long:  `A command line interface for interacting with the BillSplit API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BillSplit API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import an extracted invoice batch from a JSON file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			importInvoice(args[0])
		},
	}

	ledgerCmd := &cobra.Command{
		Use:   "ledger [month]",
		Short: "Show the balance summary for a month (YYYY-MM)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showLedger(args[0])
		},
	}

	closeCmd := &cobra.Command{
		Use:   "close [month]",
		Short: "Snapshot both parties' final balances for a month",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			closeMonth(args[0])
		},
	}

	maintenanceCmd := &cobra.Command{
		Use:   "maintenance [month]",
		Short: "Deduplicate and backfill projections after the given month",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runMaintenance(args[0])
		},
	}

	rootCmd.AddCommand(importCmd, ledgerCmd, closeCmd, maintenanceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func importInvoice(path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	body := postJSON("/api/v1/imports", payload)

	var report map[string]any
	if err := json.Unmarshal(body, &report); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Import finished for %v\n", report["reference_month"])
	fmt.Printf("  created:   %v\n", report["created"])
	fmt.Printf("  merged:    %v\n", report["merged"])
	fmt.Printf("  skipped:   %v\n", report["skipped"])
	fmt.Printf("  noise:     %v\n", report["noise"])
	fmt.Printf("  projected: %v\n", report["projected"])
	fmt.Printf("  failed:    %v\n", report["failed"])
}

func showLedger(month string) {
	body := getJSON("/api/v1/ledger/" + month)

	var summary map[string]any
	if err := json.Unmarshal(body, &summary); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ledger for %v\n", summary["month"])
	fmt.Printf("  invoice total:  %v\n", summary["invoice_total"])
	fmt.Printf("  share eu:       %v\n", summary["share_eu"])
	fmt.Printf("  share dinda:    %v\n", summary["share_dinda"])
	fmt.Printf("  balance eu:     %v\n", summary["balance_eu"])
	fmt.Printf("  balance dinda:  %v\n", summary["balance_dinda"])
	fmt.Printf("  pending items:  %v\n", summary["pending_count"])
}

func closeMonth(month string) {
	body := postJSON("/api/v1/months/"+month+"/close", []byte("{}"))

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Month %s closed\n", month)
	if closings, ok := result["closings"].([]any); ok {
		for _, c := range closings {
			if closing, ok := c.(map[string]any); ok {
				fmt.Printf("  %v: %v\n", closing["party"], closing["final_balance"])
			}
		}
	}
}

func runMaintenance(month string) {
	payload, _ := json.Marshal(map[string]string{"reference_month": month})
	body := postJSON("/api/v1/maintenance", payload)

	var report map[string]any
	if err := json.Unmarshal(body, &report); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Maintenance finished for %v\n", report["reference_month"])
	fmt.Printf("  deduped:    %v\n", report["deduped"])
	fmt.Printf("  backfilled: %v\n", report["backfilled"])
}

func getJSON(path string) []byte {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}

func postJSON(path string, payload []byte) []byte {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}
