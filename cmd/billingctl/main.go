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
		Use:   "billingctl",
		Short: "Billing core CLI tool",
		Long:  `A command line interface for interacting with the billing API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the billing API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Summary
	var windowDays int
	summaryCmd := &cobra.Command{
		Use:   "summary <tenant-id>",
		Short: "Show reconciled billing totals for a tenant",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/tenants/%s/summary?window_days=%d", args[0], windowDays)
			get(path)
		},
	}
	summaryCmd.Flags().IntVar(&windowDays, "window-days", 30, "Summary window in days")
	rootCmd.AddCommand(summaryCmd)

	// Alerts
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Billing alert operations",
	}
	alertsCmd.AddCommand(&cobra.Command{
		Use:   "list <tenant-id>",
		Short: "List a tenant's open alerts",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/tenants/%s/alerts", args[0]))
		},
	})
	alertsCmd.AddCommand(&cobra.Command{
		Use:   "resolve <tenant-id> <alert-id>",
		Short: "Resolve an open alert",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			post(fmt.Sprintf("/api/v1/tenants/%s/alerts/%s/resolve", args[0], args[1]), nil)
		},
	})
	rootCmd.AddCommand(alertsCmd)

	// Dunning
	dunningCmd := &cobra.Command{
		Use:   "dunning",
		Short: "Dunning operations",
	}
	dunningCmd.AddCommand(&cobra.Command{
		Use:   "list <tenant-id> <invoice-id>",
		Short: "List the dunning sequence for an invoice",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/tenants/%s/invoices/%s/dunning", args[0], args[1]))
		},
	})
	var pendingLimit int
	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending dunning events",
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/dunning/pending?limit=%d", pendingLimit))
		},
	}
	pendingCmd.Flags().IntVar(&pendingLimit, "limit", 50, "Maximum number of events to list")
	dunningCmd.AddCommand(pendingCmd)
	dunningCmd.AddCommand(&cobra.Command{
		Use:   "sent <event-id>",
		Short: "Mark a dunning event as sent",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post(fmt.Sprintf("/api/v1/dunning/%s/sent", args[0]), nil)
		},
	})
	dunningCmd.AddCommand(&cobra.Command{
		Use:   "failed <event-id>",
		Short: "Mark a dunning event as failed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post(fmt.Sprintf("/api/v1/dunning/%s/failed", args[0]), nil)
		},
	})
	rootCmd.AddCommand(dunningCmd)

	// Reconciliation
	var reason string
	failedCmd := &cobra.Command{
		Use:   "payment-failed <tenant-id> <invoice-id>",
		Short: "Report a failed invoice payment",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]string{"reason": reason}
			post(fmt.Sprintf("/api/v1/tenants/%s/invoices/%s/payment-failed", args[0], args[1]), body)
		},
	}
	failedCmd.Flags().StringVar(&reason, "reason", "", "Failure reason")
	rootCmd.AddCommand(failedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func post(path string, body any) {
	client := &http.Client{Timeout: timeout}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(raw)
	}

	resp, err := client.Post(baseURL+path, "application/json", reader)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}
