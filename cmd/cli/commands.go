package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(pairingsCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/health")
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the registered groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/groups")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the ELO leaderboard for a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/leaderboard?groupID="+url.QueryEscape(groupID))
	},
}

var pairingsCmd = &cobra.Command{
	Use:   "pairings",
	Short: "Show the pairing leaderboard for a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/pairings/leaderboard?groupID="+url.QueryEscape(groupID))
	},
}

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Trigger a pairing stats rebuild for a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/pairings/recalculate?groupID="+url.QueryEscape(groupID))
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/metrics")
	},
}

func performRequest(method, endpoint string) error {
	target := host + endpoint
	fmt.Printf("Making request to %s\n", target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
