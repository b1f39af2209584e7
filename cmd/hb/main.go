// HiBuddy CLI - talks to the daemon's coordinator API
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hibuddy/hibuddy/internal/core"
)

var (
	serverURL string

	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hb",
		Short: "HiBuddy - caregiver command line",
		Long: `hb is the caregiver's command line for the HiBuddy daemon.

Generate a day plan from plain Korean text, review it, save it, and
watch what the follow-along screen will say.`,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "daemon address")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(tickCmd())
	rootCmd.AddCommand(recipesCmd())
	rootCmd.AddCommand(archiveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func client() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

func getJSON(path string, dst interface{}) error {
	resp, err := client().Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}
	return json.Unmarshal(body, dst)
}

func postJSON(path string, payload, dst interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client().Post(serverURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}
	if dst == nil {
		return nil
	}
	return json.Unmarshal(body, dst)
}

func apiError(status int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("%s (status %d)", e.Error, status)
	}
	return fmt.Errorf("request failed with status %d", status)
}

func printSlots(slots []core.Slot) {
	for _, slot := range slots {
		fmt.Printf("  %s  [%s]  %s\n", slot.Time, slot.Category.Label(), slot.Task)
		for _, menu := range slot.Menus {
			fmt.Printf("          - %s\n", menu.Name)
		}
	}
}

func generateCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Generate a day plan from plain text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			var draft core.ScheduleDocument
			if err := postJSON("/api/v1/schedule/generate", map[string]string{"text": text}, &draft); err != nil {
				return err
			}

			fmt.Printf("Draft for %s:\n", draft.Date)
			printSlots(draft.Slots)

			if !save {
				fmt.Println("\nRun with --save to keep this plan.")
				return nil
			}

			req, err := http.NewRequest("PUT", serverURL+"/api/v1/schedule", encodeBody(draft))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := client().Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return apiError(resp.StatusCode, body)
			}

			fmt.Println("\nSaved.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save the generated plan")
	return cmd
}

func encodeBody(v interface{}) io.Reader {
	data, _ := json.Marshal(v)
	return bytes.NewReader(data)
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc core.ScheduleDocument
			if err := getJSON("/api/v1/schedule", &doc); err != nil {
				return err
			}

			fmt.Printf("Schedule for %s:\n", doc.Date)
			if len(doc.Slots) == 0 {
				fmt.Println("  (no slots)")
				return nil
			}
			printSlots(doc.Slots)
			return nil
		},
	}
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show the follow-along view",
		RunE: func(cmd *cobra.Command, args []string) error {
			var view struct {
				Date   string     `json:"date"`
				Now    string     `json:"now"`
				Empty  bool       `json:"empty"`
				Active *core.Slot `json:"active"`
				Next   *core.Slot `json:"next"`
			}
			if err := getJSON("/api/v1/today", &view); err != nil {
				return err
			}

			fmt.Printf("%s %s\n", view.Date, view.Now)
			if view.Empty {
				fmt.Println("Schedule is empty.")
				return nil
			}
			if view.Active != nil {
				fmt.Printf("Now:  %s %s\n", view.Active.Time, view.Active.Task)
			} else {
				fmt.Println("Now:  nothing started yet")
			}
			if view.Next != nil {
				fmt.Printf("Next: %s %s\n", view.Next.Time, view.Next.Task)
			}
			return nil
		},
	}
}

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Advance the narration session one tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Narration *struct {
					Kind  string   `json:"kind"`
					Lines []string `json:"lines"`
				} `json:"narration"`
			}
			if err := postJSON("/api/v1/today/tick", map[string]string{}, &result); err != nil {
				return err
			}

			if result.Narration == nil {
				fmt.Println("(silence)")
				return nil
			}
			for _, line := range result.Narration.Lines {
				fmt.Println(line)
			}
			return nil
		},
	}
}

func recipesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List built-in recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Recipes []struct {
					Name  string   `json:"name"`
					Steps []string `json:"steps"`
				} `json:"recipes"`
			}
			if err := getJSON("/api/v1/recipes", &result); err != nil {
				return err
			}

			for _, rec := range result.Recipes {
				fmt.Println(rec.Name)
				for i, step := range rec.Steps {
					fmt.Printf("  %d. %s\n", i+1, step)
				}
			}
			return nil
		},
	}
}

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive [date]",
		Short: "List archived days, or show one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				var result struct {
					Dates []string `json:"dates"`
				}
				if err := getJSON("/api/v1/archive", &result); err != nil {
					return err
				}
				if len(result.Dates) == 0 {
					fmt.Println("No archived days yet.")
					return nil
				}
				for _, d := range result.Dates {
					fmt.Println(d)
				}
				return nil
			}

			var doc core.ScheduleDocument
			if err := getJSON("/api/v1/archive/"+args[0], &doc); err != nil {
				return err
			}
			fmt.Printf("Schedule for %s:\n", doc.Date)
			printSlots(doc.Slots)
			return nil
		},
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hb %s\n", version)
		},
	}
}
