package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/ranking"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/pkg/engine"
)

// newQueryCmd creates the query subcommand.
func newQueryCmd() *cobra.Command {
	var (
		userIDStr   string
		showContext bool
		explain     bool
	)

	cmd := &cobra.Command{
		Use:   "query <message>",
		Short: "Run a travel query through the recommendation pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			userID := uuid.Nil
			if userIDStr != "" {
				parsed, err := uuid.Parse(userIDStr)
				if err != nil {
					return fmt.Errorf("invalid --user id: %w", err)
				}
				userID = parsed
			}

			ctx := context.Background()
			ui := NewUI(outputJSON)

			ui.StartSpinner("Building engine")
			deps, err := buildEngine(ctx)
			ui.StopSpinner()
			if err != nil {
				return err
			}
			defer deps.close()

			ui.StartSpinner("Running recommendation pipeline")
			resp, err := deps.engine.Recommend(ctx, engine.RecommendRequest{
				UserID:  userID,
				Message: message,
			})
			ui.StopSpinner()
			if err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			printResults(ui, deps, resp, showContext, explain)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userIDStr, "user", "u", "", "user id for personalization and tracking")
	cmd.Flags().BoolVar(&showContext, "context", false, "print the assembled generation context")
	cmd.Flags().BoolVar(&explain, "explain", false, "print per-criterion score factors")
	return cmd
}

func printResults(ui *UI, deps *runtimeDeps, resp *engine.RecommendResponse, showContext, explain bool) {
	if resp.Degraded {
		ui.Warning("Personalized ranking unavailable, results ordered by similarity only")
	}

	printGroup(ui, deps, "Destinations", resp.Destinations, explain)
	printGroup(ui, deps, "Properties", resp.Properties, explain)
	printGroup(ui, deps, "Amenities", resp.Amenities, explain)

	if len(resp.FollowUps) > 0 {
		ui.Heading("Worth asking")
		for _, q := range resp.FollowUps {
			fmt.Printf("  ? %s\n", q)
		}
		fmt.Println()
	}

	if showContext {
		ui.Heading("Assembled context")
		fmt.Println(resp.Context)
	}
}

func printGroup(ui *UI, deps *runtimeDeps, title string, ranked []ranking.Ranked, explain bool) {
	if len(ranked) == 0 {
		return
	}
	ui.Heading(title)
	for i, r := range ranked {
		fmt.Printf("  %d. %-28s %.3f (%s)\n", i+1, r.Entity.Name, r.Composite, r.Label)
		if explain {
			for _, f := range deps.engine.Explain(r).Factors {
				fmt.Printf("       %-22s %.2f x %.2f (%s)\n", f.Name, f.Score, f.Weight, f.Label)
			}
		}
	}
	fmt.Println()
}
