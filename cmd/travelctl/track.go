package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/pkg/engine"
)

// newTrackCmd creates the track subcommand.
func newTrackCmd() *cobra.Command {
	var (
		userIDStr   string
		kind        string
		entityIDStr string
		destType    string
		climate     string
		propType    string
		starRating  float64
		amenity     string
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Record a user interaction into the preference profile",
		Example: `  travelctl track --user 8f14... --kind destination_view --destination-type beach --climate tropical
  travelctl track --user 8f14... --kind booking_intent --property-type resort --star-rating 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				return fmt.Errorf("invalid --user id: %w", err)
			}

			entityID := uuid.Nil
			if entityIDStr != "" {
				if entityID, err = uuid.Parse(entityIDStr); err != nil {
					return fmt.Errorf("invalid --entity id: %w", err)
				}
			}

			ctx := context.Background()
			ui := NewUI(outputJSON)

			deps, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer deps.close()

			err = deps.engine.TrackInteraction(ctx, engine.Interaction{
				UserID:          userID,
				Kind:            kind,
				EntityID:        entityID,
				DestinationType: destType,
				Climate:         climate,
				PropertyType:    propType,
				StarRating:      starRating,
				Amenity:         amenity,
			})
			if err != nil {
				return err
			}

			ui.Success("Interaction recorded: %s for user %s", kind, userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userIDStr, "user", "u", "", "user id (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "interaction kind: destination_view, property_view, amenity_interest, booking_intent")
	cmd.Flags().StringVar(&entityIDStr, "entity", "", "entity id the interaction refers to")
	cmd.Flags().StringVar(&destType, "destination-type", "", "destination type tag, e.g. beach")
	cmd.Flags().StringVar(&climate, "climate", "", "climate tag, e.g. tropical")
	cmd.Flags().StringVar(&propType, "property-type", "", "property category, e.g. resort")
	cmd.Flags().Float64Var(&starRating, "star-rating", 0, "star rating signal")
	cmd.Flags().StringVar(&amenity, "amenity", "", "amenity tag, e.g. spa")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
