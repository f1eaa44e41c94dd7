package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/embedding"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/search"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// Stable IDs so repeated CLI runs track interactions against the same
// entities.
var (
	seedBaliID     = uuid.MustParse("7b5a1c6e-0f3d-4a8e-9c21-3f5b8d0a1e01")
	seedKyotoID    = uuid.MustParse("7b5a1c6e-0f3d-4a8e-9c21-3f5b8d0a1e02")
	seedChamonixID = uuid.MustParse("7b5a1c6e-0f3d-4a8e-9c21-3f5b8d0a1e03")
	seedLisbonID   = uuid.MustParse("7b5a1c6e-0f3d-4a8e-9c21-3f5b8d0a1e04")
)

// seedSampleEntities loads a small bundled catalog into the in-memory store,
// embedding each entity's name and description on the fly.
func seedSampleEntities(ctx context.Context, store *search.MemoryStore, embedder embedding.Embedder) error {
	entities := []storage.Entity{
		{
			ID: seedBaliID, Type: storage.EntityDestination, Name: "Bali",
			Description: "Tropical island with beaches, surf breaks, rice terraces and temple culture.",
			Region:      "Indonesia", Climate: "tropical",
			Tags:        []string{"beach", "island", "surfing", "wellness"},
			BestSeasons: []string{"spring", "summer"}, Popularity: 0.92, DailyCost: 85,
		},
		{
			ID: seedKyotoID, Type: storage.EntityDestination, Name: "Kyoto",
			Description: "Historic Japanese city of temples, gardens, tea houses and autumn foliage.",
			Region:      "Japan", Climate: "temperate",
			Tags:        []string{"culture", "history", "food", "city"},
			BestSeasons: []string{"spring", "autumn"}, Popularity: 0.88, DailyCost: 140,
		},
		{
			ID: seedChamonixID, Type: storage.EntityDestination, Name: "Chamonix",
			Description: "Alpine valley town beneath Mont Blanc for skiing, mountaineering and hiking.",
			Region:      "France", Climate: "alpine",
			Tags:        []string{"mountain", "skiing", "hiking", "adventure"},
			BestSeasons: []string{"winter", "summer"}, Popularity: 0.75, DailyCost: 190,
		},
		{
			ID: seedLisbonID, Type: storage.EntityDestination, Name: "Lisbon",
			Description: "Coastal European capital with historic quarters, seafood and nearby surf beaches.",
			Region:      "Portugal", Climate: "mediterranean",
			Tags:        []string{"city", "coast", "food", "culture"},
			BestSeasons: []string{"spring", "summer", "autumn"}, Popularity: 0.81, DailyCost: 110,
		},

		{
			Type: storage.EntityProperty, Name: "Uluwatu Cliff Resort",
			Description: "Clifftop Bali resort with infinity pool, spa and direct surf beach access.",
			ParentID:    seedBaliID, Category: "resort",
			Tags:       []string{"pool", "spa", "beachfront"},
			StarRating: 5, DailyCost: 220, Capacity: 4, Popularity: 0.85,
		},
		{
			Type: storage.EntityProperty, Name: "Ubud Jungle Lodge",
			Description: "Bamboo eco lodge in the Bali jungle near rice terraces and yoga studios.",
			ParentID:    seedBaliID, Category: "eco_lodge",
			Tags:       []string{"yoga", "nature", "pool"},
			StarRating: 4, DailyCost: 95, Capacity: 2, Popularity: 0.7,
		},
		{
			Type: storage.EntityProperty, Name: "Gion Machiya House",
			Description: "Restored wooden townhouse in Kyoto's geisha district with a private garden.",
			ParentID:    seedKyotoID, Category: "guesthouse",
			Tags:       []string{"traditional", "garden", "quiet"},
			StarRating: 4, DailyCost: 180, Capacity: 4, Popularity: 0.78,
		},
		{
			Type: storage.EntityProperty, Name: "Mont Blanc Chalet",
			Description: "Ski-in ski-out chalet in Chamonix with sauna, fireplace and glacier views.",
			ParentID:    seedChamonixID, Category: "chalet",
			Tags:       []string{"ski_in_ski_out", "sauna", "fireplace"},
			StarRating: 4.5, DailyCost: 310, Capacity: 8, Popularity: 0.72,
		},
		{
			Type: storage.EntityProperty, Name: "Alfama Boutique Hotel",
			Description: "Small hotel in Lisbon's oldest quarter with rooftop terrace and river views.",
			ParentID:    seedLisbonID, Category: "boutique_hotel",
			Tags:       []string{"rooftop", "breakfast", "central"},
			StarRating: 4, DailyCost: 130, Capacity: 2, Popularity: 0.76,
		},

		{
			Type: storage.EntityCategory, Name: "resort",
			Description: "Full-service resorts with pools, restaurants and on-site activities.",
			Category:    "accommodation",
		},
		{
			Type: storage.EntityCategory, Name: "eco_lodge",
			Description: "Low-impact lodges in natural settings, often with wellness programs.",
			Category:    "accommodation",
		},
		{
			Type: storage.EntityCategory, Name: "chalet",
			Description: "Mountain chalets for ski and hiking trips, usually self-catered.",
			Category:    "accommodation",
		},

		{
			Type: storage.EntityAmenity, Name: "infinity pool",
			Description: "Outdoor infinity edge swimming pool.", Category: "wellness",
			Tags: []string{"pool", "swimming"},
		},
		{
			Type: storage.EntityAmenity, Name: "spa",
			Description: "On-site spa with massage and treatment rooms.", Category: "wellness",
			Tags: []string{"massage", "wellness"},
		},
		{
			Type: storage.EntityAmenity, Name: "ski storage",
			Description: "Heated ski and snowboard storage room.", Category: "sports",
			Tags: []string{"ski", "winter"},
		},
		{
			Type: storage.EntityAmenity, Name: "beachfront access",
			Description: "Direct private access to the beach.", Category: "location",
			Tags: []string{"beach"},
		},
		{
			Type: storage.EntityAmenity, Name: "free wifi",
			Description: "Complimentary wireless internet throughout the property.", Category: "connectivity",
			Tags: []string{"wifi", "internet"},
		},
	}

	for i := range entities {
		if entities[i].ID == uuid.Nil {
			entities[i].ID = uuid.New()
		}
		vec, err := embedder.EmbedSingle(ctx, entities[i].Name+". "+entities[i].Description)
		if err != nil {
			return fmt.Errorf("embed %q: %w", entities[i].Name, err)
		}
		entities[i].Embedding = vec
	}

	return store.Add(entities...)
}
