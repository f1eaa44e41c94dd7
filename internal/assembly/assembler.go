// Package assembly renders ranked retrieval results into a bounded,
// deterministic text context for downstream generation.
package assembly

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/ranking"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// Limits bounds the assembled context.
type Limits struct {
	// MaxChars caps the whole context. Truncation happens on a line
	// boundary and is flagged with TruncationMarker.
	MaxChars int

	// MaxFieldChars caps any single free-text field, clipped on a word
	// boundary.
	MaxFieldChars int

	MaxDestinations             int
	MaxPropertiesPerDestination int
}

// DefaultLimits returns the standard context bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxChars:                    8000,
		MaxFieldChars:               280,
		MaxDestinations:             8,
		MaxPropertiesPerDestination: 4,
	}
}

// TruncationMarker is appended when the context had to be cut short.
const TruncationMarker = "[context truncated]"

// Input carries everything one context is built from.
type Input struct {
	Analysis     *query.Analysis
	Profile      *preferences.Snapshot
	User         *storage.User
	Destinations []ranking.Ranked
	Properties   []ranking.Ranked
	Categories   []ranking.Ranked
	Amenities    []ranking.Ranked
	Degraded     bool
}

// Assembler builds generation contexts. Identical inputs always produce
// byte-identical output.
type Assembler struct {
	limits Limits
}

// NewAssembler creates an assembler with the given limits, falling back to
// defaults for non-positive values.
func NewAssembler(limits Limits) *Assembler {
	def := DefaultLimits()
	if limits.MaxChars <= 0 {
		limits.MaxChars = def.MaxChars
	}
	if limits.MaxFieldChars <= 0 {
		limits.MaxFieldChars = def.MaxFieldChars
	}
	if limits.MaxDestinations <= 0 {
		limits.MaxDestinations = def.MaxDestinations
	}
	if limits.MaxPropertiesPerDestination <= 0 {
		limits.MaxPropertiesPerDestination = def.MaxPropertiesPerDestination
	}
	return &Assembler{limits: limits}
}

// Build renders the context. Sections appear in a fixed order regardless of
// which of them are empty; empty sections are skipped entirely.
func (a *Assembler) Build(in Input) string {
	var b strings.Builder

	a.writeFraming(&b, in.Degraded)
	a.writeUserProfile(&b, in)
	a.writeQueryFacets(&b, in.Analysis)
	nested := a.writeDestinations(&b, in)
	a.writeStandaloneProperties(&b, in.Properties, nested)
	a.writeAmenities(&b, in.Amenities, in.Categories)
	a.writeSeasonalNotes(&b, in)
	a.writeGuidelines(&b)

	return truncateAtLine(b.String(), a.limits.MaxChars)
}

func (a *Assembler) writeFraming(b *strings.Builder, degraded bool) {
	b.WriteString("You are a travel planning assistant. Ground every recommendation in the\n")
	b.WriteString("candidate information below; do not invent destinations or properties.\n")
	if degraded {
		b.WriteString("Candidates are ordered by semantic match only; personalized ranking was unavailable.\n")
	}
	b.WriteString("\n")
}

func (a *Assembler) writeUserProfile(b *strings.Builder, in Input) {
	if in.User == nil && in.Profile.Empty() {
		return
	}
	b.WriteString("## Traveler profile\n")
	if in.User != nil {
		fmt.Fprintf(b, "Name: %s\n", clipWords(in.User.Name, a.limits.MaxFieldChars))
		if in.User.StatedBudget > 0 {
			fmt.Fprintf(b, "Stated budget: %.0f per day\n", in.User.StatedBudget)
		}
		if len(in.User.StatedInterests) > 0 {
			fmt.Fprintf(b, "Stated interests: %s\n", strings.Join(in.User.StatedInterests, ", "))
		}
	}
	if !in.Profile.Empty() {
		writeWeightLine(b, "Learned destination preferences", in.Profile.DestinationTypes)
		writeWeightLine(b, "Learned climate preferences", in.Profile.Climates)
		writeWeightLine(b, "Learned activity preferences", in.Profile.Activities)
		writeWeightLine(b, "Learned amenity preferences", in.Profile.Amenities)
		if in.Profile.Budget.Known {
			fmt.Fprintf(b, "Typical daily budget: %.0f (range %.0f to %.0f)\n",
				in.Profile.Budget.Median, in.Profile.Budget.Min, in.Profile.Budget.Max)
		}
	}
	b.WriteString("\n")
}

// writeWeightLine renders a preference map as "key (0.80), key (1.00)" in
// descending weight order, ties broken alphabetically for determinism.
func writeWeightLine(b *strings.Builder, label string, weights map[string]float64) {
	if len(weights) == 0 {
		return
	}
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if weights[keys[i]] != weights[keys[j]] {
			return weights[keys[i]] > weights[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s (%.2f)", k, weights[k]))
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(parts, ", "))
}

func (a *Assembler) writeQueryFacets(b *strings.Builder, an *query.Analysis) {
	if an == nil {
		return
	}
	b.WriteString("## Trip requirements\n")

	if an.Window.Known() {
		var parts []string
		if an.Window.Start != nil {
			parts = append(parts, "from "+an.Window.Start.Format("2006-01-02"))
		}
		if an.Window.End != nil {
			parts = append(parts, "to "+an.Window.End.Format("2006-01-02"))
		}
		if an.Window.Season != "" {
			parts = append(parts, an.Window.Season+" season")
		}
		if an.Window.DurationDays > 0 {
			parts = append(parts, fmt.Sprintf("%d days", an.Window.DurationDays))
		}
		fmt.Fprintf(b, "Dates: %s\n", strings.Join(parts, ", "))
	} else {
		b.WriteString("Dates: not specified\n")
	}

	if an.Budget.Stated() {
		var parts []string
		if an.Budget.MaxPerDay > 0 {
			parts = append(parts, fmt.Sprintf("up to %.0f %s per day", an.Budget.MaxPerDay, an.Budget.Currency))
		}
		if an.Budget.Total > 0 {
			parts = append(parts, fmt.Sprintf("%.0f %s total", an.Budget.Total, an.Budget.Currency))
		}
		if an.Budget.Tier != "" {
			parts = append(parts, an.Budget.Tier+" tier")
		}
		fmt.Fprintf(b, "Budget: %s\n", strings.Join(parts, ", "))
	} else {
		b.WriteString("Budget: not specified\n")
	}

	if an.Destination.Known() {
		var parts []string
		parts = append(parts, an.Destination.Types...)
		parts = append(parts, an.Destination.Climates...)
		parts = append(parts, an.Destination.Named...)
		fmt.Fprintf(b, "Destination preferences: %s\n", strings.Join(parts, ", "))
	}
	if len(an.Destination.Exclusions) > 0 {
		fmt.Fprintf(b, "Avoid: %s\n", strings.Join(an.Destination.Exclusions, ", "))
	}
	if an.Travelers.Known() {
		var parts []string
		if an.Travelers.GroupSize > 0 {
			parts = append(parts, fmt.Sprintf("%d travelers", an.Travelers.GroupSize))
		}
		parts = append(parts, an.Travelers.Types...)
		parts = append(parts, an.Travelers.SpecialNeeds...)
		fmt.Fprintf(b, "Group: %s\n", strings.Join(parts, ", "))
	}
	if len(an.Activities) > 0 {
		fmt.Fprintf(b, "Activities: %s\n", strings.Join(an.Activities, ", "))
	}
	if len(an.Amenities) > 0 {
		fmt.Fprintf(b, "Required amenities: %s\n", strings.Join(an.Amenities, ", "))
	}
	if an.Urgency != "" {
		fmt.Fprintf(b, "Urgency: %s\n", an.Urgency)
	}
	b.WriteString("\n")
}

// writeDestinations renders ranked destinations with their matched
// properties nested underneath. It returns the IDs of properties that were
// nested so the standalone section can skip them.
func (a *Assembler) writeDestinations(b *strings.Builder, in Input) map[uuid.UUID]bool {
	nested := map[uuid.UUID]bool{}
	if len(in.Destinations) == 0 {
		return nested
	}

	byParent := map[uuid.UUID][]ranking.Ranked{}
	for _, p := range in.Properties {
		if p.Entity.ParentID != uuid.Nil {
			byParent[p.Entity.ParentID] = append(byParent[p.Entity.ParentID], p)
		}
	}

	b.WriteString("## Matched destinations\n")
	count := in.Destinations
	if len(count) > a.limits.MaxDestinations {
		count = count[:a.limits.MaxDestinations]
	}
	for i, d := range count {
		fmt.Fprintf(b, "%d. %s", i+1, d.Entity.Name)
		if d.Entity.Region != "" {
			fmt.Fprintf(b, " (%s)", d.Entity.Region)
		}
		fmt.Fprintf(b, " [match: %s]\n", d.Label)
		if d.Entity.Description != "" {
			fmt.Fprintf(b, "   %s\n", clipWords(d.Entity.Description, a.limits.MaxFieldChars))
		}
		var details []string
		if d.Entity.Climate != "" {
			details = append(details, "climate: "+d.Entity.Climate)
		}
		if len(d.Entity.BestSeasons) > 0 {
			details = append(details, "best seasons: "+strings.Join(d.Entity.BestSeasons, ", "))
		}
		if d.Entity.DailyCost > 0 {
			details = append(details, fmt.Sprintf("approx. %.0f per day", d.Entity.DailyCost))
		}
		if len(details) > 0 {
			fmt.Fprintf(b, "   %s\n", strings.Join(details, "; "))
		}

		props := byParent[d.Entity.ID]
		if len(props) > a.limits.MaxPropertiesPerDestination {
			props = props[:a.limits.MaxPropertiesPerDestination]
		}
		for _, p := range props {
			nested[p.Entity.ID] = true
			fmt.Fprintf(b, "   - Stay: %s", p.Entity.Name)
			if p.Entity.StarRating > 0 {
				fmt.Fprintf(b, " (%.1f stars)", p.Entity.StarRating)
			}
			if p.Entity.DailyCost > 0 {
				fmt.Fprintf(b, ", %.0f per night", p.Entity.DailyCost)
			}
			fmt.Fprintf(b, " [match: %s]\n", p.Label)
		}
	}
	b.WriteString("\n")
	return nested
}

func (a *Assembler) writeStandaloneProperties(b *strings.Builder, props []ranking.Ranked, nested map[uuid.UUID]bool) {
	remaining := make([]ranking.Ranked, 0, len(props))
	for _, p := range props {
		if !nested[p.Entity.ID] {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == 0 {
		return
	}

	b.WriteString("## Other matched stays\n")
	for _, p := range remaining {
		fmt.Fprintf(b, "- %s", p.Entity.Name)
		if p.Entity.Category != "" {
			fmt.Fprintf(b, " (%s)", p.Entity.Category)
		}
		if p.Entity.StarRating > 0 {
			fmt.Fprintf(b, ", %.1f stars", p.Entity.StarRating)
		}
		if p.Entity.DailyCost > 0 {
			fmt.Fprintf(b, ", %.0f per night", p.Entity.DailyCost)
		}
		fmt.Fprintf(b, " [match: %s]\n", p.Label)
		if p.Entity.Description != "" {
			fmt.Fprintf(b, "  %s\n", clipWords(p.Entity.Description, a.limits.MaxFieldChars))
		}
	}
	b.WriteString("\n")
}

// writeAmenities groups matched amenities under their categories, with
// category groups in alphabetical order for determinism.
func (a *Assembler) writeAmenities(b *strings.Builder, amenities, categories []ranking.Ranked) {
	if len(amenities) == 0 && len(categories) == 0 {
		return
	}
	b.WriteString("## Matched amenities\n")

	grouped := map[string][]string{}
	for _, am := range amenities {
		cat := am.Entity.Category
		if cat == "" {
			cat = "general"
		}
		grouped[cat] = append(grouped[cat], am.Entity.Name)
	}
	cats := make([]string, 0, len(grouped))
	for c := range grouped {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(b, "%s: %s\n", c, strings.Join(grouped[c], ", "))
	}

	if len(categories) > 0 {
		names := make([]string, 0, len(categories))
		for _, c := range categories {
			names = append(names, c.Entity.Name)
		}
		fmt.Fprintf(b, "Relevant property categories: %s\n", strings.Join(names, ", "))
	}
	b.WriteString("\n")
}

// writeSeasonalNotes flags destinations whose best seasons miss the stated
// travel season.
func (a *Assembler) writeSeasonalNotes(b *strings.Builder, in Input) {
	if in.Analysis == nil || in.Analysis.Window.Season == "" {
		return
	}
	season := strings.ToLower(in.Analysis.Window.Season)

	var notes []string
	for _, d := range in.Destinations {
		if len(d.Entity.BestSeasons) == 0 {
			continue
		}
		match := false
		for _, s := range d.Entity.BestSeasons {
			if strings.ToLower(s) == season {
				match = true
				break
			}
		}
		if !match {
			notes = append(notes, fmt.Sprintf("%s is best visited in %s, not %s",
				d.Entity.Name, strings.Join(d.Entity.BestSeasons, "/"), season))
		}
	}
	if len(notes) == 0 {
		return
	}
	b.WriteString("## Seasonal notes\n")
	for _, n := range notes {
		fmt.Fprintf(b, "- %s\n", n)
	}
	b.WriteString("\n")
}

func (a *Assembler) writeGuidelines(b *strings.Builder) {
	b.WriteString("## Guidelines\n")
	b.WriteString("Recommend at most three destinations, each with one or two stays.\n")
	b.WriteString("Explain why each pick fits the stated requirements and preferences.\n")
	b.WriteString("Mention seasonal caveats and budget fit where relevant.\n")
}

// clipWords bounds s to max bytes, cutting at the last word boundary that
// fits and appending an ellipsis. The cut never splits a rune.
func clipWords(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := cutRuneSafe(s, max)
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;.") + "..."
}

// truncateAtLine bounds s to max bytes. The cut lands on the last complete
// line that fits together with the truncation marker, so the output never
// ends mid-sentence.
func truncateAtLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	budget := max - len(TruncationMarker) - 1
	if budget < 0 {
		return TruncationMarker[:max]
	}
	cut := cutRuneSafe(s, budget)
	if idx := strings.LastIndexByte(cut, '\n'); idx >= 0 {
		cut = cut[:idx+1]
	}
	return cut + TruncationMarker
}

// cutRuneSafe slices s to at most max bytes, backing off to the nearest rune
// boundary so the result stays valid UTF-8.
func cutRuneSafe(s string, max int) string {
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
