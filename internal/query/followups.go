package query

// maxFollowUps caps how many clarifying questions a single response carries.
const maxFollowUps = 2

// minUnknownFacets is how many core facets must be unknown before clarifying
// questions are worth asking at all.
const minUnknownFacets = 2

// Follow-up prompts in fixed priority order.
const (
	promptDates           = "When are you planning to travel, and for how long?"
	promptBudget          = "What budget do you have in mind, roughly per day or in total?"
	promptDestinationType = "What kind of destination appeals to you: beach, mountains, city, countryside?"
	promptGroupSize       = "How many people are travelling, and who's coming along?"
	promptActivities      = "What would you like to do on this trip: relaxing, sightseeing, adventure?"
)

// buildFollowUps decides whether clarifying questions are warranted. If at
// least minUnknownFacets of the four core facets (travel window, budget,
// destination type, traveler info) are unknown, it returns up to maxFollowUps
// prompts drawn from the fixed priority order; otherwise none.
func buildFollowUps(a *Analysis) []string {
	unknown := 0
	if !a.Window.Known() {
		unknown++
	}
	if !a.Budget.Stated() {
		unknown++
	}
	if !a.Destination.Known() {
		unknown++
	}
	if !a.Travelers.Known() {
		unknown++
	}

	if unknown < minUnknownFacets {
		return []string{}
	}

	prompts := make([]string, 0, maxFollowUps)
	add := func(missing bool, prompt string) {
		if missing && len(prompts) < maxFollowUps {
			prompts = append(prompts, prompt)
		}
	}

	add(!a.Window.Known(), promptDates)
	add(!a.Budget.Stated(), promptBudget)
	add(!a.Destination.Known(), promptDestinationType)
	add(!a.Travelers.Known(), promptGroupSize)
	add(len(a.Activities) == 0, promptActivities)

	return prompts
}
