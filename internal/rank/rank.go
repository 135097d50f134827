package rank

// Tier thresholds are XP floors. Display-only: the completion engine never
// reads the rank back.
type Tier struct {
	Name  string
	MinXP int
}

var tiers = []Tier{
	{Name: "Master", MinXP: 500},
	{Name: "Expert", MinXP: 200},
	{Name: "Adept", MinXP: 75},
	{Name: "Apprentice", MinXP: 20},
	{Name: "Novice", MinXP: 0},
}

func ForXP(xp int) string {
	for _, t := range tiers {
		if xp >= t.MinXP {
			return t.Name
		}
	}
	return "Novice"
}
