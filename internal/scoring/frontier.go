package scoring

// FrontierCandidate projects a scored candidate onto the three dimensions
// surfaced in explanations. Higher is better on all of them.
type FrontierCandidate struct {
	MemberID string  `json:"member_id"`
	Name     string  `json:"member_name"`
	Fairness float64 `json:"fairness"`
	Breadth  float64 `json:"breadth"`
	Speed    float64 `json:"speed"`
}

// FrontierOf projects candidate scores for one task.
func FrontierOf(candidates []*CandidateScore) []FrontierCandidate {
	projected := make([]FrontierCandidate, 0, len(candidates))
	for _, c := range candidates {
		projected = append(projected, FrontierCandidate{
			MemberID: c.AgentID.String(),
			Name:     c.AgentName,
			Fairness: c.FactorRaw(FactorWorkloadFairness),
			Breadth:  c.FactorRaw(FactorSkillBreadth),
			Speed:    c.FactorRaw(FactorDeliverySpeed),
		})
	}
	return ComputeFrontier(projected)
}

// ComputeFrontier returns the non-dominated candidates. A candidate is
// dominated if another is >= on every dimension and strictly better on at
// least one. O(n^2) dominance check, fine for typical pool sizes.
func ComputeFrontier(candidates []FrontierCandidate) []FrontierCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var frontier []FrontierCandidate
	for i := range candidates {
		dominated := false
		for j := range candidates {
			if i == j {
				continue
			}
			if dominates(candidates[j], candidates[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidates[i])
		}
	}
	return frontier
}

func dominates(a, b FrontierCandidate) bool {
	if a.Fairness < b.Fairness || a.Breadth < b.Breadth || a.Speed < b.Speed {
		return false
	}
	return a.Fairness > b.Fairness || a.Breadth > b.Breadth || a.Speed > b.Speed
}
