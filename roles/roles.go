// Package roles chooses the impostors for a round.
package roles

import "github.com/wfunc/wordimpostor/random"

// Candidate is a participant eligible for role assignment.
type Candidate struct {
	ID     string
	IsHost bool
}

// AssignImpostors picks count distinct ids uniformly from participants,
// leaving out the host when excludeHost is set. If the pool is smaller than
// count nobody is picked: the result is never a partial assignment.
//
// The pick is a partial Fisher-Yates shuffle on a copy of the pool, so it
// draws exactly count times.
func AssignImpostors(participants []Candidate, count int, excludeHost bool, rng random.Source) map[string]struct{} {
	impostors := make(map[string]struct{})
	if count <= 0 {
		return impostors
	}

	pool := make([]string, 0, len(participants))
	for _, p := range participants {
		if excludeHost && p.IsHost {
			continue
		}
		pool = append(pool, p.ID)
	}
	if len(pool) < count {
		return impostors
	}

	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		impostors[pool[i]] = struct{}{}
	}
	return impostors
}
