package condition

import (
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

// Deduplicate drops the shorter of each duplicate pair (spec §4.3.2):
// duplicates are trails whose overlap fraction clears overlap_threshold
// or whose Hausdorff distance is within distance_threshold. The surviving
// record inherits the discarded one's source_id/tags when it lacks them;
// ties are broken by the lexicographically smaller uuid.
func (c *Conditioner) Deduplicate(trails []*core.Trail) ([]*core.Trail, *Report) {
	rep := newReport("deduplicate")
	dropped := make(map[int]bool, len(trails))

	for i := 0; i < len(trails); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(trails); j++ {
			if dropped[j] {
				continue
			}
			a, b := trails[i], trails[j]
			if !c.isDuplicate(a, b) {
				continue
			}
			loserIdx := j
			loser, winner := b, a
			switch {
			case winner.LengthKM < loser.LengthKM:
				loserIdx = i
				loser, winner = a, b
			case winner.LengthKM == loser.LengthKM && loser.UUID.String() < winner.UUID.String():
				loserIdx = i
				loser, winner = a, b
			}
			if winner.SourceID == "" {
				winner.SourceID = loser.SourceID
			}
			if len(winner.Tags) == 0 {
				winner.Tags = loser.Tags.Clone()
			}
			dropped[loserIdx] = true
			rep.Dropped = append(rep.Dropped, loser.UUID.String())
			rep.Merged++
			if loserIdx == i {
				break
			}
		}
	}

	out := make([]*core.Trail, 0, len(trails))
	for i, t := range trails {
		if !dropped[i] {
			out = append(out, t)
		}
	}
	return out, rep
}

func (c *Conditioner) isDuplicate(a, b *core.Trail) bool {
	shorter, longer := a, b
	if longer.LengthKM < shorter.LengthKM {
		shorter, longer = longer, shorter
	}
	if geom.OverlapFraction(shorter.Geometry, longer.Geometry, c.cfg.DistanceThresholdM) >= c.cfg.OverlapThreshold {
		return true
	}
	return geom.HausdorffMeters(a.Geometry, b.Geometry) <= c.cfg.DistanceThresholdM
}
