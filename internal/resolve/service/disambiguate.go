package service

import "shade-resolver/internal/resolve/model"

// ScoredCandidate: кандидат с оценкой схожести линейки.
type ScoredCandidate struct {
	Candidate model.MatchCandidate
	Score     float64
}

// Decision is the disambiguator outcome. Selected is nil when the best
// score is below the threshold; Score is the best score either way.
type Decision struct {
	Selected *model.MatchCandidate
	Score    float64
	Scored   []ScoredCandidate // в порядке входных кандидатов
}

// Disambiguator picks one of several shade matches by product line.
type Disambiguator struct {
	Threshold float64
}

// Disambiguate scores the normalized raw product line against each
// candidate's normalized catalogue line.
//
// Ties at the max score go to the lexicographically smallest normalized
// product line, then to the earliest candidate (catalogue order). A max
// score below Threshold selects nothing; a score equal to it is accepted.
func (d Disambiguator) Disambiguate(lineKey string, cands []model.MatchCandidate) Decision {
	dec := Decision{Scored: make([]ScoredCandidate, 0, len(cands))}
	best := -1
	for i, c := range cands {
		s := TokenSetScore(lineKey, c.LineKey)
		dec.Scored = append(dec.Scored, ScoredCandidate{Candidate: c, Score: s})
		if best < 0 || beats(dec.Scored[i], dec.Scored[best]) {
			best = i
		}
	}
	if best < 0 {
		return dec
	}
	dec.Score = dec.Scored[best].Score
	if dec.Score >= d.Threshold {
		sel := dec.Scored[best].Candidate
		dec.Selected = &sel
	}
	return dec
}

// beats: строго лучше по score, при равенстве меньшая линейка.
// Равные линейки не вытесняют более раннего кандидата.
func beats(a, b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Candidate.LineKey < b.Candidate.LineKey
}
