package service

import (
	"errors"
	"math"
	"strings"
	"sync/atomic"

	"shade-resolver/internal/resolve/model"
)

var ErrNoCatalogue = errors.New("catalogue not loaded")

// Engine resolves records against one immutable index snapshot.
// Resolution is a pure function of the record and the snapshot.
type Engine struct {
	idx     *Index
	matcher ShadeMatcher
	disamb  Disambiguator
	opt     model.Options
}

func NewEngine(idx *Index, opt model.Options) *Engine {
	opt.Threshold = ClampThreshold(opt.Threshold)
	return &Engine{
		idx:     idx,
		matcher: NewShadeMatcher(idx, opt.ShadeNumberFallback),
		disamb:  Disambiguator{Threshold: opt.Threshold},
		opt:     opt,
	}
}

// WithThreshold returns an engine over the same index with another threshold.
func (e *Engine) WithThreshold(t float64) *Engine {
	opt := e.opt
	opt.Threshold = t
	return NewEngine(e.idx, opt)
}

func (e *Engine) Index() *Index { return e.idx }

func (e *Engine) Options() model.Options { return e.opt }

// ClampThreshold keeps the threshold in [0,100]; NaN falls back to the default.
func ClampThreshold(t float64) float64 {
	switch {
	case math.IsNaN(t):
		return model.DefaultThreshold
	case t < 0:
		return 0
	case t > 100:
		return 100
	}
	return t
}

// Resolve walks BRAND_LOOKUP → SHADE_LOOKUP → (DISAMBIGUATE) → DONE.
// The only error is a malformed record; every other outcome is a status.
func (e *Engine) Resolve(rec model.InputRecord) (model.ResolvedRecord, error) {
	if strings.TrimSpace(rec.BrandStandardized) == "" {
		return model.ResolvedRecord{}, &model.MalformedRecordError{Index: -1, Field: model.FieldBrand, Cause: "empty"}
	}

	// BRAND_LOOKUP
	if !e.idx.HasBrand(rec.BrandStandardized) {
		return model.ResolvedRecord{MatchStatus: model.StatusNoBrand}, nil
	}

	// SHADE_LOOKUP
	cands, reason := e.matcher.Match(rec.BrandStandardized, rec.ShadeRaw)
	via := model.ShadeByName
	if reason == ReasonByNumber {
		via = model.ShadeByNumber
	}

	switch len(cands) {
	case 0:
		return model.ResolvedRecord{MatchStatus: model.StatusNoShadeMatch}, nil
	case 1:
		c := cands[0]
		return model.ResolvedRecord{
			ProductLineStandardized: strPtr(c.Entry.ProductLine),
			ShadeStandardized:       strPtr(c.Shade),
			MatchStatus:             model.StatusExact,
			ShadeMatch:              via,
		}, nil
	}

	// DISAMBIGUATE
	dec := e.disamb.Disambiguate(e.idx.norm.Text(rec.ProductLineRaw), cands)
	score := dec.Score
	if dec.Selected == nil {
		return model.ResolvedRecord{
			MatchStatus:         model.StatusAmbiguousUnresolved,
			DisambiguationScore: &score,
			ShadeMatch:          via,
			ReviewProductLines:  reviewLines(cands),
		}, nil
	}
	return model.ResolvedRecord{
		ProductLineStandardized: strPtr(dec.Selected.Entry.ProductLine),
		ShadeStandardized:       strPtr(dec.Selected.Shade),
		MatchStatus:             model.StatusDisambiguated,
		DisambiguationScore:     &score,
		ShadeMatch:              via,
	}, nil
}

// линейки кандидатов для ручного разбора, без повторов, в порядке каталога
func reviewLines(cands []model.MatchCandidate) []string {
	out := make([]string, 0, len(cands))
	seen := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		if _, ok := seen[c.Entry.ProductLine]; ok {
			continue
		}
		seen[c.Entry.ProductLine] = struct{}{}
		out = append(out, c.Entry.ProductLine)
	}
	return out
}

func strPtr(s string) *string { return &s }

// Live holds the current engine. Reload builds a new engine and swaps the
// pointer; readers never see a half-built index and never lock.
type Live struct {
	p atomic.Pointer[Engine]
}

func NewLive(e *Engine) *Live {
	l := &Live{}
	if e != nil {
		l.p.Store(e)
	}
	return l
}

// Load returns the current engine or ErrNoCatalogue.
func (l *Live) Load() (*Engine, error) {
	e := l.p.Load()
	if e == nil {
		return nil, ErrNoCatalogue
	}
	return e, nil
}

// Swap publishes e and returns the previous engine (nil on first load).
func (l *Live) Swap(e *Engine) *Engine {
	return l.p.Swap(e)
}
