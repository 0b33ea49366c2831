package scoring

import (
	"log/slog"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

// EngineConfig bundles the tunables of the scoring pipeline.
type EngineConfig struct {
	Categories       CategoryWeightSet
	Baseline         BaselineWeightSet
	Budget           BudgetPolicy
	Lifestyle        LifestyleScorer
	SportsLocalities []string
	UpscalePrice     float64
	ParetoEnabled    bool
}

// DefaultEngineConfig returns the standard configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Categories:   DefaultCategoryWeights(),
		Baseline:     DefaultBaselineWeights(),
		Budget:       DefaultBudgetPolicy(),
		Lifestyle:    DefaultLifestyleScorer(),
		UpscalePrice: DefaultUpscalePrice,
	}
}

// Request is one ranking request. Localities is the catalog before exclusion
// filtering; Overrides are keyed by zip code and merged field-by-field.
type Request struct {
	Localities  []*store.Locality
	Preferences Preferences
	Overrides   map[string]store.Attributes
}

// Result is the engine output.
type Result struct {
	Tier          BudgetTier         `json:"tier"`
	TotalCompared int                `json:"total_compared"`
	Results       []*ScoredCandidate `json:"results"`
	Insights      []Insight          `json:"insights"`
	Preferences   Preferences        `json:"preferences"`

	// Ranked is the full working set in global order.
	Ranked []*ScoredCandidate `json:"-"`
}

// Engine runs normalize → score → modify → rank → select → explain.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	normalizer *Normalizer
	criteria   *CriterionScorer
	modifiers  *ModifierEngine
	budget     BudgetPolicy
	pareto     bool
	logger     *slog.Logger
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Budget.Limit <= 0 {
		cfg.Budget = DefaultBudgetPolicy()
	}
	return &Engine{
		normalizer: NewNormalizer(cfg.Lifestyle),
		criteria:   NewCriterionScorer(cfg.Categories, cfg.Baseline),
		modifiers:  NewModifierEngine(cfg.SportsLocalities, cfg.UpscalePrice),
		budget:     cfg.Budget,
		pareto:     cfg.ParetoEnabled,
		logger:     logger,
	}
}

// BudgetPolicy returns the selection policy in use.
func (e *Engine) BudgetPolicy() BudgetPolicy { return e.budget }

// Run executes the pipeline. Only malformed localities are errors; an empty
// working set yields an empty result.
func (e *Engine) Run(req Request) (*Result, error) {
	if err := ValidateLocalities(req.Localities); err != nil {
		return nil, err
	}
	prefs := req.Preferences.Sanitize()

	working := e.workingSet(req.Localities, req.Overrides, prefs)
	result := &Result{
		Tier:          TierNone,
		TotalCompared: len(working),
		Results:       []*ScoredCandidate{},
		Insights:      []Insight{},
		Preferences:   prefs,
	}
	if len(working) == 0 {
		e.logger.Debug("empty working set", "catalog", len(req.Localities))
		return result, nil
	}

	scored := e.ScoreAll(working, prefs)
	ranked := Rank(scored)
	sel := e.budget.SelectForBudget(ranked, prefs.BudgetMax)
	if e.pareto {
		MarkValueFrontier(sel.Shown)
	}

	result.Tier = sel.Tier
	result.Results = sel.Shown
	result.Ranked = ranked
	if insights := GenerateInsights(sel.Shown, ranked, prefs, e.budget); insights != nil {
		result.Insights = insights
	}

	e.logger.Debug("ranking complete",
		"working_set", len(working),
		"shown", len(sel.Shown),
		"tier", sel.Tier,
		"insights", len(result.Insights),
	)
	return result, nil
}

// ScoreAll normalizes the working set and scores each member. The returned
// candidates are in working-set order and carry no ranks yet.
func (e *Engine) ScoreAll(working []*store.Locality, prefs Preferences) []*ScoredCandidate {
	normalized := e.normalizer.NormalizeAll(working)
	out := make([]*ScoredCandidate, len(working))
	for i, l := range working {
		cs := e.criteria.Score(l, normalized[i], prefs)
		adjusted, mods := e.modifiers.Apply(cs.Fit, l, prefs)
		out[i] = &ScoredCandidate{
			ZipCode:       l.ZipCode,
			Name:          l.Name,
			Price:         l.Attributes.SalePrice,
			Rent:          l.Attributes.RentPrice,
			Scores:        normalized[i],
			BaselineScore: cs.Baseline,
			PriorityScore: cs.Priority,
			FitScore:      cs.Fit,
			Modifiers:     mods,
			AdjustedScore: adjusted,
			Breakdown:     cs.Breakdown,
			Sources:       l.Attributes.Sources,
			LastUpdated:   l.Attributes.LastUpdated,
			locality:      l,
		}
	}
	return out
}

// workingSet drops excluded localities and merges overrides into copies.
func (e *Engine) workingSet(ls []*store.Locality, overrides map[string]store.Attributes, prefs Preferences) []*store.Locality {
	out := make([]*store.Locality, 0, len(ls))
	for _, l := range ls {
		if prefs.IsExcluded(l.Name) {
			continue
		}
		c := l.Clone()
		if o, ok := overrides[l.ZipCode]; ok {
			c.Attributes = c.Attributes.Merge(o)
		}
		out = append(out, c)
	}
	return out
}
