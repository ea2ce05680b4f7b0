// Package budget estimates how many tokens the metadata of a session
// snapshot costs an assistant to read. The estimate is advisory only.
package budget

import (
	"unicode/utf8"

	"github.com/mesh-intelligence/compass/pkg/types"
)

// Heuristic defaults.
const (
	DefaultBase          = 50
	DefaultCharsPerToken = 4
)

// Item is one record to estimate.
type Item struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Cost is the estimate for one item.
type Cost struct {
	ID     string `json:"id"`
	Tokens int    `json:"tokens"`
}

// Estimate is the result of Estimator.Estimate.
type Estimate struct {
	Total      int    `json:"total"`
	Threshold  int    `json:"threshold"`
	OverBudget bool   `json:"over_budget"`
	PerRecord  []Cost `json:"per_record"`
}

// Summary drops the per-record breakdown.
func (e Estimate) Summary() types.BudgetSummary {
	return types.BudgetSummary{Total: e.Total, Threshold: e.Threshold, OverBudget: e.OverBudget}
}

// Estimator sums Base + ceil(runes(description)/CharsPerToken) per record.
type Estimator struct {
	Base          int
	CharsPerToken int
	Threshold     int
}

// New returns an Estimator with the default heuristic and the given
// threshold.
func New(threshold int) Estimator {
	return Estimator{Base: DefaultBase, CharsPerToken: DefaultCharsPerToken, Threshold: threshold}
}

// Cost returns the estimated tokens for a single description.
func (e Estimator) Cost(description string) int {
	cpt := e.CharsPerToken
	if cpt <= 0 {
		cpt = DefaultCharsPerToken
	}
	n := utf8.RuneCountInString(description)
	return e.Base + (n+cpt-1)/cpt
}

// Estimate sums the cost of items. A total strictly above Threshold is over
// budget.
func (e Estimator) Estimate(items []Item) Estimate {
	est := Estimate{Threshold: e.Threshold, PerRecord: make([]Cost, 0, len(items))}
	for _, it := range items {
		c := e.Cost(it.Description)
		est.Total += c
		est.PerRecord = append(est.PerRecord, Cost{ID: it.ID, Tokens: c})
	}
	est.OverBudget = est.Total > e.Threshold
	return est
}

// Items collects the estimable records of projects and skills, projects
// first.
func Items(projects []types.Project, skills []types.Skill) []Item {
	items := make([]Item, 0, len(projects)+len(skills))
	for _, p := range projects {
		items = append(items, Item{ID: "project:" + p.ID, Description: p.Description})
	}
	for _, s := range skills {
		items = append(items, Item{ID: "skill:" + s.ID, Description: s.Description})
	}
	return items
}
