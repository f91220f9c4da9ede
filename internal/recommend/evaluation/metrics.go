// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package evaluation

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/societyrec/internal/recommend"
)

// Metric names an offline quality metric.
type Metric string

const (
	MetricPrecision       Metric = "precision"
	MetricRecall          Metric = "recall"
	MetricDiversity       Metric = "diversity"
	MetricCoverage        Metric = "coverage"
	MetricSerendipity     Metric = "serendipity"
	MetricCategoryBalance Metric = "category_balance"
)

// AllMetrics lists every metric in report order.
var AllMetrics = []Metric{
	MetricPrecision,
	MetricRecall,
	MetricDiversity,
	MetricCoverage,
	MetricSerendipity,
	MetricCategoryBalance,
}

// ParseMetrics validates metric names. An empty list selects all metrics.
func ParseMetrics(names []string) ([]Metric, error) {
	if len(names) == 0 {
		return AllMetrics, nil
	}

	known := make(map[Metric]struct{}, len(AllMetrics))
	for _, m := range AllMetrics {
		known[m] = struct{}{}
	}

	out := make([]Metric, 0, len(names))
	seen := make(map[Metric]struct{}, len(names))
	for _, name := range names {
		m := Metric(strings.TrimSpace(name))
		if _, ok := known[m]; !ok {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

// holdoutCase is one leave-one-out trial.
type holdoutCase struct {
	recs    []recommend.Society
	heldOut int
	k       int

	// history holds the categories of the memberships left in place.
	history []string
}

// popularityIndex holds inverse popularity per society and its catalog
// mean.
type popularityIndex struct {
	inverse map[int]float64
	mean    float64
}

func newPopularityIndex(societies []recommend.Society) popularityIndex {
	idx := popularityIndex{inverse: make(map[int]float64, len(societies))}
	if len(societies) == 0 {
		return idx
	}
	sum := 0.0
	for i := range societies {
		v := inversePopularity(societies[i].MemberCount)
		idx.inverse[societies[i].ID] = v
		sum += v
	}
	idx.mean = sum / float64(len(societies))
	return idx
}

func inversePopularity(members int) float64 {
	return 1 / (1 + float64(max(members, 0)))
}

func (c *holdoutCase) hit() bool {
	for i := range c.recs {
		if c.recs[i].ID == c.heldOut {
			return true
		}
	}
	return false
}

// precision is hits over k.
func (c *holdoutCase) precision() float64 {
	if c.k <= 0 || !c.hit() {
		return 0
	}
	return 1 / float64(c.k)
}

// recall is 1 when the single held-out society was recommended.
func (c *holdoutCase) recall() float64 {
	if c.hit() {
		return 1
	}
	return 0
}

// serendipity is the share of recommendations in categories new to the
// student, weighted by precision.
func (c *holdoutCase) serendipity() float64 {
	if len(c.recs) == 0 {
		return 0
	}
	known := make(map[string]struct{}, len(c.history))
	for _, cat := range c.history {
		known[categoryKey(cat)] = struct{}{}
	}
	novel := 0
	for i := range c.recs {
		if _, ok := known[categoryKey(c.recs[i].Category)]; !ok {
			novel++
		}
	}
	return float64(novel) / float64(len(c.recs)) * c.precision()
}

// categoryBalance is 1 minus the Jensen-Shannon divergence between the
// student's category distribution and the recommended one.
func (c *holdoutCase) categoryBalance() float64 {
	if len(c.recs) == 0 || len(c.history) == 0 {
		return 0
	}
	recCats := make([]string, len(c.recs))
	for i := range c.recs {
		recCats[i] = c.recs[i].Category
	}
	return 1 - jsDivergence(distribution(c.history), distribution(recCats))
}

func (c *holdoutCase) compute(m Metric, pop popularityIndex) float64 {
	switch m {
	case MetricPrecision:
		return c.precision()
	case MetricRecall:
		return c.recall()
	case MetricDiversity:
		return categoryEntropy(c.recs)
	case MetricCoverage:
		return coverage(c.recs, pop)
	case MetricSerendipity:
		return c.serendipity()
	case MetricCategoryBalance:
		return c.categoryBalance()
	default:
		return 0
	}
}

// categoryEntropy is the Shannon entropy of the recommended categories,
// normalized by its maximum for the list size. Lists of fewer than two
// items have no diversity.
func categoryEntropy(recs []recommend.Society) float64 {
	if len(recs) < 2 {
		return 0
	}
	cats := make([]string, len(recs))
	for i := range recs {
		cats[i] = recs[i].Category
	}

	h := 0.0
	for _, p := range distribution(cats) {
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h / math.Log(float64(len(recs)))
}

// coverage is the mean inverse popularity of the recommendations, capped
// at three times the catalog mean.
func coverage(recs []recommend.Society, pop popularityIndex) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for i := range recs {
		v, ok := pop.inverse[recs[i].ID]
		if !ok {
			v = inversePopularity(recs[i].MemberCount)
		}
		sum += v
	}
	mean := sum / float64(len(recs))
	if limit := 3 * pop.mean; pop.mean > 0 && mean > limit {
		return limit
	}
	return mean
}

// distribution returns the normalized frequency of each category.
func distribution(categories []string) map[string]float64 {
	dist := make(map[string]float64, len(categories))
	for _, c := range categories {
		dist[categoryKey(c)]++
	}
	normalizeDistribution(dist)
	return dist
}

// normalizeDistribution scales a distribution to sum to 1.
func normalizeDistribution(dist map[string]float64) {
	var total float64
	for _, v := range dist {
		total += v
	}
	if total > 0 {
		for k := range dist {
			dist[k] /= total
		}
	}
}

// klDivergence is KL(p || q) in bits.
func klDivergence(p, q map[string]float64) float64 {
	var kl float64
	for key, pVal := range p {
		qVal := q[key]
		if pVal > 0 && qVal > 0 {
			kl += pVal * math.Log2(pVal/qVal)
		}
	}
	return kl
}

// jsDivergence is the Jensen-Shannon divergence in bits, bounded by [0, 1].
func jsDivergence(p, q map[string]float64) float64 {
	m := make(map[string]float64, len(p)+len(q))
	for k, v := range p {
		m[k] += v / 2
	}
	for k, v := range q {
		m[k] += v / 2
	}
	js := (klDivergence(p, m) + klDivergence(q, m)) / 2
	return math.Min(math.Max(js, 0), 1)
}

func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// SetMetrics are quality scores of a recommendation list against a set of
// relevant societies.
type SetMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	HitRate   float64 `json:"hit_rate"`
	Diversity float64 `json:"diversity"`
}

func scoreAgainst(recs []recommend.Society, relevant map[int]struct{}, k int) SetMetrics {
	hits := 0
	for i := range recs {
		if _, ok := relevant[recs[i].ID]; ok {
			hits++
		}
	}
	var m SetMetrics
	if k > 0 {
		m.Precision = float64(hits) / float64(k)
	}
	if len(relevant) > 0 {
		m.Recall = float64(hits) / float64(len(relevant))
	}
	if hits > 0 {
		m.HitRate = 1
	}
	m.Diversity = categoryEntropy(recs)
	return m
}

func (m *SetMetrics) add(o *SetMetrics) {
	m.Precision += o.Precision
	m.Recall += o.Recall
	m.HitRate += o.HitRate
	m.Diversity += o.Diversity
}

func (m *SetMetrics) scale(f float64) {
	m.Precision *= f
	m.Recall *= f
	m.HitRate *= f
	m.Diversity *= f
}

func (m *SetMetrics) minus(o *SetMetrics) SetMetrics {
	return SetMetrics{
		Precision: m.Precision - o.Precision,
		Recall:    m.Recall - o.Recall,
		HitRate:   m.HitRate - o.HitRate,
		Diversity: m.Diversity - o.Diversity,
	}
}
