// Package aggregator merges the raw findings emitted by a job's
// backends into a canonical, deduplicated result set.
package aggregator

import (
	"sort"

	"github.com/bughunter/bughunter/internal/domain/scan"
)

// Aggregate deduplicates and orders raw findings from all backends of
// one job. Two findings are duplicates when they share the dedup key
// (type, target, template-id-or-backend-source). Merged duplicates
// keep the most severe (then highest-confidence) variant and union
// their evidence. The result is ordered by severity descending, then
// discovery order, and the operation is deterministic and idempotent.
func Aggregate(raw []scan.Finding) []scan.Finding {
	type slot struct {
		finding scan.Finding
		order   int
	}

	merged := make(map[string]*slot, len(raw))
	order := make([]string, 0, len(raw))

	for i, f := range raw {
		key := f.DedupKey()
		existing, ok := merged[key]
		if !ok {
			merged[key] = &slot{finding: f, order: i}
			order = append(order, key)
			continue
		}

		existing.finding.Details = unionDetails(existing.finding.Details, f.Details)
		if moreSignificant(f, existing.finding) {
			details := existing.finding.Details
			existing.finding = f
			existing.finding.Details = details
		}
	}

	out := make([]scan.Finding, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key].finding)
	}

	// Stable sort keeps discovery order within equal severities.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})

	return out
}

// moreSignificant reports whether a should replace b as the surviving
// variant of a duplicate pair.
func moreSignificant(a, b scan.Finding) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	return a.Confidence > b.Confidence
}

// unionDetails merges evidence lists preserving first-seen order.
func unionDetails(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, d := range list {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
