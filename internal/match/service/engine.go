package service

import (
	"strings"

	"inventory-recon/internal/match/model"
)

// Thresholds are product decisions, not tuning knobs: changing them
// changes observable business behavior. Kept configurable so deployments
// can pin the values they were reviewed against.
type Thresholds struct {
	// Discard: fuzzy candidates scoring at or below are dropped.
	Discard float64
	// Accept: fuzzy scores strictly above auto-confirm; at or below stay pending.
	Accept float64
	// Bonus added per SKU / part-number substring hit, capped at 1.0 total.
	Bonus float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Discard: 0.65, Accept: 0.85, Bonus: 0.15}
}

// Match scores every extracted line item against the catalog snapshot and
// returns one result per item, order preserved. Pure and deterministic:
// identical inputs always give identical output.
func Match(items []model.ExtractedLineItem, catalog []model.CatalogProduct, th Thresholds) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(items))
	for _, it := range items {
		out = append(out, matchOne(it, catalog, th))
	}
	return out
}

// matchOne applies the priority ladder; the first rule that fires wins.
//
//	1. exact SKU          -> matched, 1.0
//	2. exact part number  -> matched, 0.95
//	3. exact name         -> matched, 0.95
//	4. fuzzy name + substring bonuses, discard <= th.Discard,
//	   > th.Accept matched, otherwise pending
//	5. nothing survives   -> unmatched
func matchOne(it model.ExtractedLineItem, catalog []model.CatalogProduct, th Thresholds) model.MatchResult {
	if sku := strings.TrimSpace(it.Sku); sku != "" {
		for _, p := range catalog {
			if p.Sku != "" && strings.EqualFold(sku, p.Sku) {
				return model.Matched(it, p, 1.0, model.MethodSku)
			}
		}
	}

	if pn := strings.TrimSpace(it.PartNumber); pn != "" {
		for _, p := range catalog {
			if p.PartNumber != "" && strings.EqualFold(pn, p.PartNumber) {
				return model.Matched(it, p, 0.95, model.MethodPart)
			}
		}
	}

	if name := strings.TrimSpace(it.Description); name != "" {
		for _, p := range catalog {
			if p.Name != "" && strings.EqualFold(name, p.Name) {
				return model.Matched(it, p, 0.95, model.MethodExact)
			}
		}
	}

	// Fuzzy pass. Ties break on catalog order: first seen wins, so the
	// comparison below is strictly greater-than.
	var (
		best      float64 = -1
		bestIdx           = -1
	)
	for i, p := range catalog {
		score := fuzzyScore(it, p, th)
		if score <= th.Discard {
			continue
		}
		if score > best {
			best = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return model.Unmatched(it)
	}
	if best > th.Accept {
		return model.Matched(it, catalog[bestIdx], best, model.MethodFuzzy)
	}
	return model.Pending(it, catalog[bestIdx], best)
}

func fuzzyScore(it model.ExtractedLineItem, p model.CatalogProduct, th Thresholds) float64 {
	score := Similarity(it.Description, p.Name)
	if containsFold(p.Sku, it.Sku) {
		score += th.Bonus
	}
	if containsFold(p.PartNumber, it.PartNumber) {
		score += th.Bonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

// containsFold reports whether needle is a non-empty case-insensitive
// substring of haystack.
func containsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" || haystack == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
