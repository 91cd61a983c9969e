package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// Over-fetch multipliers for the two selection passes. The strict pass
// fetches extra rows so prompt de-duplication does not leave the category
// short; the relaxed pass casts a much wider net because it is the last
// chance to fill the worksheet.
const (
	strictOverfetch  = 3
	relaxedOverfetch = 5
)

// categoryOrder fixes both the worksheet layout and the remainder
// distribution when a mix ratio does not divide the total evenly.
var categoryOrder = []domain.ItemCategory{
	domain.CategoryWord,
	domain.CategoryPhrase,
	domain.CategorySentence,
	domain.CategoryGrammar,
}

// splitCounts divides total across categories proportionally to the mix
// ratio. Each category gets the floor of its proportional share; leftover
// slots go one each to categories in fixed order, cycling, so the result
// always sums to exactly total.
func splitCounts(total int, mix map[domain.ItemCategory]int) map[domain.ItemCategory]int {
	ratioSum := 0
	for _, cat := range categoryOrder {
		ratioSum += mix[cat]
	}

	counts := make(map[domain.ItemCategory]int, len(categoryOrder))
	if ratioSum == 0 {
		return counts
	}

	assigned := 0
	for _, cat := range categoryOrder {
		n := total * mix[cat] / ratioSum
		counts[cat] = n
		assigned += n
	}

	for i := 0; assigned < total; i++ {
		cat := categoryOrder[i%len(categoryOrder)]
		if mix[cat] == 0 {
			continue
		}
		counts[cat]++
		assigned++
	}

	return counts
}

// selectItems picks the worksheet's items from the eligible pool: one
// strict ranked pass per requested category, then a relaxed any-category
// backfill when the strict passes come up short. A pool smaller than the
// requested count yields a shorter worksheet; ErrInsufficientItems is
// returned only when nothing at all is selectable.
func selectItems(
	ctx context.Context,
	items store.ItemStore,
	studentID uuid.UUID,
	params domain.GenerationParams,
	collectionID uuid.UUID,
) ([]*domain.KnowledgeItem, error) {
	counts := splitCounts(params.TotalCount, params.MixRatio)

	selected := make([]*domain.KnowledgeItem, 0, params.TotalCount)
	seenPrompts := make(map[string]bool, params.TotalCount)

	take := func(ranked []store.RankedItem, want int) int {
		taken := 0
		for i := range ranked {
			if taken >= want {
				break
			}
			item := ranked[i].Item
			if seenPrompts[item.Prompt] {
				continue
			}
			seenPrompts[item.Prompt] = true
			selected = append(selected, &item)
			taken++
		}
		return taken
	}

	for _, cat := range categoryOrder {
		want := counts[cat]
		if want == 0 {
			continue
		}
		ranked, err := items.FindEligible(ctx, store.EligibleItemQuery{
			StudentID:    studentID,
			CollectionID: collectionID,
			Unit:         params.UnitFilter,
			Category:     cat,
			Limit:        want * strictOverfetch,
		})
		if err != nil {
			return nil, fmt.Errorf("selecting %s items: %w", cat, err)
		}
		take(ranked, want)
	}

	if missing := params.TotalCount - len(selected); missing > 0 {
		ranked, err := items.FindEligible(ctx, store.EligibleItemQuery{
			StudentID:    studentID,
			CollectionID: collectionID,
			Unit:         params.UnitFilter,
			Limit:        params.TotalCount * relaxedOverfetch,
		})
		if err != nil {
			return nil, fmt.Errorf("backfill selection: %w", err)
		}
		take(ranked, missing)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: wanted %d, pool yielded none",
			ErrInsufficientItems, params.TotalCount)
	}

	return selected, nil
}
