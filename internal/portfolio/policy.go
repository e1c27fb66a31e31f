package portfolio

import (
	"sort"

	"github.com/seenimoa/momentum/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Rebalance Policies
// ════════════════════════════════════════════════════════════════════

// RebalancePolicy decides which positions a rebalance closes and opens
// given the current holdings and the new ranked list. Plans are
// returned in ascending symbol order so every run replays identically.
type RebalancePolicy interface {
	Name() string
	Plan(held map[string]models.Position, ranked []models.MomentumScore) (toClose, toOpen []string)
}

// PreserveExisting is the canonical policy: symbols in both the held
// set and the new ranking are left untouched, which avoids churning
// cost bases on every event. Only drop-outs close and only new
// entrants open.
type PreserveExisting struct{}

// Name implements RebalancePolicy.
func (PreserveExisting) Name() string { return "preserve-existing" }

// Plan implements RebalancePolicy.
func (PreserveExisting) Plan(held map[string]models.Position, ranked []models.MomentumScore) (toClose, toOpen []string) {
	inRank := make(map[string]bool, len(ranked))
	for _, s := range ranked {
		inRank[s.Symbol] = true
	}

	for symbol := range held {
		if !inRank[symbol] {
			toClose = append(toClose, symbol)
		}
	}
	for _, s := range ranked {
		if _, ok := held[s.Symbol]; !ok {
			toOpen = append(toOpen, s.Symbol)
		}
	}

	sort.Strings(toClose)
	sort.Strings(toOpen)
	return toClose, toOpen
}

// FullReplace closes every held position and reopens the entire ranked
// list, re-basing entry prices each event. It models the naive
// liquidate-and-rebuy variant and exists mainly for comparison runs.
type FullReplace struct{}

// Name implements RebalancePolicy.
func (FullReplace) Name() string { return "full-replace" }

// Plan implements RebalancePolicy.
func (FullReplace) Plan(held map[string]models.Position, ranked []models.MomentumScore) (toClose, toOpen []string) {
	for symbol := range held {
		toClose = append(toClose, symbol)
	}
	for _, s := range ranked {
		toOpen = append(toOpen, s.Symbol)
	}

	sort.Strings(toClose)
	sort.Strings(toOpen)
	return toClose, toOpen
}
