package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
)

// MatchStrategy tags how a link handle was matched to an account.
type MatchStrategy int

const (
	MatchNone MatchStrategy = iota
	// MatchPositional pairs the handle at the account's own listing index.
	// Fast and correct while the backend returns both listings in stable,
	// parallel order.
	MatchPositional
	// MatchContent pairs a handle whose registered account number equals,
	// or substring-matches, the account's number. Recovers from listing
	// reorders and truncated account numbers.
	MatchContent
	// MatchFirstAvailable is the last-resort blind fallback to the first
	// candidate. It can silently attach the wrong handle when the user has
	// several brokerage logins, so the session surfaces which strategy won.
	MatchFirstAvailable
)

func (m MatchStrategy) String() string {
	switch m {
	case MatchPositional:
		return "positional"
	case MatchContent:
		return "content"
	case MatchFirstAvailable:
		return "first_available"
	default:
		return "none"
	}
}

// linkStrategy is one matching rule; the linker tries its strategies in
// order and the first hit wins.
type linkStrategy interface {
	Tag() MatchStrategy
	Match(account *models.BrokerageAccount, position int, candidates []models.LinkHandle) (models.LinkHandle, bool)
}

type positionalStrategy struct{}

func (positionalStrategy) Tag() MatchStrategy { return MatchPositional }

func (positionalStrategy) Match(_ *models.BrokerageAccount, position int, candidates []models.LinkHandle) (models.LinkHandle, bool) {
	if position < 0 || position >= len(candidates) {
		return models.LinkHandle{}, false
	}
	if !candidates[position].WellFormed() {
		return models.LinkHandle{}, false
	}
	return candidates[position], true
}

type contentMatchStrategy struct{}

func (contentMatchStrategy) Tag() MatchStrategy { return MatchContent }

func (contentMatchStrategy) Match(account *models.BrokerageAccount, _ int, candidates []models.LinkHandle) (models.LinkHandle, bool) {
	for _, candidate := range candidates {
		if !candidate.WellFormed() || candidate.AccountNumber == "" {
			continue
		}
		if accountNumbersMatch(candidate.AccountNumber, account.AccountNumber) {
			return candidate, true
		}
	}
	return models.LinkHandle{}, false
}

// accountNumbersMatch compares account numbers tolerating truncated or
// partial forms on either side.
func accountNumbersMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

type firstAvailableStrategy struct{}

func (firstAvailableStrategy) Tag() MatchStrategy { return MatchFirstAvailable }

func (firstAvailableStrategy) Match(_ *models.BrokerageAccount, _ int, candidates []models.LinkHandle) (models.LinkHandle, bool) {
	for _, candidate := range candidates {
		if candidate.WellFormed() {
			return candidate, true
		}
	}
	return models.LinkHandle{}, false
}

type accountLinker struct {
	strategies []linkStrategy
	logger     *zap.Logger
}

// NewAccountLinker creates a linker with the standard strategy order:
// positional, then content match, then first available.
func NewAccountLinker(logger *zap.Logger) AccountLinker {
	return &accountLinker{
		strategies: []linkStrategy{
			positionalStrategy{},
			contentMatchStrategy{},
			firstAvailableStrategy{},
		},
		logger: logger,
	}
}

// Resolve tries each strategy in order and returns the first match along
// with the strategy that produced it, or ErrNoLinkHandle when every
// strategy missed.
func (l *accountLinker) Resolve(account *models.BrokerageAccount, position int, candidates []models.LinkHandle) (models.LinkHandle, MatchStrategy, error) {
	for _, strategy := range l.strategies {
		if handle, ok := strategy.Match(account, position, candidates); ok {
			if strategy.Tag() != MatchPositional {
				l.logger.Info("link handle matched by fallback strategy",
					zap.String("account", account.MaskedNumber()),
					zap.String("strategy", strategy.Tag().String()))
			}
			return handle, strategy.Tag(), nil
		}
	}
	return models.LinkHandle{}, MatchNone, apperrors.ErrNoLinkHandle
}
