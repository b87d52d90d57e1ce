package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/pixglobal/registry/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DomainChecker is the minimal registry read surface for availability.
type DomainChecker interface {
	Exists(ctx context.Context, fqdn string) (bool, error)
	// FilterRegistered returns the subset of the given fqdns that already
	// have a registry row, in one query.
	FilterRegistered(ctx context.Context, fqdns []string) (map[string]bool, error)
}

type AvailabilityService struct {
	repo DomainChecker
	rng  *rand.Rand
}

type AvailabilityOption func(*AvailabilityService)

// WithRand fixes the random source used for suggestion generation (tests).
func WithRand(rng *rand.Rand) AvailabilityOption {
	return func(s *AvailabilityService) { s.rng = rng }
}

func NewAvailabilityService(repo DomainChecker, opts ...AvailabilityOption) *AvailabilityService {
	svc := &AvailabilityService{repo: repo}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Reason codes surfaced on unavailable names.
const (
	ReasonInvalidFormat     = "invalid_format"
	ReasonReserved          = "reserved"
	ReasonAlreadyRegistered = "already_registered"
)

type CheckResult struct {
	Name        string
	Class       domain.Class
	FQDN        string
	Available   bool
	Reason      string
	Detail      string
	Price       decimal.Decimal
	Suggestions []string
}

// Check normalizes and validates a candidate name, consults the registry,
// prices it, and proposes free alternatives. Read-only.
func (s *AvailabilityService) Check(ctx context.Context, rawName, rawClass string) (CheckResult, error) {
	name := domain.Normalize(rawName)

	var class domain.Class
	if rawClass == "" {
		class = domain.DetectClass(name)
	} else {
		parsed, err := domain.ToClass(rawClass)
		if err != nil {
			return CheckResult{Name: name, Reason: ReasonInvalidFormat, Detail: "unknown domain type"}, nil
		}
		class = parsed
	}

	result := CheckResult{Name: name, Class: class, FQDN: domain.FQDN(name, class)}

	if detail, err := domain.ValidateLabel(name, class); err != nil {
		if errors.Is(err, domain.ErrReserved) {
			result.Reason = ReasonReserved
		} else {
			result.Reason = ReasonInvalidFormat
		}
		result.Detail = detail
		return result, nil
	}

	taken, err := s.repo.Exists(ctx, result.FQDN)
	if err != nil {
		return CheckResult{}, fmt.Errorf("check registry: %w", err)
	}

	result.Price = domain.Price(name, class)
	if taken {
		result.Reason = ReasonAlreadyRegistered
		result.Detail = fmt.Sprintf("%s não está mais disponível", result.FQDN)
	} else {
		result.Available = true
	}

	suggestions, err := s.freeSuggestions(ctx, name, class)
	if err != nil {
		return CheckResult{}, err
	}
	result.Suggestions = suggestions

	return result, nil
}

// freeSuggestions generates candidates and drops the already-registered
// ones with a single batch query.
func (s *AvailabilityService) freeSuggestions(ctx context.Context, name string, class domain.Class) ([]string, error) {
	candidates := domain.Suggest(name, class, s.rng)
	if len(candidates) == 0 {
		return nil, nil
	}

	fqdns := lo.Map(candidates, func(c string, _ int) string {
		return domain.FQDN(c, class)
	})
	registered, err := s.repo.FilterRegistered(ctx, fqdns)
	if err != nil {
		return nil, fmt.Errorf("batch-check suggestions: %w", err)
	}

	return lo.Filter(candidates, func(c string, _ int) bool {
		return !registered[domain.FQDN(c, class)]
	}), nil
}
