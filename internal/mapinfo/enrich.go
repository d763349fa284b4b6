package mapinfo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"starbank/internal/bank"
	"starbank/internal/logging"
)

// ProtectionChecker decides whether an archive is protected against editing.
type ProtectionChecker interface {
	IsProtected(ctx context.Context, path string) (bool, error)
}

// SecondaryDataExtractor derives bank records from script text.
type SecondaryDataExtractor interface {
	Extract(script string) []bank.Record
}

// Enrichment holds the results computed for one entry.
type Enrichment struct {
	IsProtected *bool
	Banks       []bank.Record
}

// Policy decides whether an offered entry is enriched, given whether the
// registry accepted it.
type Policy func(accepted bool) bool

// EnrichOnAccept enriches only entries that won deduplication.
func EnrichOnAccept(accepted bool) bool { return accepted }

// EnrichAlways enriches every parsed entry. Results for rejected entries are
// still discarded by the registry.
func EnrichAlways(bool) bool { return true }

// EnrichNever disables enrichment.
func EnrichNever(bool) bool { return false }

// PolicyByName maps a scan.enrich_policy value to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "on_accept":
		return EnrichOnAccept, nil
	case "always":
		return EnrichAlways, nil
	case "never":
		return EnrichNever, nil
	default:
		return nil, fmt.Errorf("unknown enrich policy %q", name)
	}
}

// EnrichmentGate runs the enrichment collaborators for entries the policy
// admits. Either collaborator may be nil, in which case its result is skipped.
type EnrichmentGate struct {
	Policy     Policy
	Protection ProtectionChecker
	Banks      SecondaryDataExtractor

	logger *slog.Logger
}

// NewEnrichmentGate wires the collaborators. A nil policy means EnrichOnAccept.
func NewEnrichmentGate(policy Policy, protection ProtectionChecker, banks SecondaryDataExtractor, logger *slog.Logger) *EnrichmentGate {
	if policy == nil {
		policy = EnrichOnAccept
	}
	return &EnrichmentGate{
		Policy:     policy,
		Protection: protection,
		Banks:      banks,
		logger:     logging.NewComponentLogger(logger, "enrichment"),
	}
}

// ShouldEnrich applies the policy.
func (g *EnrichmentGate) ShouldEnrich(accepted bool) bool {
	if g == nil {
		return false
	}
	policy := g.Policy
	if policy == nil {
		policy = EnrichOnAccept
	}
	return policy(accepted)
}

// Enrich computes protection status and bank records for entry. Collaborator
// failures are logged and leave the corresponding field unset.
func (g *EnrichmentGate) Enrich(ctx context.Context, entry *MapEntry, script string) Enrichment {
	var result Enrichment
	if g == nil || entry == nil {
		return result
	}

	if g.Protection != nil {
		protected, err := g.Protection.IsProtected(ctx, entry.CachePath)
		if err != nil {
			logging.WarnWithContext(ctx, g.logger, "protection check failed",
				"protection_check_failed",
				logging.String("path", entry.CachePath),
				logging.String("map", entry.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "verify the archive is a valid MPQ file"),
				logging.String(logging.FieldImpact, "protection status left unknown"),
			)
		} else {
			result.IsProtected = &protected
		}
	}

	if g.Banks != nil {
		result.Banks = g.Banks.Extract(script)
	}
	return result
}
