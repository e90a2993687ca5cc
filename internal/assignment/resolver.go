// Package assignment picks the support team responsible for a new ticket.
package assignment

import (
	"context"
	"sort"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// RuleLister returns active rules that may match the given system and
// category, each with its team joined. Over-fetching is allowed; the resolver
// filters again.
type RuleLister interface {
	ListActiveCandidates(ctx context.Context, systemID, categoryID *string) ([]domain.AssignmentRule, error)
}

// Result is the chosen team. Both fields are nil when nothing matched.
type Result struct {
	TeamID   *string
	TeamName *string
}

// Resolver evaluates assignment rules.
type Resolver struct {
	rules RuleLister
}

// NewResolver constructs a resolver over the given rule source.
func NewResolver(rules RuleLister) *Resolver {
	return &Resolver{rules: rules}
}

// ResolveTeam returns the team of the highest ranked eligible rule. Ranking is
// priority descending then creation time ascending. Rules whose team is
// inactive are skipped.
func (r *Resolver) ResolveTeam(ctx context.Context, systemID, categoryID *string) (Result, error) {
	systemID, categoryID = clean(systemID), clean(categoryID)

	rules, err := r.rules.ListActiveCandidates(ctx, systemID, categoryID)
	if err != nil {
		return Result{}, err
	}
	candidates := Candidates(rules, systemID, categoryID)
	Rank(candidates)

	for _, rule := range candidates {
		if !rule.Team.IsActive {
			continue
		}
		id, name := rule.Team.ID, rule.Team.Name
		if id == "" {
			id = rule.TeamID
		}
		return Result{TeamID: &id, TeamName: &name}, nil
	}
	return Result{}, nil
}

// Candidates keeps active rules that match in one of four ways: exact system
// and category, system only, category only, or default.
func Candidates(rules []domain.AssignmentRule, systemID, categoryID *string) []domain.AssignmentRule {
	out := make([]domain.AssignmentRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive && matches(rule, systemID, categoryID) {
			out = append(out, rule)
		}
	}
	return out
}

func matches(rule domain.AssignmentRule, systemID, categoryID *string) bool {
	switch {
	case rule.SystemID != nil && rule.CategoryID != nil:
		return equal(rule.SystemID, systemID) && equal(rule.CategoryID, categoryID)
	case rule.SystemID != nil:
		return equal(rule.SystemID, systemID)
	case rule.CategoryID != nil:
		return equal(rule.CategoryID, categoryID)
	default:
		return true
	}
}

// Rank orders rules in evaluation order. ID breaks remaining ties so the
// result does not depend on storage order.
func Rank(rules []domain.AssignmentRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func equal(rule, input *string) bool {
	return input != nil && *rule == *input
}

func clean(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
