// Package rules holds the ordered keyword rule list shared between callers
// that edit it and organize runs that read it.
package rules

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/errors"
	"github.com/listenupapp/autosort/internal/validation"
)

// Persister loads and saves a rule list.
type Persister interface {
	Load() ([]domain.Rule, error)
	Save(rules []domain.Rule) error
}

// Set is an ordered, concurrency-safe rule list. Organize runs take a
// Snapshot at start so edits never change a sweep midway.
type Set struct {
	mu        sync.RWMutex
	rules     []domain.Rule
	persister Persister
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSet creates a set seeded with initial rules. When persister is non-nil,
// every successful mutation is saved through it.
func NewSet(initial []domain.Rule, persister Persister, logger *slog.Logger) (*Set, error) {
	s := &Set{
		persister: persister,
		validator: validation.New(),
		logger:    logger,
	}

	normalized := make([]domain.Rule, 0, len(initial))
	for i, r := range initial {
		r, err := s.normalize(r)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeConfig, "rule %d", i)
		}
		normalized = append(normalized, r)
	}
	s.rules = normalized

	return s, nil
}

// Open loads rules through persister and returns a set that saves back to it.
func Open(persister Persister, logger *slog.Logger) (*Set, error) {
	initial, err := persister.Load()
	if err != nil {
		return nil, err
	}
	return NewSet(initial, persister, logger)
}

// Snapshot returns a copy of the current rules.
func (s *Set) Snapshot() []domain.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rules)
}

// Len returns the number of rules.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Add validates and appends a rule.
func (s *Set) Add(rule domain.Rule) (domain.Rule, error) {
	rule, err := s.normalize(rule)
	if err != nil {
		return domain.Rule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(slices.Clone(s.rules), rule)
	if err := s.save(next); err != nil {
		return domain.Rule{}, err
	}
	s.rules = next

	s.logger.Info("rule added", "rule", rule.String(), "rules", len(next))
	return rule, nil
}

// Remove deletes the rule at index.
func (s *Set) Remove(index int) (domain.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rules) {
		return domain.Rule{}, errors.NotFoundf("rule %d does not exist", index)
	}

	removed := s.rules[index]
	next := slices.Delete(slices.Clone(s.rules), index, index+1)
	if err := s.save(next); err != nil {
		return domain.Rule{}, err
	}
	s.rules = next

	s.logger.Info("rule removed", "rule", removed.String(), "rules", len(next))
	return removed, nil
}

// Replace swaps the whole list after validating every rule.
func (s *Set) Replace(rules []domain.Rule) error {
	next := make([]domain.Rule, 0, len(rules))
	for _, r := range rules {
		r, err := s.normalize(r)
		if err != nil {
			return err
		}
		next = append(next, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(next); err != nil {
		return err
	}
	s.rules = next
	return nil
}

// save must be called with mu held.
func (s *Set) save(rules []domain.Rule) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(rules); err != nil {
		return errors.Wrap(err, errors.CodeIO, "save rules")
	}
	return nil
}

func (s *Set) normalize(rule domain.Rule) (domain.Rule, error) {
	rule.Keyword = strings.TrimSpace(rule.Keyword)
	rule.Destination = strings.TrimSpace(rule.Destination)
	if err := s.validator.Validate(rule); err != nil {
		return domain.Rule{}, err
	}
	rule.Destination = filepath.Clean(filepath.FromSlash(strings.ReplaceAll(rule.Destination, "\\", "/")))
	return rule, nil
}
