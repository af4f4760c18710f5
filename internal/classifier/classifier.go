// Package classifier assigns categories to transaction descriptions through
// a three-stage cascade: keyword rules, then an AI suggestion, then a
// configurable fallback category.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/service"
)

// DefaultFallbackCategory is used when no fallback is configured.
const DefaultFallbackCategory = "uncategorized"

// Store is the storage surface the classifier needs.
type Store interface {
	GetAutoRules(ctx context.Context) ([]model.AutoRule, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
}

// Classifier runs the classification cascade. The AI stage is optional and
// fail-soft: any AI error demotes the decision to the fallback category
// rather than failing the caller.
type Classifier struct {
	store    Store
	ai       service.AIClient
	cache    *resultCache
	logger   *slog.Logger
	fallback string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAIClient enables the AI stage.
func WithAIClient(ai service.AIClient) Option {
	return func(c *Classifier) { c.ai = ai }
}

// WithFallbackCategory overrides the fallback category name.
func WithFallbackCategory(name string) Option {
	return func(c *Classifier) {
		if name != "" {
			c.fallback = name
		}
	}
}

// WithCacheTTL overrides how long AI results are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Classifier) {
		c.cache.Close()
		c.cache = newResultCache(ttl)
	}
}

// New creates a classifier.
func New(store Store, logger *slog.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Classifier{
		store:    store,
		cache:    newResultCache(0),
		logger:   logger,
		fallback: DefaultFallbackCategory,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the cache.
func (c *Classifier) Close() {
	c.cache.Close()
}

// Classify resolves one description to a category. Rules always win; ties
// between matching rules go to the longest keyword. The AI stage only runs
// when no rule matches, and its failures are absorbed.
func (c *Classifier) Classify(ctx context.Context, description string) (*model.ClassificationResult, error) {
	if result, err := c.classifyByRule(ctx, description); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	cacheKey := strings.TrimSpace(description)
	if cached, ok := c.cache.get(cacheKey); ok {
		return &cached, nil
	}

	if result := c.classifyByAI(ctx, description); result != nil {
		c.cache.set(cacheKey, *result)
		return result, nil
	}

	return c.fallbackResult(ctx)
}

// ClassifyBatch classifies descriptions one at a time, preserving order.
func (c *Classifier) ClassifyBatch(ctx context.Context, descriptions []string) ([]model.ClassificationResult, error) {
	results := make([]model.ClassificationResult, 0, len(descriptions))
	for _, description := range descriptions {
		result, err := c.Classify(ctx, description)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (c *Classifier) classifyByRule(ctx context.Context, description string) (*model.ClassificationResult, error) {
	rules, err := c.store.GetAutoRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	// Longer keywords are more specific, so they take precedence.
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].Keyword) > len(rules[j].Keyword)
	})

	for i := range rules {
		if strings.Contains(description, rules[i].Keyword) {
			return &model.ClassificationResult{
				CategoryID:   rules[i].CategoryID,
				CategoryName: rules[i].CategoryName,
				Source:       model.SourceRule,
			}, nil
		}
	}
	return nil, nil
}

func (c *Classifier) classifyByAI(ctx context.Context, description string) *model.ClassificationResult {
	if c.ai == nil {
		return nil
	}

	categories, err := c.store.GetCategories(ctx)
	if err != nil {
		c.logger.Warn("failed to load categories for AI classification", "error", err)
		return nil
	}
	if len(categories) == 0 {
		return nil
	}

	names := make([]string, len(categories))
	byName := make(map[string]*model.Category, len(categories))
	for i := range categories {
		names[i] = categories[i].Name
		byName[categories[i].Name] = &categories[i]
	}

	suggested, err := c.ai.Classify(ctx, description, names)
	if err != nil {
		c.logger.Warn("AI classification failed", "description", description, "error", err)
		return nil
	}
	if suggested == "" {
		return nil
	}

	category, ok := byName[suggested]
	if !ok {
		c.logger.Warn("AI suggested an unknown category", "suggested", suggested)
		return nil
	}

	return &model.ClassificationResult{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Source:       model.SourceAI,
	}
}

// fallbackResult resolves the fallback category, creating it on first use.
func (c *Classifier) fallbackResult(ctx context.Context) (*model.ClassificationResult, error) {
	category, err := c.store.GetCategoryByName(ctx, c.fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to look up fallback category: %w", err)
	}
	if category == nil {
		category, err = c.store.CreateCategory(ctx, c.fallback)
		if err != nil {
			return nil, fmt.Errorf("failed to create fallback category: %w", err)
		}
	}

	return &model.ClassificationResult{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Source:       model.SourceFallback,
	}, nil
}
