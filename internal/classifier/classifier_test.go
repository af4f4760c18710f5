package classifier_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisioka/self-money/internal/classifier"
	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/testutil"
)

// stubAI answers with a fixed category name and counts invocations.
type stubAI struct {
	err    error
	answer string
	calls  int
	mu     sync.Mutex
}

func (s *stubAI) Classify(_ context.Context, _ string, _ []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubAI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestClassifyRuleWins(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費", "外食")
	ctx := context.Background()

	_, err := db.Storage.UpsertAutoRule(ctx, "スーパー", db.MustCategoryID("食費"))
	require.NoError(t, err)

	ai := &stubAI{answer: "外食"}
	c := classifier.New(db.Storage, nil, classifier.WithAIClient(ai))
	defer c.Close()

	result, err := c.Classify(ctx, "スーパーマーケット 渋谷店")
	require.NoError(t, err)

	assert.Equal(t, model.SourceRule, result.Source)
	assert.Equal(t, "食費", result.CategoryName)
	assert.Zero(t, ai.callCount(), "AI is not consulted when a rule matches")
}

func TestClassifyLongestKeywordWins(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費", "日用品")
	ctx := context.Background()

	_, err := db.Storage.UpsertAutoRule(ctx, "スーパー", db.MustCategoryID("食費"))
	require.NoError(t, err)
	_, err = db.Storage.UpsertAutoRule(ctx, "スーパードラッグ", db.MustCategoryID("日用品"))
	require.NoError(t, err)

	c := classifier.New(db.Storage, nil)
	defer c.Close()

	result, err := c.Classify(ctx, "スーパードラッグ 新宿店")
	require.NoError(t, err)
	assert.Equal(t, "日用品", result.CategoryName, "the more specific keyword takes precedence")
}

func TestClassifyAIMatch(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費", "交通費")
	ctx := context.Background()

	ai := &stubAI{answer: "交通費"}
	c := classifier.New(db.Storage, nil, classifier.WithAIClient(ai))
	defer c.Close()

	result, err := c.Classify(ctx, "JR東日本 モバイルSuica")
	require.NoError(t, err)

	assert.Equal(t, model.SourceAI, result.Source)
	assert.Equal(t, "交通費", result.CategoryName)
	assert.Equal(t, db.MustCategoryID("交通費"), result.CategoryID)
}

func TestClassifyAIResultCached(t *testing.T) {
	db := testutil.SetupTestDB(t, "交通費")
	ctx := context.Background()

	ai := &stubAI{answer: "交通費"}
	c := classifier.New(db.Storage, nil, classifier.WithAIClient(ai))
	defer c.Close()

	for range 3 {
		_, err := c.Classify(ctx, "JR東日本 モバイルSuica")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, ai.callCount(), "repeat descriptions hit the cache")
}

func TestClassifyAIErrorFallsBack(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	ctx := context.Background()

	ai := &stubAI{err: errors.New("quota exceeded")}
	c := classifier.New(db.Storage, nil, classifier.WithAIClient(ai))
	defer c.Close()

	result, err := c.Classify(ctx, "謎の引き落とし")
	require.NoError(t, err, "AI failures are absorbed")
	assert.Equal(t, model.SourceFallback, result.Source)
	assert.Equal(t, classifier.DefaultFallbackCategory, result.CategoryName)
}

func TestClassifyAIUnknownAnswerFallsBack(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	ctx := context.Background()

	ai := &stubAI{answer: "存在しないカテゴリ"}
	c := classifier.New(db.Storage, nil, classifier.WithAIClient(ai))
	defer c.Close()

	result, err := c.Classify(ctx, "謎の引き落とし")
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, result.Source)
}

func TestClassifyNoAIConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	c := classifier.New(db.Storage, nil)
	defer c.Close()

	result, err := c.Classify(ctx, "謎の引き落とし")
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, result.Source)
}

func TestFallbackCategoryCreatedOnDemand(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	c := classifier.New(db.Storage, nil, classifier.WithFallbackCategory("未分類"))
	defer c.Close()

	result, err := c.Classify(ctx, "謎の引き落とし")
	require.NoError(t, err)
	assert.Equal(t, "未分類", result.CategoryName)

	category, err := db.Storage.GetCategoryByName(ctx, "未分類")
	require.NoError(t, err)
	require.NotNil(t, category, "fallback category is persisted")
	assert.Equal(t, category.ID, result.CategoryID)

	// Second call reuses the created category.
	again, err := c.Classify(ctx, "別の謎の引き落とし")
	require.NoError(t, err)
	assert.Equal(t, result.CategoryID, again.CategoryID)
}

func TestClassifyBatch(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	ctx := context.Background()

	_, err := db.Storage.UpsertAutoRule(ctx, "スーパー", db.MustCategoryID("食費"))
	require.NoError(t, err)

	c := classifier.New(db.Storage, nil)
	defer c.Close()

	results, err := c.ClassifyBatch(ctx, []string{"スーパーマーケット", "謎の引き落とし"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, model.SourceRule, results[0].Source)
	assert.Equal(t, model.SourceFallback, results[1].Source)
}

func TestClassifyBatchEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)

	c := classifier.New(db.Storage, nil)
	defer c.Close()

	results, err := c.ClassifyBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
