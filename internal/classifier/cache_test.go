package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nisioka/self-money/internal/model"
)

func TestResultCache(t *testing.T) {
	cache := newResultCache(time.Minute)
	defer cache.Close()

	_, ok := cache.get("スーパー")
	assert.False(t, ok)

	want := model.ClassificationResult{
		CategoryID:   1,
		CategoryName: "食費",
		Source:       model.SourceAI,
	}
	cache.set("スーパー", want)

	got, ok := cache.get("スーパー")
	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, cache.size())
}

func TestResultCacheExpiry(t *testing.T) {
	cache := newResultCache(10 * time.Millisecond)
	defer cache.Close()

	cache.set("スーパー", model.ClassificationResult{CategoryID: 1})
	time.Sleep(20 * time.Millisecond)

	_, ok := cache.get("スーパー")
	assert.False(t, ok, "expired entries are not served")
}
