package cases

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delbarteam/delbar-api/internal/models"
)

func TestGenerateCase(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cs := GenerateCase(42, now)

	assert.Equal(t, 42, cs.ID)
	assert.True(t, strings.HasPrefix(cs.Name, "کیس شماره 42 - "))
	assert.Contains(t, cs.Image, "seq=42")
	assert.Equal(t, "temporary", cs.Category)
	assert.Equal(t, 500000, cs.Price)
	assert.Equal(t, models.CaseStatusActive, cs.Status)
	assert.True(t, cs.Verified)
	assert.True(t, cs.Online)
	assert.True(t, cs.IsPersistent)

	// Возраст и рост в продуктовых диапазонах
	assert.GreaterOrEqual(t, cs.Age, 20)
	assert.LessOrEqual(t, cs.Age, 34)
	assert.Regexp(t, `^\d+ سانتی متر$`, cs.Height)

	assert.Contains(t, bankLocations, cs.Location)
	assert.Contains(t, bankSkinColors, cs.SkinColor)
	assert.Contains(t, bankExperienceLevels, cs.ExperienceLevel)
	assert.NotEmpty(t, cs.PersonalityTraits)
	assert.NotEmpty(t, cs.Description)

	require.NotEmpty(t, cs.Comments)
	for _, comment := range cs.Comments {
		assert.NotEmpty(t, comment.Name)
		assert.NotEmpty(t, comment.Comment)
		assert.GreaterOrEqual(t, comment.Rating, 4)
	}

	assert.Equal(t, now, cs.CreatedAt)
	assert.NotNil(t, cs.Details)
}

func TestGenerateCaseUniquePerID(t *testing.T) {
	now := time.Now()
	for _, id := range []int{1, 7, 1000} {
		cs := GenerateCase(id, now)
		assert.Equal(t, id, cs.ID)
		assert.Contains(t, cs.Name, fmt.Sprintf("کیس شماره %d", id))
	}
}

func TestPickSetBounds(t *testing.T) {
	// Маленький банк заставляет выборку перебирать повторы
	for _, bank := range [][]string{bankTraits, bankSkinColors} {
		for i := 0; i < 50; i++ {
			set := pickSet(bank)
			assert.GreaterOrEqual(t, len(set), 2)
			assert.LessOrEqual(t, len(set), 4)

			seen := map[string]bool{}
			for _, v := range set {
				assert.False(t, seen[v], "дубликат %s", v)
				seen[v] = true
			}
		}
	}
}
