package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

func TestIsNearby(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		level int
		want  bool
	}{
		{name: "same prefix", a: "12345", b: "12399", level: 3, want: true},
		{name: "different prefix", a: "12345", b: "13345", level: 3, want: false},
		{name: "level one", a: "12345", b: "19999", level: 1, want: true},
		{name: "empty code", a: "", b: "12345", level: 3, want: false},
		{name: "both empty", a: "", b: "", level: 3, want: false},
		{name: "short codes equal", a: "12", b: "12", level: 3, want: true},
		{name: "short against long", a: "12", b: "123", level: 3, want: false},
		{name: "case insensitive", a: "sw1a 1aa", b: "SW1B 2BB", level: 3, want: true},
		{name: "default level", a: "12345", b: "12300", level: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNearby(tt.a, tt.b, tt.level))
		})
	}
}

func TestTitleSimilarity(t *testing.T) {
	assert.InDelta(t, 2.0/7.0, TitleSimilarity("saw", "axle"), 1e-9)
	assert.InDelta(t, 1.0, TitleSimilarity("Ladder", "ladder"), 1e-9)
	assert.InDelta(t, 0.0, TitleSimilarity("abc", "xyz"), 1e-9)
}

func TestScoreMatch(t *testing.T) {
	offer := &domain.Listing{Kind: domain.KindOffer, Title: "axle", Subcategory: "tools"}
	request := &domain.Listing{Kind: domain.KindRequest, Title: "saw", Subcategory: "tools"}

	t.Run("subcategory, title and proximity", func(t *testing.T) {
		assert.InDelta(t, 0.75, ScoreMatch(offer, request, "12345", "12399", 3), 1e-9)
	})

	t.Run("deterministic", func(t *testing.T) {
		first := ScoreMatch(offer, request, "12345", "12399", 3)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, ScoreMatch(offer, request, "12345", "12399", 3))
		}
	})

	t.Run("empty subcategory never matches", func(t *testing.T) {
		o := &domain.Listing{Title: "x"}
		r := &domain.Listing{Title: "y"}
		assert.InDelta(t, 0.0, ScoreMatch(o, r, "", "", 3), 1e-9)
	})

	t.Run("bounded", func(t *testing.T) {
		o := &domain.Listing{Title: "drill", Subcategory: "tools"}
		r := &domain.Listing{Title: "drill", Subcategory: "tools"}
		score := ScoreMatch(o, r, "123", "123", 3)
		assert.InDelta(t, 1.0, score, 1e-9)
		assert.LessOrEqual(t, score, 1.0+1e-9)
	})
}
