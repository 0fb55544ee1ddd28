package repository

import (
	"testing"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestOrderByIDs(t *testing.T) {
	metrics := []domain.Metric{
		{ID: 1, Name: "Accuracy"},
		{ID: 2, Name: "Fluency"},
		{ID: 3, Name: "Tone"},
	}

	got := OrderByIDs(metrics, []int64{3, 99, 1, 3})

	names := make([]string, 0, len(got))
	for _, m := range got {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Tone", "Accuracy", "Tone"}, names)
	assert.Empty(t, OrderByIDs(metrics, nil))
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString(nil).Valid)

	w := "8"
	ns := nullString(&w)
	assert.True(t, ns.Valid)
	assert.Equal(t, "8", ns.String)
}
