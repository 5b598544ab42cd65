package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	c := NewCatalogService()

	assert.Len(t, c.Crops(), 8)
	assert.Len(t, c.Features(), 6)
	assert.Len(t, c.Languages(), 7)

	s := c.Schemes()
	assert.Len(t, s, 6)
	for _, scheme := range s {
		assert.True(t, strings.HasPrefix(scheme.URL, "https://"), scheme.Name)
	}

	// callers get copies
	s[0].Name = "changed"
	assert.Equal(t, "PM-KISAN", c.Schemes()[0].Name)
}
