package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsConfig(t *testing.T) {
	all := corsConfig([]string{"https://app.example.com", "*"})
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)
	assert.NoError(t, all.Validate())

	listed := corsConfig([]string{"https://app.example.com"})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"https://app.example.com"}, listed.AllowOrigins)
	assert.NoError(t, listed.Validate())
}
