package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLocalID(t *testing.T) {
	valid := []string{"m-603", "s-1396", "a-21"}
	for _, id := range valid {
		assert.NoError(t, ValidateLocalID(id), id)
	}

	invalid := []string{"", "603", "m603", "x-5", "m-", "m-abc", "M-603"}
	for _, id := range invalid {
		assert.Error(t, ValidateLocalID(id), id)
	}
}

func TestValidateLimit(t *testing.T) {
	assert.NoError(t, ValidateLimit(1))
	assert.NoError(t, ValidateLimit(100))
	assert.Error(t, ValidateLimit(0))
	assert.Error(t, ValidateLimit(101))
}

func TestValidateMediaType(t *testing.T) {
	for _, mt := range []string{"movie", "tv", "series", "anime"} {
		assert.NoError(t, ValidateMediaType(mt))
	}
	assert.Error(t, ValidateMediaType("podcast"))
	assert.Error(t, ValidateMediaType(""))
}

func TestValidateSceneGuess(t *testing.T) {
	valid := `{"title":"Inception","media_type":"movie","year":2010,"confidence":0.85,"explanation":"spinning top"}`
	assert.NoError(t, ValidateSceneGuess([]byte(valid)))

	minimal := `{"title":"Inception","media_type":"movie","confidence":0.5}`
	assert.NoError(t, ValidateSceneGuess([]byte(minimal)))

	cases := map[string]string{
		"missing title":      `{"media_type":"movie","confidence":0.5}`,
		"bad media type":     `{"title":"X","media_type":"podcast","confidence":0.5}`,
		"confidence too big": `{"title":"X","media_type":"movie","confidence":1.5}`,
		"extra field":        `{"title":"X","media_type":"movie","confidence":0.5,"spoilers":true}`,
		"empty title":        `{"title":"","media_type":"movie","confidence":0.5}`,
	}
	for name, payload := range cases {
		assert.Error(t, ValidateSceneGuess([]byte(payload)), name)
	}
}
