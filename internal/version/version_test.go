package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mgnush/evsiren/internal/version"
)

func TestStringIncludesName(t *testing.T) {
	assert.Contains(t, version.String(), version.Name)
}

func TestStringNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, version.String())
}
