package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskedEnviron(t *testing.T) {
	lines := maskedEnviron([]string{
		"PATH=/usr/bin",
		"DB_PASSWORD=hunter2",
		"EMPTY",
		"AWS_SECRET_ACCESS_KEY=abc=def",
		"HOME=/root",
	})

	assert.Equal(t, []string{
		"AWS_SECRET_ACCESS_KEY: ********",
		"DB_PASSWORD: ********",
		"EMPTY: ",
		"HOME: /root",
		"PATH: /usr/bin",
	}, lines)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version())
}
