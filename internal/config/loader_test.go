package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("CQA_TEST_HOST", "db.internal")

	t.Run("env var set", func(t *testing.T) {
		assert.Equal(t, "host: db.internal", expandEnv("host: ${CQA_TEST_HOST:localhost}"))
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.Equal(t, "host: localhost", expandEnv("host: ${CQA_TEST_MISSING:localhost}"))
	})

	t.Run("empty default", func(t *testing.T) {
		assert.Equal(t, "password: ", expandEnv("password: ${CQA_TEST_MISSING:}"))
	})

	t.Run("no default keeps placeholder", func(t *testing.T) {
		assert.Equal(t, "key: ${CQA_TEST_MISSING}", expandEnv("key: ${CQA_TEST_MISSING}"))
	})
}
