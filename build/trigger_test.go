package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger(t *testing.T) {
	t.Run("extracts fields and derives repo path", func(t *testing.T) {
		body := []byte(`{
			"git_branch": "feature/scoring",
			"user_username": "z00123456",
			"project": {"web_url": "https://codehub.huawei.com/innersource/x"}
		}`)

		trigger, err := ParseTrigger(body)
		require.NoError(t, err)
		assert.Equal(t, "feature/scoring", trigger.GitBatch)
		assert.Equal(t, "z00123456", trigger.UserUsername)
		assert.Equal(t, "innersource/x", trigger.RepoPath)
	})

	t.Run("falls back when marker is absent", func(t *testing.T) {
		body := []byte(`{
			"git_branch": "main",
			"user_username": "z00123456",
			"project": {"web_url": "https://github.com/some/repo"}
		}`)

		trigger, err := ParseTrigger(body)
		require.NoError(t, err)
		assert.Equal(t, fallbackRepoPath, trigger.RepoPath)
	})

	t.Run("falls back on missing project", func(t *testing.T) {
		trigger, err := ParseTrigger([]byte(`{"git_branch": "main", "user_username": "zx"}`))
		require.NoError(t, err)
		assert.Equal(t, fallbackRepoPath, trigger.RepoPath)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		_, err := ParseTrigger([]byte(`{not json`))
		require.Error(t, err)
	})
}
