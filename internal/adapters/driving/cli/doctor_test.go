package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

func TestDoctor_AllOK(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "doctor")

	require.NoError(t, err)
	assert.Contains(t, out, "500 words, 100 overlap")
	assert.Contains(t, out, "window 6")
	assert.Contains(t, out, "up to 64 cached")
	assert.Contains(t, out, "Ollama (local) / bge-m3: ok")
	assert.Contains(t, out, "All checks passed.")
}

func TestDoctor_Unreachable(t *testing.T) {
	ts := setupTestServices(t)
	ts.validator.llmErr = errProviderDown

	out, err := execute(t, "", "doctor")

	assert.ErrorIs(t, err, errDoctorFailed)
	assert.Contains(t, out, "unreachable (connection refused)")
}

func TestDoctor_NotConfigured(t *testing.T) {
	ts := setupTestServices(t)
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}
	settings.Sessions.Capacity = 0
	SetServices(Services{AIValidator: ts.validator, Settings: settings})

	out, err := execute(t, "", "doctor")

	assert.ErrorIs(t, err, errDoctorFailed)
	assert.Contains(t, out, "not configured")
	assert.Contains(t, out, "unbounded")
}
