package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageRegistry(t *testing.T) {
	expected := []string{Discovery, Drafting, Refinement, Publication, Finalize}

	for _, name := range expected {
		def, ok := StageRegistry[name]
		require.True(t, ok, "Stage %s should be in registry", name)
		assert.Equal(t, name, def.Name)
		assert.NotEmpty(t, def.Category)
	}
}

func TestOrderAndCount(t *testing.T) {
	assert.Equal(t, []string{Discovery, Drafting, Refinement, Publication}, Order())
	assert.Equal(t, 4, Count())

	for i, name := range Order() {
		assert.Equal(t, i+1, StageRegistry[name].Number)
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, Drafting, Next(Discovery))
	assert.Equal(t, Finalize, Next(Publication))
	assert.Equal(t, Finalize, Next(Finalize))
	assert.Equal(t, Finalize, Next("unknown"))
}

func TestOnlyDiscoveryIsNonFatal(t *testing.T) {
	for _, name := range Order() {
		assert.Equal(t, name != Discovery, StageRegistry[name].Fatal, name)
	}
}

func TestValidateDependencies(t *testing.T) {
	completed := map[string]bool{Discovery: true}

	require.NoError(t, ValidateDependencies(Discovery, nil))
	require.NoError(t, ValidateDependencies(Drafting, completed))

	err := ValidateDependencies(Refinement, completed)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, Refinement, depErr.Stage)
	assert.Equal(t, []string{Drafting}, depErr.MissingDependencies)
	assert.Contains(t, err.Error(), "missing dependencies")

	assert.Error(t, ValidateDependencies("unknown", completed))
}
