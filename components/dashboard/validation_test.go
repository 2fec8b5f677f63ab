package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidatorFleetEnum(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def, ok := NewRegistry(nil).Definition(WidgetReleaseDeviation)
	require.True(t, ok)

	require.NoError(t, validator.Validate(def, map[string]any{"fleet": "bus"}))
	require.NoError(t, validator.Validate(def, map[string]any{"fleet": "electric_bus"}))
	assert.Error(t, validator.Validate(def, map[string]any{"fleet": "tram"}))
	assert.Error(t, validator.Validate(def, map[string]any{}))
	assert.Error(t, validator.Validate(def, map[string]any{"fleet": "bus", "extra": 1}))
}

func TestJSONSchemaValidatorCachesCompiledSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{
		Code:   "demo.widget.cache",
		Schema: map[string]any{"type": "object"},
	}
	require.NoError(t, validator.Validate(def, nil))
	assert.Len(t, validator.compiled, 1)
	require.NoError(t, validator.Validate(def, map[string]any{}))
	assert.Len(t, validator.compiled, 1)
}

func TestValidateInstances(t *testing.T) {
	registry := NewRegistry(nil)
	validator := NewJSONSchemaValidator()

	require.NoError(t, ValidateInstances(registry, validator, DefaultWidgetInstances()))

	err := ValidateInstances(registry, validator, []WidgetInstance{
		{ID: "a", DefinitionID: "missing.widget"},
		{ID: "b", DefinitionID: WidgetReleaseBars, Configuration: map[string]any{"fleet": "tram"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownWidget)
	assert.Contains(t, err.Error(), "instance b")
}
