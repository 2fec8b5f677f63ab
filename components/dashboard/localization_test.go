package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslationService struct {
	value string
	err   error
}

func (s stubTranslationService) Translate(context.Context, string, string, map[string]any) (string, error) {
	return s.value, s.err
}

func TestResolveLocalizedValue(t *testing.T) {
	values := map[string]string{
		"en":    "Bus fleet",
		"ru":    "Автобусный парк",
		"ru-by": "Аўтобусны парк",
	}
	assert.Equal(t, "Аўтобусны парк", ResolveLocalizedValue(values, "ru-BY", "fallback"))
	assert.Equal(t, "Автобусный парк", ResolveLocalizedValue(values, "ru_RU", "fallback"))
	assert.Equal(t, "fallback", ResolveLocalizedValue(values, "de", "fallback"))
	assert.Equal(t, "fallback", ResolveLocalizedValue(nil, "ru", "fallback"))
}

func TestTranslateOrFallback(t *testing.T) {
	ctx := context.Background()
	out := translateOrFallback(ctx, stubTranslationService{value: "Парк"}, "dispatch.area.bus", "ru", "Fleet", nil)
	assert.Equal(t, "Парк", out)

	out = translateOrFallback(ctx, stubTranslationService{err: errors.New("boom")}, "dispatch.area.bus", "ru", "Fleet", nil)
	assert.Equal(t, "Fleet", out)

	assert.Equal(t, "dispatch.area.bus", translateOrFallback(ctx, nil, "dispatch.area.bus", "ru", "", nil))
}

func TestCatalogTranslator(t *testing.T) {
	ctx := context.Background()
	tr := NewCatalogTranslator(DefaultLocale)

	title, err := tr.Translate(ctx, KeyPageTitle, "ru", nil)
	require.NoError(t, err)
	assert.Equal(t, "3: Эффективность использования парка", title)

	header, err := tr.Translate(ctx, KeyAreaElectricBus, "en-GB", nil)
	require.NoError(t, err)
	assert.Equal(t, "Electric bus fleet", header)

	fallback, err := tr.Translate(ctx, KeyAreaBus, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Автобусный парк", fallback)

	_, err = tr.Translate(ctx, "dispatch.unknown", "ru", nil)
	assert.Error(t, err)
}

func TestLocalizedLabelFallsBackToBundledMessage(t *testing.T) {
	label := localizedLabel(context.Background(), nil, KeyFulfillmentLabel, "en")
	assert.Equal(t, "Выполнение плана выпуска", label)
}
