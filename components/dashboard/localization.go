package dashboard

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// TranslationService exposes locale-aware translation helpers. Providers and
// transports only depend on this interface.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// DefaultLocale is used when a viewer does not request one.
const DefaultLocale = "ru"

// Translation keys used by the page and widgets.
const (
	KeyPageTitle          = "dispatch.page.title"
	KeyPageCaveat         = "dispatch.page.caveat"
	KeyFiltersHeader      = "dispatch.filter.header"
	KeyFilterDepot        = "dispatch.filter.depot"
	KeyFilterMonth        = "dispatch.filter.month"
	KeyFilterWeek         = "dispatch.filter.week"
	KeyAreaBus            = "dispatch.area.bus"
	KeyAreaElectricBus    = "dispatch.area.electric_bus"
	KeyChartTitle         = "dispatch.chart.title"
	KeyDeviationLabel     = "dispatch.widget.deviation"
	KeyFulfillmentLabel   = "dispatch.widget.fulfillment"
	KeyDeltaLabel         = "dispatch.widget.delta"
	KeyCategoryPlan       = "dispatch.category.plan"
	KeyCategoryFact       = "dispatch.category.fact"
	KeyReload             = "dispatch.action.reload"
	KeyApply              = "dispatch.action.apply"
	errUnknownTranslation = "dashboard: no translation for %q"
)

var defaultMessages = map[language.Tag]map[string]string{
	language.Russian: {
		KeyPageTitle:        "3: Эффективность использования парка",
		KeyPageCaveat:       "ВНИМАНИЕ! Дорабатывается и дополняется для валидации, целевой дэшборд будет иметь другой вид !",
		KeyFiltersHeader:    "Фильтры",
		KeyFilterDepot:      "Парк:",
		KeyFilterMonth:      "Месяц:",
		KeyFilterWeek:       "Неделя:",
		KeyAreaBus:          "Автобусный парк",
		KeyAreaElectricBus:  "Электробусный парк",
		KeyChartTitle:       "Выполнение плана выпуска",
		KeyDeviationLabel:   "Отклонение от плана",
		KeyFulfillmentLabel: "Выполнение плана выпуска",
		KeyDeltaLabel:       "к прошлой неделе",
		KeyCategoryPlan:     "План",
		KeyCategoryFact:     "Факт",
		KeyReload:           "Обновить данные",
		KeyApply:            "Применить",
	},
	language.English: {
		KeyPageTitle:        "3: Fleet utilisation efficiency",
		KeyPageCaveat:       "WARNING! This dashboard is still being extended for validation; the target layout will differ.",
		KeyFiltersHeader:    "Filters",
		KeyFilterDepot:      "Depot:",
		KeyFilterMonth:      "Month:",
		KeyFilterWeek:       "Week:",
		KeyAreaBus:          "Bus fleet",
		KeyAreaElectricBus:  "Electric bus fleet",
		KeyChartTitle:       "Release plan fulfilment",
		KeyDeviationLabel:   "Deviation from plan",
		KeyFulfillmentLabel: "Release plan fulfilment",
		KeyDeltaLabel:       "vs previous week",
		KeyCategoryPlan:     "Plan",
		KeyCategoryFact:     "Fact",
		KeyReload:           "Reload data",
		KeyApply:            "Apply",
	},
}

// CatalogTranslator serves the built-in ru/en strings through an x/text
// message catalog.
type CatalogTranslator struct {
	catalog  *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
	keys     map[string]struct{}
}

// NewCatalogTranslator builds a translator for the bundled messages. Unknown
// locales resolve to fallback.
func NewCatalogTranslator(fallback string) *CatalogTranslator {
	fallbackTag := language.Russian
	if tag, err := language.Parse(fallback); err == nil {
		fallbackTag = tag
	}
	builder := catalog.NewBuilder(catalog.Fallback(fallbackTag))
	keys := map[string]struct{}{}
	tags := []language.Tag{fallbackTag}
	for tag, messages := range defaultMessages {
		if tag != fallbackTag {
			tags = append(tags, tag)
		}
		for key, msg := range messages {
			_ = builder.SetString(tag, key, msg)
			keys[key] = struct{}{}
		}
	}
	return &CatalogTranslator{
		catalog:  builder,
		matcher:  language.NewMatcher(tags),
		fallback: fallbackTag,
		keys:     keys,
	}
}

// Translate implements TranslationService.
func (t *CatalogTranslator) Translate(_ context.Context, key, locale string, _ map[string]any) (string, error) {
	if _, ok := t.keys[key]; !ok {
		return "", fmt.Errorf(errUnknownTranslation, key)
	}
	tag := t.fallback
	if locale = normalizeLocale(locale); locale != "" {
		tag, _ = language.MatchStrings(t.matcher, locale)
	}
	printer := message.NewPrinter(tag, message.Catalog(t.catalog))
	return printer.Sprintf(key), nil
}

// ResolveLocalizedValue selects the best translation for the provided locale
// and falls back to the supplied value. Language-region pairs (`ru-ru`) fall
// back to their base language.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	if value, ok := values["default"]; ok && value != "" {
		return value
	}
	return fallback
}

func (def *WidgetDefinition) normalizeLocalizedFields() {
	def.NameLocalized = normalizeLocaleMap(def.NameLocalized)
	def.DescriptionLocalized = normalizeLocaleMap(def.DescriptionLocalized)
}

// NameForLocale returns the display name for the requested locale.
func (def WidgetDefinition) NameForLocale(locale string) string {
	return ResolveLocalizedValue(def.NameLocalized, locale, def.Name)
}

// DescriptionForLocale returns the localized description if available.
func (def WidgetDefinition) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(def.DescriptionLocalized, locale, def.Description)
}

// NameForLocale returns the area title for the requested locale.
func (def WidgetAreaDefinition) NameForLocale(locale string) string {
	return ResolveLocalizedValue(def.NameLocalized, locale, def.Name)
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeLocale(key)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string, params map[string]any) string {
	if svc != nil {
		if translated, err := svc.Translate(ctx, key, locale, params); err == nil && translated != "" {
			return translated
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// localizedLabel translates key and falls back to the bundled default-locale message.
func localizedLabel(ctx context.Context, svc TranslationService, key, locale string) string {
	return translateOrFallback(ctx, svc, key, locale, defaultMessages[language.Russian][key], nil)
}
