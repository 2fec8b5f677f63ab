package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

func fixtureRecord(fleet dispatch.FleetType, depot, week string, day int, plan, fact float64) dispatch.DispatchRecord {
	return dispatch.DispatchRecord{
		TimeValue:    dispatch.SnapshotTimeValue,
		NoFreeRoutes: dispatch.SnapshotNoFreeRoutes,
		Month:        "1",
		Depot:        depot,
		WeekName:     week,
		EndWeek:      time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
		Fleet:        fleet,
		Plan:         plan,
		Fact:         fact,
	}
}

// fixtureRecords yields a bus fleet at 85% with a +10 pp weekly delta and an
// electric fleet at 100% with no previous week.
func fixtureRecords() []dispatch.DispatchRecord {
	return []dispatch.DispatchRecord{
		fixtureRecord(dispatch.FleetBus, "Парк Б", "1_январь", 7, 6, 4),
		fixtureRecord(dispatch.FleetBus, "Парк А", "1_январь", 7, 4, 4),
		fixtureRecord(dispatch.FleetBus, "Парк А", "2_январь", 14, 10, 9),
		fixtureRecord(dispatch.FleetElectricBus, "Парк А", "2_январь", 14, 4, 4),
	}
}

type stubStore struct {
	mu          sync.Mutex
	records     []dispatch.DispatchRecord
	err         error
	loads       int
	invalidated int
	loadedAt    time.Time
}

func (s *stubStore) Records(context.Context) ([]dispatch.DispatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err == nil {
		s.loadedAt = time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(s.loads) * time.Minute)
	}
	return s.records, s.err
}

func (s *stubStore) Invalidate() {
	s.mu.Lock()
	s.invalidated++
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

func (s *stubStore) LoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
	last   map[string]map[string]any
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.last == nil {
		r.last = map[string]map[string]any{}
	}
	r.last[event] = payload
}

func sampleReport() dispatch.Report {
	report, err := dispatch.BuildReport(fixtureRecords(), dispatch.Selection{}, dispatch.ReportOptions{})
	if err != nil {
		panic(err)
	}
	return report
}

func widgetContext(code, fleet string) WidgetContext {
	return WidgetContext{
		Instance: WidgetInstance{
			ID:            fleet + "." + code,
			DefinitionID:  code,
			Configuration: map[string]any{"fleet": fleet},
		},
		Viewer:     ViewerContext{Locale: "ru"},
		Report:     sampleReport(),
		Translator: NewCatalogTranslator(DefaultLocale),
	}
}
