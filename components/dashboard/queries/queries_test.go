package queries

import (
	"context"
	"reflect"
	"testing"

	dashboard "github.com/goliatone/go-dispatch-dashboard/components/dashboard"
	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

type stubService struct {
	calls   int
	lastSel dispatch.Selection
}

func (s *stubService) Report(_ context.Context, sel dispatch.Selection) (dispatch.Report, error) {
	s.calls++
	s.lastSel = sel
	return dispatch.Report{}, nil
}

func (s *stubService) Filters(_ context.Context, sel dispatch.Selection) (dispatch.FilterStages, error) {
	s.calls++
	s.lastSel = sel
	return dispatch.FilterStages{Month: dispatch.FilterStage{Selected: []string{"3"}}}, nil
}

func (s *stubService) Page(_ context.Context, viewer dashboard.ViewerContext, sel dispatch.Selection) (dashboard.Page, error) {
	s.calls++
	s.lastSel = sel
	return dashboard.Page{Title: viewer.Locale}, nil
}

func TestReportQuery(t *testing.T) {
	service := &stubService{}
	sel := dispatch.Selection{Depots: []string{"Парк 1"}}
	if _, err := NewReportQuery(service).Query(context.Background(), sel); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || !reflect.DeepEqual(service.lastSel, sel) {
		t.Fatalf("expected selection to be forwarded, got %+v", service.lastSel)
	}
}

func TestFiltersQuery(t *testing.T) {
	service := &stubService{}
	stages, err := NewFiltersQuery(service).Query(context.Background(), dispatch.Selection{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if got := stages.Month.Selected; len(got) != 1 || got[0] != "3" {
		t.Fatalf("unexpected stages %+v", stages)
	}
}

func TestPageQuery(t *testing.T) {
	service := &stubService{}
	page, err := NewPageQuery(service).Query(context.Background(), PageInput{
		Viewer:    dashboard.ViewerContext{Locale: "en"},
		Selection: dispatch.Selection{Weeks: []string{}},
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if page.Title != "en" {
		t.Fatalf("expected viewer to be forwarded, got %q", page.Title)
	}
	if service.lastSel.Weeks == nil {
		t.Fatalf("expected empty week selection to stay non-nil")
	}
}
