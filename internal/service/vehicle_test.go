package service

import (
	"context"
	"testing"

	"github.com/logbookhq/logbook/internal/model"
	"github.com/logbookhq/logbook/internal/session"
)

func TestSearchRequiresACriterion(t *testing.T) {
	tests := []struct {
		name     string
		criteria model.Criteria
	}{
		{"all empty", model.Criteria{}},
		{"whitespace only", model.Criteria{LogbookNumber: "  ", OwnerName: "\t", RegoNumber: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{}
			svc := NewVehicleService(gw)

			_, err := svc.Search(context.Background(), tt.criteria)
			if !model.IsKind(err, model.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if gw.calls != 0 {
				t.Errorf("expected no gateway call, got %d", gw.calls)
			}
		})
	}
}

func TestSearchTrimsCriteria(t *testing.T) {
	gw := &stubGateway{searchResults: []model.VehicleRecord{{LogbookNumber: "LB-100"}}}
	svc := NewVehicleService(gw)

	results, err := svc.Search(context.Background(), model.Criteria{OwnerName: "  smith  "})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results: got %d, want 1", len(results))
	}
	if gw.lastCriteria.OwnerName != "smith" {
		t.Errorf("criteria not trimmed: %q", gw.lastCriteria.OwnerName)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	gw := &stubGateway{searchResults: []model.VehicleRecord{}}
	svc := NewVehicleService(gw)

	results, err := svc.Search(context.Background(), model.Criteria{RegoNumber: "ZZZ999"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results: got %d, want 0", len(results))
	}
}

func TestSearchGatewayErrorPassesThrough(t *testing.T) {
	gw := &stubGateway{searchErr: model.NewError(model.KindTransport, "gateway unreachable")}
	svc := NewVehicleService(gw)

	_, err := svc.Search(context.Background(), model.Criteria{LogbookNumber: "LB-1"})
	if !model.IsKind(err, model.KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestUpdateRecordRequiresSession(t *testing.T) {
	gw := &stubGateway{}
	svc := NewVehicleService(gw)
	record := model.VehicleRecord{RowIndex: "7", LogbookNumber: "LB-1"}

	tests := []struct {
		name string
		sess *session.Session
	}{
		{"nil session", nil},
		{"empty upstream token", &session.Session{ID: "s1", Username: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateRecord(context.Background(), tt.sess, record)
			if !model.IsKind(err, model.KindAuthorization) {
				t.Fatalf("expected authorization error, got %v", err)
			}
			if gw.calls != 0 {
				t.Errorf("expected no gateway call, got %d", gw.calls)
			}
		})
	}
}

func TestUpdateRecordRequiresRowLocator(t *testing.T) {
	gw := &stubGateway{}
	svc := NewVehicleService(gw)
	sess := &session.Session{ID: "s1", Username: "alice", UpstreamToken: "tok"}

	err := svc.UpdateRecord(context.Background(), sess, model.VehicleRecord{LogbookNumber: "LB-1"})
	if !model.IsKind(err, model.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.calls)
	}
}

func TestUpdateRecordSendsSessionToken(t *testing.T) {
	gw := &stubGateway{}
	svc := NewVehicleService(gw)
	sess := &session.Session{ID: "s1", Username: "alice", UpstreamToken: "tok-abc"}
	record := model.VehicleRecord{RowIndex: "7", LogbookNumber: "LB-1", OwnerName: "Smith"}

	if err := svc.UpdateRecord(context.Background(), sess, record); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if gw.lastToken != "tok-abc" {
		t.Errorf("token: got %q", gw.lastToken)
	}
	if gw.lastRecord.RowIndex != "7" || gw.lastRecord.OwnerName != "Smith" {
		t.Errorf("record not forwarded intact: %+v", gw.lastRecord)
	}
}

func TestUpdateRecordServiceRejection(t *testing.T) {
	gw := &stubGateway{updateErr: model.NewError(model.KindService, "Row not found")}
	svc := NewVehicleService(gw)
	sess := &session.Session{ID: "s1", Username: "alice", UpstreamToken: "tok"}

	err := svc.UpdateRecord(context.Background(), sess, model.VehicleRecord{RowIndex: "99"})
	if !model.IsKind(err, model.KindService) {
		t.Fatalf("expected service error, got %v", err)
	}
}
