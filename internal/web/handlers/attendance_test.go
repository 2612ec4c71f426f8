package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/logging"
)

func TestAttendanceHandler_List(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	env.attendance.AddRecord(database.AttendanceRecord{StudentID: "S2", StudentName: "Ben", SessionID: "abc", MarkedAt: base.Add(time.Minute)})
	env.attendance.AddRecord(database.AttendanceRecord{StudentID: "S1", StudentName: "Ana", SessionID: "abc", MarkedAt: base})
	handler := NewAttendanceHandler(env.service, logging.Discard())

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	if body := recorder.Body.String(); !strings.Contains(body, `"student_id":"S1","student_name":"Ana","session_id":"abc","marked_at":"2024-09-02T08:00:00Z"`) {
		t.Errorf("expected records in storage field names, got %s", body)
	}
	var resp AttendanceResponse
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Present) != 2 || resp.Present[0] != "S1" || resp.Present[1] != "S2" {
		t.Errorf("expected [S1 S2] in commit order, got %v", resp.Present)
	}
	if resp.Records[0].StudentName != "Ana" || !resp.Records[0].MarkedAt.Equal(base) {
		t.Errorf("unexpected first record: %+v", resp.Records[0])
	}
}

func TestAttendanceHandler_List_Empty(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAttendanceHandler(env.service, logging.Discard())

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	if body := recorder.Body.String(); body != "{\"present\":[],\"records\":[]}\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestAttendanceHandler_List_Error(t *testing.T) {
	env := newTestEnv(t)
	env.attendance.ListError = errors.New("db down")
	handler := NewAttendanceHandler(env.service, logging.Discard())

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}
