package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/logging"
)

func TestStudentsHandler_List(t *testing.T) {
	env := newTestEnv(t, student("S1", "Jiří Novák", axis(0)), student("S2", "Ben Lee", axis(1)))
	handler := NewStudentsHandler(env.service, logging.Discard())

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/students?q=novak", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var students []attendance.Identity
	parseJSONResponse(t, recorder, &students)
	if len(students) != 1 || students[0].StudentID != "S1" {
		t.Errorf("expected only S1, got %+v", students)
	}
}

func TestStudentsHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	env.detector.returns(face(axis(2)))
	handler := NewStudentsHandler(env.service, logging.Discard())

	req := multipartRequest(t, http.MethodPost, "/api/v1/students",
		map[string]string{"student_id": "S9", "student_name": "Eva"}, pngBytes(t))
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)
	var identity attendance.Identity
	parseJSONResponse(t, recorder, &identity)
	if identity.StudentID != "S9" || identity.StudentName != "Eva" {
		t.Errorf("unexpected identity: %+v", identity)
	}
	if _, err := env.identities.GetIdentity(context.Background(), "S9"); err != nil {
		t.Errorf("student not stored: %v", err)
	}
}

func TestStudentsHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		file       []byte
		noFace     bool
		wantStatus int
	}{
		{"duplicate id", map[string]string{"student_id": "S1", "student_name": "Ana"}, []byte{}, false, http.StatusConflict},
		{"missing name", map[string]string{"student_id": "S9"}, []byte{}, false, http.StatusBadRequest},
		{"id too long", map[string]string{"student_id": "123456789012345678901", "student_name": "X"}, []byte{}, false, http.StatusBadRequest},
		{"no file", map[string]string{"student_id": "S9", "student_name": "Eva"}, nil, false, http.StatusBadRequest},
		{"bad image", map[string]string{"student_id": "S9", "student_name": "Eva"}, []byte("nope"), false, http.StatusBadRequest},
		{"no face", map[string]string{"student_id": "S9", "student_name": "Eva"}, []byte{}, true, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, student("S1", "Ana", axis(0)))
			env.detector.returns(face(axis(2)))
			if tc.noFace {
				env.detector.returns()
			}
			handler := NewStudentsHandler(env.service, logging.Discard())

			file := tc.file
			if file != nil && len(file) == 0 {
				file = pngBytes(t)
			}
			recorder := httptest.NewRecorder()
			handler.Create(recorder, multipartRequest(t, http.MethodPost, "/api/v1/students", tc.fields, file))

			assertStatusCode(t, recorder, tc.wantStatus)
		})
	}
}

func TestStudentsHandler_Delete(t *testing.T) {
	env := newTestEnv(t, student("S1", "Ana", axis(0)))
	handler := NewStudentsHandler(env.service, logging.Discard())

	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/students/S1", nil), map[string]string{"id": "S1"})
	handler.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusNoContent)

	recorder = httptest.NewRecorder()
	req = requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/students/S1", nil), map[string]string{"id": "S1"})
	handler.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestStudentsHandler_Lookalikes(t *testing.T) {
	near := axis(0)
	near[3] = 0.2
	env := newTestEnv(t, student("S1", "Ana", axis(0)), student("S2", "Ann", near), student("S3", "Ben", axis(1)))
	env.startSession(t)
	handler := NewStudentsHandler(env.service, logging.Discard())

	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/students/S1/lookalikes?limit=1", nil), map[string]string{"id": "S1"})
	handler.Lookalikes(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var lookalikes []attendance.Lookalike
	parseJSONResponse(t, recorder, &lookalikes)
	if len(lookalikes) != 1 || lookalikes[0].StudentID != "S2" || !lookalikes[0].Confusable {
		t.Errorf("expected S2 as confusable lookalike, got %+v", lookalikes)
	}
}

func TestStudentsHandler_Lookalikes_Errors(t *testing.T) {
	env := newTestEnv(t, student("S1", "Ana", axis(0)))
	env.startSession(t)
	handler := NewStudentsHandler(env.service, logging.Discard())

	tests := []struct {
		name       string
		id         string
		query      string
		wantStatus int
	}{
		{"unknown student", "S9", "", http.StatusNotFound},
		{"zero limit", "S1", "?limit=0", http.StatusBadRequest},
		{"limit too large", "S1", "?limit=500", http.StatusBadRequest},
		{"non numeric", "S1", "?limit=abc", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := requestWithChiParams(
				httptest.NewRequest(http.MethodGet, "/api/v1/students/"+tc.id+"/lookalikes"+tc.query, nil),
				map[string]string{"id": tc.id},
			)
			handler.Lookalikes(recorder, req)
			assertStatusCode(t, recorder, tc.wantStatus)
		})
	}
}
