package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/planner"
	"github.com/starford/studyplan/internal/studyservice"
	"github.com/starford/studyplan/internal/testutil"
)

// testEnv sets up a temp documents dir, SQLite DB, service, and router.
func testEnv(t *testing.T) (http.Handler, string) {
	t.Helper()
	db := testutil.TestDB(t)
	dir, files := testutil.TestDocs(t)
	svc := studyservice.New(studyservice.Deps{
		Subjects:    db,
		Documents:   db,
		Preferences: db,
		Plans:       db,
		Files:       files,
		Planner:     planner.New(planner.DefaultPolicy()),
		Clock:       testutil.Clock(),
	})

	// Minimal SSE handler stub: writes headers and blocks until the client leaves.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})
	return NewRouter(svc, sseHandler), dir
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func day(n int) string {
	return testutil.Days(n).Format(models.DateLayout)
}

func addSubject(t *testing.T, router http.Handler, name string, days int, difficulty string, topics ...string) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/subjects", CreateSubjectRequest{
		Name: name, ExamDate: day(days), Difficulty: difficulty, Topics: topics,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s status = %d, body = %s", name, w.Code, w.Body.String())
	}
}

func TestCreateAndListSubjects(t *testing.T) {
	router, _ := testEnv(t)
	addSubject(t, router, "Math", 5, "hard", "Calculus", "Algebra")
	addSubject(t, router, "History", 25, "Beginner", "WWI")

	w := do(t, router, http.MethodGet, "/subjects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp := decode[SubjectListResponse](t, w)
	if len(resp.Subjects) != 2 {
		t.Fatalf("subjects = %d, want 2", len(resp.Subjects))
	}
	if resp.Subjects[0].Name != "Math" || resp.Subjects[0].Difficulty != models.Hard {
		t.Errorf("first subject = %+v", resp.Subjects[0])
	}
	if resp.Subjects[1].Difficulty != models.Easy {
		t.Errorf("Beginner should map to Easy, got %s", resp.Subjects[1].Difficulty)
	}
}

func TestCreateSubjectErrors(t *testing.T) {
	router, _ := testEnv(t)
	addSubject(t, router, "Math", 5, "Hard")

	cases := []struct {
		name string
		body CreateSubjectRequest
		want int
	}{
		{"duplicate", CreateSubjectRequest{Name: "Math", ExamDate: day(3), Difficulty: "Easy"}, http.StatusConflict},
		{"past date", CreateSubjectRequest{Name: "Art", ExamDate: day(-2), Difficulty: "Easy"}, http.StatusUnprocessableEntity},
		{"bad date", CreateSubjectRequest{Name: "Art", ExamDate: "next week", Difficulty: "Easy"}, http.StatusBadRequest},
		{"bad difficulty", CreateSubjectRequest{Name: "Art", ExamDate: day(3), Difficulty: "Brutal"}, http.StatusBadRequest},
		{"blank name", CreateSubjectRequest{Name: " ", ExamDate: day(3), Difficulty: "Easy"}, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/subjects", c.body)
			if w.Code != c.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, c.want, w.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/subjects", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON status = %d", w.Code)
	}
}

func TestDeleteSubject(t *testing.T) {
	router, _ := testEnv(t)
	addSubject(t, router, "Linear Algebra", 5, "Hard", "Matrices")

	w := do(t, router, http.MethodDelete, "/subjects/Linear%20Algebra", nil)
	if w.Code != http.StatusOK || !decode[RemovedResponse](t, w).Removed {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodDelete, "/subjects/Linear%20Algebra", nil)
	if w.Code != http.StatusOK || decode[RemovedResponse](t, w).Removed {
		t.Errorf("second delete = %d %s, want removed=false", w.Code, w.Body.String())
	}
}

func TestUpdateProgress(t *testing.T) {
	router, _ := testEnv(t)
	addSubject(t, router, "Math", 5, "Hard", "Calculus")

	w := do(t, router, http.MethodPut, "/subjects/Math/topics/Calculus/progress", map[string]int{"progress": 40})
	if w.Code != http.StatusNoContent {
		t.Fatalf("progress status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPut, "/subjects/Math/topics/Optics/progress", map[string]int{"progress": 40})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown topic status = %d", w.Code)
	}
	if resp := decode[errResponse](t, w); resp.Field != "topic" {
		t.Errorf("field = %q, want topic", resp.Field)
	}
	w = do(t, router, http.MethodPut, "/subjects/Math/topics/Calculus/progress", map[string]int{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing progress status = %d", w.Code)
	}
}

func TestUpcoming(t *testing.T) {
	router, _ := testEnv(t)
	addSubject(t, router, "Math", 5, "Hard")
	addSubject(t, router, "Bio", 45, "Medium")

	w := do(t, router, http.MethodGet, "/subjects/upcoming", nil)
	if got := decode[SubjectListResponse](t, w).Subjects; len(got) != 1 || got[0].Name != "Math" {
		t.Errorf("upcoming = %+v", got)
	}
	w = do(t, router, http.MethodGet, "/subjects/upcoming?days=60", nil)
	if got := decode[SubjectListResponse](t, w).Subjects; len(got) != 2 {
		t.Errorf("upcoming 60 = %d subjects", len(got))
	}
	w = do(t, router, http.MethodGet, "/subjects/upcoming?days=soon", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad days status = %d", w.Code)
	}
}

func TestPlanLifecycle(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodPost, "/plan", PlanRequest{AvailableMinutes: 60})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty plan status = %d, want 400", w.Code)
	}

	addSubject(t, router, "Math", 5, "Hard", "Calculus", "Algebra")
	addSubject(t, router, "History", 25, "Easy", "WWI")

	w = do(t, router, http.MethodPost, "/plan", PlanRequest{AvailableMinutes: 120, Intensity: models.Moderate})
	if w.Code != http.StatusCreated {
		t.Fatalf("generate status = %d, body = %s", w.Code, w.Body.String())
	}
	plan := decode[PlanResponse](t, w)
	if plan.TotalMinutes > 120 || plan.Tasks[0].Subject != "Math" {
		t.Errorf("plan = %+v", plan)
	}

	w = do(t, router, http.MethodGet, "/plan?breaks=true", nil)
	withBreaks := decode[PlanResponse](t, w)
	if len(withBreaks.Timeline) == 0 {
		t.Error("expected a timeline")
	}
	hasBreak := false
	for _, s := range withBreaks.Timeline {
		if s.Kind == planner.SlotBreak {
			hasBreak = true
		}
	}
	if !hasBreak {
		t.Error("expected a break in a 120 minute timeline with 45 minute break frequency")
	}

	w = do(t, router, http.MethodPost, "/plan/tasks/0/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/plan/tasks/9/complete", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("complete missing task status = %d", w.Code)
	}
	w = do(t, router, http.MethodPost, "/plan/tasks/first/complete", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("complete bad index status = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/plan", PlanRequest{FocusSubject: "Physics"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown focus status = %d", w.Code)
	}
}

func TestGeneratePlanWithoutBodyUsesPreferences(t *testing.T) {
	router, _ := testEnv(t)
	addSubject(t, router, "Math", 5, "Hard", "Calculus")

	req := httptest.NewRequest(http.MethodPost, "/plan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if plan := decode[PlanResponse](t, w); len(plan.Tasks) != 1 || plan.Tasks[0].Duration != 60 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestPreferences(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/preferences", nil)
	if got := decode[models.Preferences](t, w); got.DailyGoalHours != 4 || got.BreakFrequency != 45 {
		t.Errorf("defaults = %+v", got)
	}

	want := models.Preferences{DailyGoalHours: 2, PreferredTimes: []models.TimeBucket{models.Night}, BreakFrequency: 25, Intensity: models.Light}
	w = do(t, router, http.MethodPut, "/preferences", want)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/preferences", nil)
	if got := decode[models.Preferences](t, w); got.Intensity != models.Light || got.BreakFrequency != 25 {
		t.Errorf("saved = %+v", got)
	}

	want.BreakFrequency = 50
	w = do(t, router, http.MethodPut, "/preferences", want)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid preferences status = %d", w.Code)
	}
}

func uploadFile(t *testing.T, router http.Handler, filename, subject string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	if subject != "" {
		_ = mw.WriteField("subject", subject)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadSearchDeleteDocument(t *testing.T) {
	router, dir := testEnv(t)
	addSubject(t, router, "Physics", 10, "Medium", "Thermodynamics")

	w := uploadFile(t, router, "thermo.txt", "Physics", []byte("Entropy always increases in an isolated system."))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	doc := decode[models.Document](t, w)
	if doc.Subject != "Physics" || doc.Size == 0 || doc.Checksum == "" {
		t.Errorf("doc = %+v", doc)
	}
	data, err := os.ReadFile(filepath.Join(dir, "thermo.txt"))
	if err != nil || !strings.HasPrefix(string(data), "Entropy") {
		t.Fatalf("file not on disk: %v", err)
	}

	w = do(t, router, http.MethodGet, "/documents", nil)
	if got := decode[DocumentListResponse](t, w).Documents; len(got) != 1 {
		t.Errorf("documents = %d", len(got))
	}

	w = do(t, router, http.MethodGet, "/documents/search?q=entropy", nil)
	if got := decode[SearchResponse](t, w).Results; len(got) != 1 || got[0].ID != doc.ID {
		t.Errorf("search = %+v", got)
	}
	w = do(t, router, http.MethodGet, "/documents/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search without q status = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/explain?topic=Entropy", nil)
	if ex := decode[ExplanationResponse](t, w); ex.Source != "documents" {
		t.Errorf("explanation = %+v", ex)
	}

	w = do(t, router, http.MethodDelete, "/documents/"+doc.ID, nil)
	if w.Code != http.StatusOK || !decode[RemovedResponse](t, w).Removed {
		t.Fatalf("delete = %d %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "thermo.txt")); !os.IsNotExist(err) {
		t.Error("file still on disk after delete")
	}
}

func TestUploadDocumentErrors(t *testing.T) {
	router, dir := testEnv(t)

	w := uploadFile(t, router, "notes.txt", "Chemistry", []byte("x"))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown subject status = %d", w.Code)
	}

	w = uploadFile(t, router, "../../etc/passwd", "", []byte("root:x:0:0"))
	if w.Code != http.StatusCreated {
		t.Fatalf("traversal upload status = %d, body = %s", w.Code, w.Body.String())
	}
	if doc := decode[models.Document](t, w); strings.Contains(doc.Path, "..") || strings.Contains(doc.Path, "/") {
		t.Errorf("unsanitized path %q", doc.Path)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("documents dir has %d entries, want 1", len(entries))
	}

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader("plain"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-multipart status = %d", w.Code)
	}
}

func TestDeleteDocumentPartialFailure(t *testing.T) {
	router, dir := testEnv(t)
	w := uploadFile(t, router, "gone.txt", "", []byte("soon gone"))
	doc := decode[models.Document](t, w)
	if err := os.Remove(filepath.Join(dir, doc.Path)); err != nil {
		t.Fatal(err)
	}

	w = do(t, router, http.MethodDelete, "/documents/"+doc.ID, nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if resp := decode[map[string]any](t, w); resp["removed"] != true {
		t.Errorf("body = %v", resp)
	}
	w = do(t, router, http.MethodDelete, "/documents/"+doc.ID, nil)
	if decode[RemovedResponse](t, w).Removed {
		t.Error("document should already be gone")
	}
}

func TestExplainAndDashboard(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/explain?topic=calculus", nil)
	if ex := decode[ExplanationResponse](t, w); ex.Source != "table" {
		t.Errorf("explanation = %+v", ex)
	}
	w = do(t, router, http.MethodGet, "/explain", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank topic status = %d", w.Code)
	}

	addSubject(t, router, "Math", 5, "Hard", "Calculus")
	w = do(t, router, http.MethodGet, "/dashboard", nil)
	if d := decode[DashboardResponse](t, w); d.Subjects != 1 || d.UpcomingExams != 1 {
		t.Errorf("dashboard = %+v", d)
	}
}

func TestEventsMounted(t *testing.T) {
	router, _ := testEnv(t)
	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("events = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}
