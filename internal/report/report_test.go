package report

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kazantsevivan2813-art/kogscrape/internal/archive"
	"github.com/kazantsevivan2813-art/kogscrape/internal/kognityapi"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func strptr(s string) *string { return &s }

func TestDifficultySortKey(t *testing.T) {
	cases := []struct {
		in   *string
		want int
	}{
		{nil, 0},
		{strptr("difficulty-easy"), 1},
		{strptr("easy"), 1},
		{strptr("difficulty-medium"), 2},
		{strptr("difficulty-hard"), 3},
		{strptr("HARD"), 3},
		{strptr("difficulty-extreme"), 4},
		{strptr(""), 4},
	}
	for _, c := range cases {
		if got := DifficultySortKey(c.in); got != c.want {
			label := "<nil>"
			if c.in != nil {
				label = *c.in
			}
			t.Errorf("DifficultySortKey(%s) = %d, want %d", label, got, c.want)
		}
	}
}

func TestSortAssessmentQuestions(t *testing.T) {
	qs := []kognityapi.AssessmentQuestion{
		{ID: 9, Difficulty: strptr("difficulty-hard")},
		{ID: 3, Difficulty: strptr("difficulty-easy")},
		{ID: 7, Difficulty: nil},
		{ID: 1, Difficulty: strptr("difficulty-easy")},
		{ID: 5, Difficulty: strptr("difficulty-unknown")},
		{ID: 2, Difficulty: nil},
	}
	SortAssessmentQuestions(qs)

	wantOrder := []int64{2, 7, 1, 3, 9, 5}
	for i, want := range wantOrder {
		if qs[i].ID != want {
			t.Fatalf("order = %v, want %v", ids(qs), wantOrder)
		}
	}
}

func ids(qs []kognityapi.AssessmentQuestion) []int64 {
	out := make([]int64, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestTextPreview(t *testing.T) {
	got := TextPreview("<p>Define <b>osmosis</b> and give   an example.</p>", 200)
	if got != "Define osmosis and give an example." {
		t.Errorf("preview = %q", got)
	}

	long := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got = TextPreview(long, 20)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long preview not truncated: %q", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, "..."))); n > 20 {
		t.Errorf("preview body length = %d, want <= 20", n)
	}
}

func TestExamAssignmentPage(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(testLogger)

	set := &kognityapi.ExamQuestionSet{
		Count: 2,
		Results: []kognityapi.ExamQuestion{
			{
				ID:                    101,
				QuestionHTML:          "<p>Outline the structure of DNA.</p>",
				AnswerExplanationHTML: "<p>Double helix of nucleotides.</p>",
				Marks:                 4,
				PaperType:             &kognityapi.PaperType{Name: "Paper 2"},
				Attributes: kognityapi.QuestionAttributes{
					Levels: []kognityapi.LevelAttr{{Name: "SL"}, {Name: "HL"}},
				},
				SubjectNodeMappings: []kognityapi.NodeMapping{{NumberIncludingAncestors: "2.6"}},
			},
			{ID: 102, QuestionHTML: "<p>Define gene.</p>", Marks: 1},
		},
	}

	path, err := g.ExamAssignment(dir, "Biology SL", "422", set)
	if err != nil {
		t.Fatalf("exam assignment: %v", err)
	}
	if filepath.Base(path) != "Exam-style assignment.html" {
		t.Errorf("path = %q", path)
	}

	html := readFile(t, path)
	for _, want := range []string{
		"Biology SL", "subject id 422", "2 questions",
		`data-qid="101"`, "Outline the structure of DNA.",
		"Paper 2", ">SL<", ">HL<", "2.6",
		"Double helix of nucleotides.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestQuestionAssessmentPageOrdering(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(testLogger)

	nodes := []NodeQuestions{
		{NodeName: "Cell biology", Questions: []kognityapi.AssessmentQuestion{
			{ID: 30, Difficulty: strptr("difficulty-hard"), QuestionHTML: "<p>hard one</p>"},
			{ID: 10, Difficulty: nil, QuestionHTML: "<p>untagged one</p>"},
		}},
		{NodeName: "Genetics", Questions: []kognityapi.AssessmentQuestion{
			{ID: 20, Difficulty: strptr("difficulty-easy"), QuestionHTML: "<p>easy one</p>"},
		}},
	}

	path, err := g.QuestionAssessment(dir, "Biology SL", "422", "9981", nodes)
	if err != nil {
		t.Fatalf("question assessment: %v", err)
	}

	html := readFile(t, path)
	iUntagged := strings.Index(html, `data-qid="10"`)
	iEasy := strings.Index(html, `data-qid="20"`)
	iHard := strings.Index(html, `data-qid="30"`)
	if iUntagged < 0 || iEasy < 0 || iHard < 0 {
		t.Fatal("rows missing from page")
	}
	if !(iUntagged < iEasy && iEasy < iHard) {
		t.Errorf("row order wrong: untagged=%d easy=%d hard=%d", iUntagged, iEasy, iHard)
	}
	if !strings.Contains(html, "class id 9981") {
		t.Error("cid missing from header")
	}
}

func TestNavigationPage(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(testLogger)

	scan := &archive.ScanResult{
		TotalFiles: 2,
		ByType:     map[string]int{"mhtml": 1, "html": 1},
		Classes: []archive.Class{{
			FolderName: "Biology SL [sid-422]",
			Info:       archive.Info{Name: "Biology SL", SID: "422"},
			TabOrder:   []string{"assignments", "overview"},
			Tabs: map[string]archive.TabContent{
				"assignments": {Files: []archive.FileInfo{
					{Name: "Exam-style assignment.html", RelPath: "Biology SL [sid-422]/assignments/Exam-style assignment.html", Size: 2048, Type: "html", Modified: time.Now()},
				}},
				"overview": {Topics: []archive.Topic{{
					Name: "Topic 1",
					Files: []archive.FileInfo{
						{Name: "1.1,_Water_and_life.mhtml", RelPath: "Biology SL [sid-422]/overview/Topic 1/1.1,_Water_and_life.mhtml", Size: 1 << 20, Type: "mhtml", Modified: time.Now()},
					},
				}}},
			},
		}},
	}

	path, err := g.Navigation(dir, scan)
	if err != nil {
		t.Fatalf("navigation: %v", err)
	}
	html := readFile(t, path)
	for _, want := range []string{
		"Biology SL", "sid 422",
		"1.1 Water and life", // section filename decoded for display
		"1.0 MB", "2 files",
		"Exam-style assignment.html",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSectionNavigationPage(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(testLogger)

	scan := &archive.ScanResult{
		Classes: []archive.Class{{
			Info:     archive.Info{Name: "Biology SL", SID: "422"},
			TabOrder: []string{"overview"},
			Tabs: map[string]archive.TabContent{
				"overview": {Topics: []archive.Topic{{
					Name: "Topic 1",
					Files: []archive.FileInfo{
						{Name: "1.2,_Acids.mhtml", RelPath: "c/overview/Topic 1/1.2,_Acids.mhtml", Type: "mhtml"},
						{Name: "1.1,_Water.mhtml", RelPath: "c/overview/Topic 1/1.1,_Water.mhtml", Type: "mhtml"},
						{Name: "notes.txt", RelPath: "c/overview/Topic 1/notes.txt", Type: "txt"},
					},
				}}},
			},
		}},
	}

	path, err := g.SectionNavigation(dir, scan)
	if err != nil {
		t.Fatalf("section navigation: %v", err)
	}
	html := readFile(t, path)
	iWater := strings.Index(html, "Water")
	iAcids := strings.Index(html, "Acids")
	if iWater < 0 || iAcids < 0 {
		t.Fatal("sections missing")
	}
	if iWater > iAcids {
		t.Error("sections not ordered by number")
	}
	if strings.Contains(html, "notes.txt") {
		t.Error("non-section file leaked into section page")
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
