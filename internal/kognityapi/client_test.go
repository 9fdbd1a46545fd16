package kognityapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testAPIConfig() config.APIConfig {
	return config.APIConfig{Timeout: 5 * time.Second, PageSize: 100, MaxPages: 100}
}

func TestSubjectTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schoolstaff/staff/subject/422/", r.URL.Path)
		assert.Equal(t, "abc", mustCookie(t, r, "sessionid"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"subject_tree":[{"id":9001,"name":"Biology","children":[
			{"id":1,"name":"A1 Unity and diversity"},
			{"id":2,"name":"A2 Cells"},
			{"id":3,"name":""}
		]}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, map[string]string{"sessionid": "abc"}, testAPIConfig(), testLogger)
	tree, err := c.SubjectTree(context.Background(), "422")
	require.NoError(t, err)

	root, ok := tree.RootNodeID()
	require.True(t, ok)
	assert.Equal(t, int64(9001), root)

	children := tree.Children()
	require.Len(t, children, 2, "child without a name must be skipped")
	assert.Equal(t, "A1 Unity and diversity", children[0].Name)
}

func TestSubjectTreeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"subject_tree":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, testAPIConfig(), testLogger)
	tree, err := c.SubjectTree(context.Background(), "1")
	require.NoError(t, err)

	_, ok := tree.RootNodeID()
	assert.False(t, ok)
	assert.Empty(t, tree.Children())
}

func TestExamStyleQuestionsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schoolstaff/subjects/422/exam_style_questions/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1", "":
			next := srv.URL + "/api/schoolstaff/subjects/422/exam_style_questions/?page=2&page_size=100&subject_node_id=9001"
			json.NewEncoder(w).Encode(ExamQuestionSet{
				Count:   3,
				Results: []ExamQuestion{{ID: 1}, {ID: 2}},
				Next:    &next,
			})
		case "2":
			json.NewEncoder(w).Encode(ExamQuestionSet{
				Count:   999, // must be ignored: count comes from page 1 only
				Results: []ExamQuestion{{ID: 3}},
			})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil, testAPIConfig(), testLogger)
	set, err := c.ExamStyleQuestions(context.Background(), "422", 9001)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Count)
	require.Len(t, set.Results, 3)
	assert.Equal(t, int64(1), set.Results[0].ID)
	assert.Equal(t, int64(3), set.Results[2].ID)
	assert.Nil(t, set.Next)
	assert.Nil(t, set.Previous)
}

func TestExamStyleQuestionsPageCap(t *testing.T) {
	var srv *httptest.Server
	pages := 0
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		// Every page points at the next one; only the cap stops the loop.
		next := fmt.Sprintf("%s/api/schoolstaff/subjects/1/exam_style_questions/?page=%d", srv.URL, pages+1)
		json.NewEncoder(w).Encode(ExamQuestionSet{
			Count:   1000,
			Results: []ExamQuestion{{ID: int64(pages)}},
			Next:    &next,
		})
	}))
	defer srv.Close()

	cfg := testAPIConfig()
	cfg.MaxPages = 5
	c := New(srv.URL, nil, cfg, testLogger)

	set, err := c.ExamStyleQuestions(context.Background(), "1", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, pages)
	assert.Len(t, set.Results, 5)
}

func TestQuestionsForNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schoolstaff/assignments/subjects/134/questions/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "700", q.Get("page_size"))
		assert.Equal(t, "55", q.Get("startnode_id"))
		assert.Equal(t, "706265", q.Get("exclude-hidden-nodes-for-subject-class-id"))

		easy := "difficulty-easy"
		json.NewEncoder(w).Encode(questionsResponse{Results: []AssessmentQuestion{
			{ID: 10, Difficulty: &easy},
			{ID: 11},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, nil, testAPIConfig(), testLogger)
	qs, err := c.QuestionsForNode(context.Background(), "134", "706265", 55)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "difficulty-easy", *qs[0].Difficulty)
	assert.Nil(t, qs[1].Difficulty)
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, testAPIConfig(), testLogger)
	_, err := c.SubjectTree(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestBrotliDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")

		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		_, err := bw.Write([]byte(`{"subject_tree":[{"id":7,"children":[]}]}`))
		require.NoError(t, err)
		require.NoError(t, bw.Close())

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	c := New(srv.URL, nil, testAPIConfig(), testLogger)
	tree, err := c.SubjectTree(context.Background(), "7")
	require.NoError(t, err)

	root, ok := tree.RootNodeID()
	require.True(t, ok)
	assert.Equal(t, int64(7), root)
}

func mustCookie(t *testing.T, r *http.Request, name string) string {
	t.Helper()
	c, err := r.Cookie(name)
	require.NoError(t, err)
	return c.Value
}
