// Package report turns collected artifacts into self-contained static HTML:
// a navigation index over the downloads tree, a section shortcut page, and
// the two question pages built from API payloads. Generators are pure
// functions of their inputs plus an output path; they never touch the
// network or the browser.
package report

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kazantsevivan2813-art/kogscrape/internal/archive"
	"github.com/kazantsevivan2813-art/kogscrape/internal/kognityapi"
)

// PreviewLimit is the maximum rune length of a tag-stripped question
// preview in table rows.
const PreviewLimit = 200

// Generator writes the report pages.
type Generator struct {
	logger *slog.Logger
}

func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{logger: logger.With("component", "report")}
}

// DifficultySortKey ranks a difficulty tag for ordering: untagged first,
// then easy, medium, hard, then anything unrecognized.
func DifficultySortKey(d *string) int {
	if d == nil {
		return 0
	}
	switch strings.ToLower(strings.TrimPrefix(*d, "difficulty-")) {
	case "easy":
		return 1
	case "medium":
		return 2
	case "hard":
		return 3
	default:
		return 4
	}
}

// SortAssessmentQuestions orders questions by difficulty key, ascending id
// within the same key.
func SortAssessmentQuestions(qs []kognityapi.AssessmentQuestion) {
	sort.SliceStable(qs, func(i, j int) bool {
		ki, kj := DifficultySortKey(qs[i].Difficulty), DifficultySortKey(qs[j].Difficulty)
		if ki != kj {
			return ki < kj
		}
		return qs[i].ID < qs[j].ID
	})
}

// TextPreview strips tags from a question_html fragment and truncates the
// text to limit runes, appending an ellipsis when anything was cut.
func TextPreview(htmlStr string, limit int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// NodeQuestions groups the questions fetched for one curriculum node.
type NodeQuestions struct {
	NodeName  string
	Questions []kognityapi.AssessmentQuestion
}

type examRow struct {
	ID       int64
	Number   string
	Preview  string
	Marks    int
	Levels   []string
	Paper    string
	Question template.HTML
	Answer   template.HTML
}

type examPage struct {
	Subject   string
	SID       string
	Count     int
	Generated string
	Rows      []examRow
}

// ExamAssignment writes the exam-style questions page into dir and returns
// the path written.
func (g *Generator) ExamAssignment(dir, subjectName, sid string, set *kognityapi.ExamQuestionSet) (string, error) {
	page := examPage{
		Subject:   subjectName,
		SID:       sid,
		Count:     set.Count,
		Generated: time.Now().Format("2006-01-02 15:04"),
	}
	for _, q := range set.Results {
		row := examRow{
			ID:       q.ID,
			Preview:  TextPreview(q.QuestionHTML, PreviewLimit),
			Marks:    q.Marks,
			Question: template.HTML(q.QuestionHTML),
			Answer:   template.HTML(q.AnswerExplanationHTML),
		}
		if q.PaperType != nil {
			row.Paper = q.PaperType.Name
		}
		for _, lvl := range q.Attributes.Levels {
			row.Levels = append(row.Levels, lvl.Name)
		}
		if len(q.SubjectNodeMappings) > 0 {
			row.Number = q.SubjectNodeMappings[0].NumberIncludingAncestors
		}
		page.Rows = append(page.Rows, row)
	}
	return g.render(filepath.Join(dir, "Exam-style assignment.html"), examTemplate, page)
}

type assessmentRow struct {
	ID         int64
	Node       string
	Difficulty string
	Preview    string
	Marks      int
	Question   template.HTML
	Answer     template.HTML
}

type assessmentPage struct {
	Class     string
	SID       string
	CID       string
	Generated string
	Rows      []assessmentRow
}

// QuestionAssessment writes the practice questions page: questions from all
// nodes flattened and sorted by difficulty key then ascending id.
func (g *Generator) QuestionAssessment(dir, className, sid, cid string, nodes []NodeQuestions) (string, error) {
	type tagged struct {
		node string
		q    kognityapi.AssessmentQuestion
	}
	var all []tagged
	for _, n := range nodes {
		for _, q := range n.Questions {
			all = append(all, tagged{node: n.NodeName, q: q})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		ki, kj := DifficultySortKey(all[i].q.Difficulty), DifficultySortKey(all[j].q.Difficulty)
		if ki != kj {
			return ki < kj
		}
		return all[i].q.ID < all[j].q.ID
	})

	page := assessmentPage{
		Class:     className,
		SID:       sid,
		CID:       cid,
		Generated: time.Now().Format("2006-01-02 15:04"),
	}
	for _, t := range all {
		difficulty := "untagged"
		if t.q.Difficulty != nil {
			difficulty = strings.TrimPrefix(*t.q.Difficulty, "difficulty-")
		}
		page.Rows = append(page.Rows, assessmentRow{
			ID:         t.q.ID,
			Node:       t.node,
			Difficulty: difficulty,
			Preview:    TextPreview(t.q.QuestionHTML, PreviewLimit),
			Marks:      t.q.Marks,
			Question:   template.HTML(t.q.QuestionHTML),
			Answer:     template.HTML(t.q.AnswerExplanationHTML),
		})
	}
	return g.render(filepath.Join(dir, "Question assignment.html"), assessmentTemplate, page)
}

type navFile struct {
	Name string
	Href string
	Size string
	Type string
}

type navTopic struct {
	Name  string
	Files []navFile
}

type navTab struct {
	Name   string
	Files  []navFile
	Topics []navTopic
}

type navClass struct {
	Name string
	SID  string
	CID  string
	Tabs []navTab
}

type navPage struct {
	Generated  string
	TotalFiles int
	MHTML      int
	HTML       int
	Classes    []navClass
}

// Navigation writes the downloads index page into dir.
func (g *Generator) Navigation(dir string, scan *archive.ScanResult) (string, error) {
	page := navPage{
		Generated:  time.Now().Format("2006-01-02 15:04"),
		TotalFiles: scan.TotalFiles,
		MHTML:      scan.ByType["mhtml"],
		HTML:       scan.ByType["html"],
	}
	for _, class := range scan.Classes {
		nc := navClass{Name: class.Info.Name, SID: class.Info.SID, CID: class.Info.CID}
		for _, tabName := range class.TabOrder {
			tab := class.Tabs[tabName]
			nt := navTab{Name: tabName, Files: navFiles(tab.Files)}
			for _, topic := range tab.Topics {
				nt.Topics = append(nt.Topics, navTopic{Name: topic.Name, Files: navFiles(topic.Files)})
			}
			nc.Tabs = append(nc.Tabs, nt)
		}
		page.Classes = append(page.Classes, nc)
	}
	return g.render(filepath.Join(dir, "navigation.html"), navigationTemplate, page)
}

func navFiles(files []archive.FileInfo) []navFile {
	out := make([]navFile, 0, len(files))
	for _, f := range files {
		display := f.Name
		if number, title, ok := archive.ParseSectionFile(f.Name); ok {
			display = number + " " + title
		}
		out = append(out, navFile{
			Name: display,
			Href: f.RelPath,
			Size: archive.FormatSize(f.Size),
			Type: f.Type,
		})
	}
	return out
}

type sectionEntry struct {
	Number string
	Title  string
	Href   string
}

type sectionClass struct {
	Name     string
	Sections []sectionEntry
}

type sectionPage struct {
	Generated string
	Classes   []sectionClass
}

// SectionNavigation writes the flat section shortcut page: every captured
// section of every class, ordered by section number within a class.
func (g *Generator) SectionNavigation(dir string, scan *archive.ScanResult) (string, error) {
	page := sectionPage{Generated: time.Now().Format("2006-01-02 15:04")}
	for _, class := range scan.Classes {
		sc := sectionClass{Name: class.Info.Name}
		for _, tabName := range class.TabOrder {
			for _, topic := range class.Tabs[tabName].Topics {
				for _, f := range topic.Files {
					number, title, ok := archive.ParseSectionFile(f.Name)
					if !ok {
						continue
					}
					sc.Sections = append(sc.Sections, sectionEntry{
						Number: number,
						Title:  title,
						Href:   f.RelPath,
					})
				}
			}
		}
		sort.Slice(sc.Sections, func(i, j int) bool { return sc.Sections[i].Number < sc.Sections[j].Number })
		if len(sc.Sections) > 0 {
			page.Classes = append(page.Classes, sc)
		}
	}
	return g.render(filepath.Join(dir, "section_navigation.html"), sectionTemplate, page)
}

func (g *Generator) render(path, tmplText string, data any) (string, error) {
	tmpl, err := template.New(filepath.Base(path)).Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("render %s: %w", path, err)
	}
	g.logger.Info("report written", "path", path)
	return path, nil
}
