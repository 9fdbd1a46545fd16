package kognityapi

// SubjectTreeResponse is the payload of the staff subject endpoint.
type SubjectTreeResponse struct {
	SubjectTree []SubjectTreeItem `json:"subject_tree"`
}

// SubjectTreeItem is one root of the subject tree; in practice the API
// returns a single root whose id is the subject_node_id used by the
// exam-style questions endpoint.
type SubjectTreeItem struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Children []SubjectNode `json:"children"`
}

// SubjectNode is a top-level curriculum node (main topic) in the tree.
type SubjectNode struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RootNodeID returns the id of the first tree item, the node the exam-style
// questions endpoint expects.
func (r *SubjectTreeResponse) RootNodeID() (int64, bool) {
	if len(r.SubjectTree) == 0 {
		return 0, false
	}
	return r.SubjectTree[0].ID, true
}

// Children returns the root's curriculum nodes, skipping entries missing an
// id or name.
func (r *SubjectTreeResponse) Children() []SubjectNode {
	if len(r.SubjectTree) == 0 {
		return nil
	}
	var nodes []SubjectNode
	for _, c := range r.SubjectTree[0].Children {
		if c.ID != 0 && c.Name != "" {
			nodes = append(nodes, c)
		}
	}
	return nodes
}

// PaperType labels an exam question's paper.
type PaperType struct {
	Name string `json:"name"`
}

// LevelAttr is one curriculum level tag (SL, HL, Core, Extended).
type LevelAttr struct {
	Name string `json:"name"`
}

// QuestionAttributes carries the level tags of a question.
type QuestionAttributes struct {
	Levels []LevelAttr `json:"levels"`
}

// NodeMapping ties a question to its position in the subject tree.
type NodeMapping struct {
	NumberIncludingAncestors string `json:"number_including_ancestors"`
}

// ExamQuestion is one exam-style question as returned by the API.
type ExamQuestion struct {
	ID                    int64              `json:"id"`
	QuestionHTML          string             `json:"question_html"`
	AnswerExplanationHTML string             `json:"answer_explanation_html"`
	Marks                 int                `json:"marks"`
	PaperType             *PaperType         `json:"papertype"`
	Attributes            QuestionAttributes `json:"attributes"`
	SubjectNodeMappings   []NodeMapping      `json:"subjectnode_mappings"`
}

// ExamQuestionSet is the paginated exam-style questions payload. The client
// combines all pages into one set with Count taken from page 1 only and
// Next/Previous nulled out, mirroring the single-page shape.
type ExamQuestionSet struct {
	Count    int            `json:"count"`
	Results  []ExamQuestion `json:"results"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

// AssessmentQuestion is one practice question from the assignments
// questions endpoint. Difficulty is nil for untagged questions and sorts
// before every tagged value.
type AssessmentQuestion struct {
	ID                    int64   `json:"id"`
	Difficulty            *string `json:"difficulty"`
	QuestionHTML          string  `json:"question_html"`
	AnswerExplanationHTML string  `json:"answer_explanation_html"`
	Marks                 int     `json:"marks"`
}

type questionsResponse struct {
	Results []AssessmentQuestion `json:"results"`
}
