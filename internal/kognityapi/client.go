// Package kognityapi implements the REST clients for the Kognity staff API:
// subject trees, per-node practice questions, and paginated exam-style
// question sets. Authentication rides on the cookies captured by the
// browser login flow.
package kognityapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
)

// Client talks to the Kognity staff API.
type Client struct {
	r        *resty.Client
	logger   *slog.Logger
	pageSize int
	maxPages int
}

// New builds a client from the platform base URL and the saved session
// cookies (name→value).
func New(baseURL string, cookies map[string]string, cfg config.APIConfig, logger *slog.Logger) *Client {
	hc := &http.Client{
		Transport: newDecompressTransport(),
		Timeout:   cfg.Timeout,
	}

	r := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	for name, value := range cookies {
		r.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	return &Client{
		r:        r,
		logger:   logger.With("component", "kognity_api"),
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
	}
}

// SubjectTree fetches the subject tree for a class. The sid extracted from
// a class folder name doubles as the subject id in this API.
func (c *Client) SubjectTree(ctx context.Context, sid string) (*SubjectTreeResponse, error) {
	var out SubjectTreeResponse
	resp, err := c.r.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("api/schoolstaff/staff/subject/%s/", sid))
	if err != nil {
		return nil, fmt.Errorf("subject tree for sid %s: %w", sid, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("subject tree for sid %s: status %d", sid, resp.StatusCode())
	}
	c.logger.Debug("subject tree fetched", "sid", sid, "roots", len(out.SubjectTree))
	return &out, nil
}

// QuestionsForNode fetches the practice questions under one curriculum node,
// excluding nodes hidden for the class.
func (c *Client) QuestionsForNode(ctx context.Context, sid, cid string, startnodeID int64) ([]AssessmentQuestion, error) {
	var out questionsResponse
	resp, err := c.r.R().
		SetContext(ctx).
		SetResult(&out).
		SetQueryParams(map[string]string{
			"page_size":     "700",
			"startnode_id":  strconv.FormatInt(startnodeID, 10),
			"exclude-hidden-nodes-for-subject-class-id": cid,
		}).
		Get(fmt.Sprintf("api/schoolstaff/assignments/subjects/%s/questions/", sid))
	if err != nil {
		return nil, fmt.Errorf("questions for node %d: %w", startnodeID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("questions for node %d: status %d", startnodeID, resp.StatusCode())
	}
	c.logger.Debug("node questions fetched", "sid", sid, "node", startnodeID, "count", len(out.Results))
	return out.Results, nil
}

// ExamStyleQuestions fetches every page of exam-style questions for a
// subject, following the next link until it is null. The page loop is
// capped at the configured max_pages as a safety bound; Count comes from
// page 1 only.
func (c *Client) ExamStyleQuestions(ctx context.Context, sid string, subjectNodeID int64) (*ExamQuestionSet, error) {
	combined := &ExamQuestionSet{}

	next := fmt.Sprintf(
		"api/schoolstaff/subjects/%s/exam_style_questions/?page=1&page_size=%d&subject_node_id=%d&min_marks=&max_marks=",
		sid, c.pageSize, subjectNodeID,
	)

	for page := 1; next != ""; page++ {
		if page > c.maxPages {
			c.logger.Warn("stopped following pagination at safety cap",
				"sid", sid, "max_pages", c.maxPages)
			break
		}

		var out ExamQuestionSet
		resp, err := c.r.R().
			SetContext(ctx).
			SetResult(&out).
			Get(next) // absolute next URLs override the base URL
		if err != nil {
			return nil, fmt.Errorf("exam questions page %d: %w", page, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("exam questions page %d: status %d", page, resp.StatusCode())
		}

		if page == 1 {
			combined.Count = out.Count
		}
		combined.Results = append(combined.Results, out.Results...)

		c.logger.Debug("exam questions page fetched",
			"sid", sid, "page", page, "got", len(out.Results), "total", len(combined.Results))

		if out.Next == nil {
			break
		}
		next = *out.Next
	}

	c.logger.Info("exam questions fetched",
		"sid", sid, "results", len(combined.Results), "count", combined.Count)
	return combined, nil
}
