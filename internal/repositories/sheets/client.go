// Package sheets talks to the spreadsheet web app that fronts the school's
// gradebook. Reads are GET requests keyed by an action parameter; writes are
// POSTs of a JSON body sent as text/plain, which the web app requires.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	apiURL string
	client *http.Client
	now    func() time.Time
}

func NewClient(apiURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{apiURL: apiURL, client: httpClient, now: time.Now}
}

func NewRepository(apiURL string, httpClient *http.Client) repositories.Repository {
	return &repository{client: NewClient(apiURL, httpClient)}
}

type repository struct {
	client *Client
}

func (r *repository) Gradebook() repositories.GradebookRepository {
	return &GradebookSheets{client: r.client}
}

func (r *repository) Metadata() repositories.MetadataRepository {
	return &MetadataSheets{client: r.client}
}

func (r *repository) Close() error {
	r.client.client.CloseIdleConnections()
	return nil
}

// get issues a read action. The t parameter defeats intermediary caches.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sheets: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sheets: create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sheets: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return bytes.TrimSpace(respBody), nil
}

// writeResult is the acknowledgement of every POST action. The web app
// answers an update for an unknown row with an empty body.
type writeResult struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
}

func decodeWriteResult(body []byte) (writeResult, error) {
	var result writeResult
	if len(body) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("sheets: parse response: %w", err)
	}
	return result, nil
}

type sheetStudent struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Subjects map[string]sheetSubject `json:"subjects"`
}

type sheetSubject struct {
	Scores struct {
		Assignments []float64 `json:"assignments"`
		Midterm     float64   `json:"midterm"`
		Final       float64   `json:"final"`
	} `json:"scores"`
	Status        string  `json:"status"`
	RewardRights  float64 `json:"rewardRights"`
	RedeemedCount float64 `json:"redeemedCount"`
	RowIndex      int     `json:"rowIndex"`
}

// cell converts a spreadsheet number. Cells may hold fractional values typed
// by hand; they are rounded to the nearest point.
func cell(v float64) int {
	return int(math.Round(v))
}

func (s sheetSubject) toRecord() models.SubjectRecord {
	var assignments [models.AssignmentCount]int
	for i := 0; i < len(s.Scores.Assignments) && i < models.AssignmentCount; i++ {
		assignments[i] = cell(s.Scores.Assignments[i])
	}
	status, ok := models.ParseOverrideStatus(s.Status)
	if !ok {
		status = models.StatusNormal
	}
	// Cells are typed by hand, so out-of-range values are clamped on read.
	rec := models.SubjectRecord{
		Scores: models.ScoreData{
			Assignments: assignments,
			Midterm:     cell(s.Scores.Midterm),
			Final:       cell(s.Scores.Final),
		}.Clamped(),
		Status:   status,
		RowIndex: s.RowIndex,
	}
	return rec.WithRewardRights(cell(s.RewardRights)).WithRedeemedCount(cell(s.RedeemedCount))
}

func (c *Client) fetchRows(ctx context.Context) ([]repositories.Row, error) {
	body, err := c.get(ctx, url.Values{"action": {"getAllStudents"}})
	if err != nil {
		return nil, err
	}

	var students []sheetStudent
	if len(body) > 0 {
		if err := json.Unmarshal(body, &students); err != nil {
			return nil, fmt.Errorf("sheets: parse students: %w", err)
		}
	}

	var rows []repositories.Row
	for _, st := range students {
		for code, subject := range st.Subjects {
			rows = append(rows, repositories.Row{
				StudentID:   st.ID,
				StudentName: st.Name,
				Subject:     models.SubjectCode(code),
				Record:      subject.toRecord(),
			})
		}
	}
	return rows, nil
}
