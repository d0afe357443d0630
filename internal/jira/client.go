// Package jira is the REST boundary to the JIRA/RTM server. It stays
// deliberately thin: synchronous request/response, Bearer auth, JSON bodies,
// no retries. Non-2xx responses surface as *APIError.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/noh03/rtmsync/internal/config"
	"golang.org/x/time/rate"
)

// APIError carries the HTTP status and response body of a failed call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg *config.JiraConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		baseURL: trimSlash(cfg.BaseURL),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// do performs one throttled request and decodes the response into out (when
// non-nil). A body-less success leaves out untouched.
func (c *Client) do(method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// doMap is the common case: a JSON object response, or an empty map when the
// server answers with no body (delete and most updates).
func (c *Client) doMap(method, path string, query url.Values, body any) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(method, path, query, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping reports whether the server answers an authenticated request.
func (c *Client) Ping() bool {
	_, err := c.doMap(http.MethodGet, "/rest/api/2/myself", nil, nil)
	return err == nil
}

// GetTree fetches the RTM tree for a project. The payload shape varies across
// server versions (bare list, object with roots/children, or a single node),
// so the result is returned undecoded for the sync engine to walk.
func (c *Client) GetTree(projectID int) (any, error) {
	var tree any
	path := fmt.Sprintf("/rest/rtm/1.0/api/tree/%d", projectID)
	if err := c.do(http.MethodGet, path, nil, nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// ---- standard JIRA issue CRUD ----

func (c *Client) GetIssue(issueKey string) (map[string]any, error) {
	return c.doMap(http.MethodGet, "/rest/api/2/issue/"+issueKey, nil, nil)
}

func (c *Client) CreateIssue(projectID int, issueTypeName, summary, description string, extra map[string]any) (map[string]any, error) {
	fields := map[string]any{
		"project":     map[string]string{"id": strconv.Itoa(projectID)},
		"issuetype":   map[string]string{"name": issueTypeName},
		"summary":     summary,
		"description": description,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return c.doMap(http.MethodPost, "/rest/api/2/issue", nil, map[string]any{"fields": fields})
}

func (c *Client) UpdateIssue(issueKey string, fields map[string]any) (map[string]any, error) {
	return c.doMap(http.MethodPut, "/rest/api/2/issue/"+issueKey, nil, map[string]any{"fields": fields})
}

func (c *Client) DeleteIssue(issueKey string) (map[string]any, error) {
	return c.doMap(http.MethodDelete, "/rest/api/2/issue/"+issueKey, nil, nil)
}

// ---- RTM resources ----

const rtmBase = "/rest/rtm/1.0/api"

func (c *Client) listResource(resource string, projectID int, params url.Values) (map[string]any, error) {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	query.Set("projectId", strconv.Itoa(projectID))
	return c.doMap(http.MethodGet, rtmBase+"/"+resource, query, nil)
}

func (c *Client) createResource(resource string, data map[string]any) (map[string]any, error) {
	return c.doMap(http.MethodPost, rtmBase+"/"+resource, nil, data)
}

func (c *Client) updateResource(resource string, id int, data map[string]any) (map[string]any, error) {
	return c.doMap(http.MethodPut, fmt.Sprintf("%s/%s/%d", rtmBase, resource, id), nil, data)
}

func (c *Client) deleteResource(resource string, id int) (map[string]any, error) {
	return c.doMap(http.MethodDelete, fmt.Sprintf("%s/%s/%d", rtmBase, resource, id), nil, nil)
}

// Requirements

func (c *Client) ListRequirements(projectID int, params url.Values) (map[string]any, error) {
	return c.listResource("requirements", projectID, params)
}

func (c *Client) CreateRequirement(data map[string]any) (map[string]any, error) {
	return c.createResource("requirements", data)
}

func (c *Client) UpdateRequirement(id int, data map[string]any) (map[string]any, error) {
	return c.updateResource("requirements", id, data)
}

func (c *Client) DeleteRequirement(id int) (map[string]any, error) {
	return c.deleteResource("requirements", id)
}

// Test cases

func (c *Client) ListTestCases(projectID int, params url.Values) (map[string]any, error) {
	return c.listResource("test-cases", projectID, params)
}

func (c *Client) CreateTestCase(data map[string]any) (map[string]any, error) {
	return c.createResource("test-cases", data)
}

func (c *Client) UpdateTestCase(id int, data map[string]any) (map[string]any, error) {
	return c.updateResource("test-cases", id, data)
}

func (c *Client) DeleteTestCase(id int) (map[string]any, error) {
	return c.deleteResource("test-cases", id)
}

// Test plans

func (c *Client) ListTestPlans(projectID int, params url.Values) (map[string]any, error) {
	return c.listResource("test-plans", projectID, params)
}

func (c *Client) CreateTestPlan(data map[string]any) (map[string]any, error) {
	return c.createResource("test-plans", data)
}

func (c *Client) UpdateTestPlan(id int, data map[string]any) (map[string]any, error) {
	return c.updateResource("test-plans", id, data)
}

func (c *Client) DeleteTestPlan(id int) (map[string]any, error) {
	return c.deleteResource("test-plans", id)
}

// Test executions

func (c *Client) ListTestExecutions(projectID int, params url.Values) (map[string]any, error) {
	return c.listResource("test-executions", projectID, params)
}

func (c *Client) CreateTestExecution(data map[string]any) (map[string]any, error) {
	return c.createResource("test-executions", data)
}

func (c *Client) UpdateTestExecution(id int, data map[string]any) (map[string]any, error) {
	return c.updateResource("test-executions", id, data)
}

func (c *Client) DeleteTestExecution(id int) (map[string]any, error) {
	return c.deleteResource("test-executions", id)
}

// Test case executions live under their parent execution.

func (c *Client) ListTestCaseExecutions(testExecutionID int, params url.Values) (map[string]any, error) {
	path := fmt.Sprintf("%s/test-executions/%d/test-case-executions", rtmBase, testExecutionID)
	return c.doMap(http.MethodGet, path, params, nil)
}

func (c *Client) UpdateTestCaseExecution(id int, data map[string]any) (map[string]any, error) {
	return c.updateResource("test-case-executions", id, data)
}

// Defects

func (c *Client) ListDefects(projectID int, params url.Values) (map[string]any, error) {
	return c.listResource("defects", projectID, params)
}

func (c *Client) CreateDefect(data map[string]any) (map[string]any, error) {
	return c.createResource("defects", data)
}

func (c *Client) UpdateDefect(id int, data map[string]any) (map[string]any, error) {
	return c.updateResource("defects", id, data)
}

func (c *Client) DeleteDefect(id int) (map[string]any, error) {
	return c.deleteResource("defects", id)
}
