// Package e2e drives a running server over HTTP with godog scenarios.
// It is a separate module so the BDD toolchain stays out of the service's
// dependency graph.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext holds per-scenario state: the HTTP client, tokens, the last
// response, and references captured along the way.
type TestContext struct {
	baseURL    string
	agentToken string
	adminToken string
	client     *http.Client

	useAdmin   bool
	lastStatus int
	lastBody   map[string]any

	quoteRef  string
	policyRef string
}

func NewTestContext(baseURL, agentToken, adminToken string) *TestContext {
	return &TestContext{
		baseURL:    strings.TrimRight(baseURL, "/"),
		agentToken: agentToken,
		adminToken: adminToken,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// POST sends a JSON request with the current token attached.
func (tc *TestContext) POST(path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET sends a request with the current token attached.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	token := tc.agentToken
	if tc.useAdmin {
		token = tc.adminToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err == nil {
			tc.lastBody = parsed
		}
	}
	return nil
}

// UseAdminToken switches subsequent requests to the admin token.
func (tc *TestContext) UseAdminToken(use bool) { tc.useAdmin = use }

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// GetResponseField returns a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("no JSON body in last response")
	}
	v, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response", field)
	}
	return v, nil
}

// GetResponseString returns a top-level string field from the last response.
func (tc *TestContext) GetResponseString(field string) (string, error) {
	v, err := tc.GetResponseField(field)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not string", field, v)
	}
	return s, nil
}

func (tc *TestContext) SetQuoteRef(ref string)  { tc.quoteRef = ref }
func (tc *TestContext) GetQuoteRef() string     { return tc.quoteRef }
func (tc *TestContext) SetPolicyRef(ref string) { tc.policyRef = ref }
func (tc *TestContext) GetPolicyRef() string    { return tc.policyRef }
