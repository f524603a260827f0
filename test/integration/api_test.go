package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// IntegrationTestSuite drives a running server over HTTP. It needs Postgres
// and the configured cache behind that server, so it only runs when
// TEST_SERVER_URL points at one, e.g. TEST_SERVER_URL=http://localhost:3000.
type IntegrationTestSuite struct {
	suite.Suite
	client  *http.Client
	baseURL string
	token   string
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.client = &http.Client{Timeout: 5 * time.Second}
	s.baseURL = os.Getenv("TEST_SERVER_URL")

	if ok := waitForServerHealthy(s.client, s.baseURL, 30); !ok {
		s.T().Fatalf("server at %s did not become healthy in time", s.baseURL)
	}

	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	code := s.call(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": email, "password": "integration-pass",
	}, &tokens)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().NotEmpty(tokens.AccessToken)
	s.token = tokens.AccessToken
}

// waitForServerHealthy polls the /health endpoint until it returns 200 or
// the timeout (in seconds) elapses.
func waitForServerHealthy(client *http.Client, baseURL string, timeoutSecs int) bool {
	deadline := time.Now().Add(time.Duration(timeoutSecs) * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}

func (s *IntegrationTestSuite) call(method, path string, body, out any) int {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.baseURL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type articleBody struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func (s *IntegrationTestSuite) TestHealthCheck() {
	var health map[string]any
	code := s.call(http.MethodGet, "/health", nil, &health)
	s.Equal(http.StatusOK, code)
	s.Contains([]any{"healthy", "degraded"}, health["status"])
}

func (s *IntegrationTestSuite) TestArticleLifecycle() {
	var created articleBody
	code := s.call(http.MethodPost, "/api/v1/articles", map[string]string{
		"title": "A", "description": "first", "publicationDate": "2024-01-02",
	}, &created)
	s.Require().Equal(http.StatusCreated, code)

	path := fmt.Sprintf("/api/v1/articles/%d", created.ID)
	var got articleBody
	s.Require().Equal(http.StatusOK, s.call(http.MethodGet, path, nil, &got))
	s.Equal("A", got.Title)

	var updated articleBody
	s.Require().Equal(http.StatusOK, s.call(http.MethodPatch, path, map[string]string{"title": "B"}, &updated))
	s.Equal("B", updated.Title)

	s.Require().Equal(http.StatusOK, s.call(http.MethodGet, path, nil, &got))
	s.Equal("B", got.Title)

	var removed map[string]bool
	s.Require().Equal(http.StatusOK, s.call(http.MethodDelete, path, nil, &removed))
	s.True(removed["success"])

	s.Equal(http.StatusNotFound, s.call(http.MethodGet, path, nil, nil))
}

func (s *IntegrationTestSuite) TestListingSeesNewArticles() {
	var before struct {
		Count int `json:"count"`
	}
	s.Require().Equal(http.StatusOK, s.call(http.MethodGet, "/api/v1/articles", nil, &before))

	var created articleBody
	s.Require().Equal(http.StatusCreated, s.call(http.MethodPost, "/api/v1/articles", map[string]string{
		"title": "Listed", "description": "d", "publicationDate": "2024-02-03",
	}, &created))
	defer s.call(http.MethodDelete, fmt.Sprintf("/api/v1/articles/%d", created.ID), nil, nil)

	var after struct {
		Count int `json:"count"`
	}
	s.Require().Equal(http.StatusOK, s.call(http.MethodGet, "/api/v1/articles", nil, &after))
	s.Equal(before.Count+1, after.Count)
}

func TestIntegrationSuite(t *testing.T) {
	if os.Getenv("TEST_SERVER_URL") == "" {
		t.Skip("TEST_SERVER_URL not set")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
