// Package e2e exercises a running searchd instance over HTTP. The tests
// skip when no service is listening.
//
// Run with:
//
//	go test -v -timeout=60s ./test/e2e/...
package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("E2E_SEARCHD_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func client() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

func skipIfDown(t *testing.T, c *http.Client) {
	t.Helper()
	resp, err := c.Get(baseURL() + "/health/live")
	if err != nil {
		t.Skipf("searchd unavailable: %v", err)
	}
	resp.Body.Close()
}

func TestHealthEndpoints(t *testing.T) {
	c := client()
	skipIfDown(t, c)

	for _, path := range []string{"/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			resp, err := c.Get(baseURL() + path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("unexpected status %d: %s", resp.StatusCode, body)
			}
		})
	}
}

func TestAddSearchRemoveRoundTrip(t *testing.T) {
	c := client()
	skipIfDown(t, c)

	// Unique id and word so reruns against a live service don't collide.
	id := int(time.Now().UnixNano() % 1_000_000_000)
	word := fmt.Sprintf("e2eword%d", id)
	payload := fmt.Sprintf(`{"id":%d,"text":"%s in the city","status":"actual","ratings":[1,2,3]}`, id, word)

	resp, err := c.Post(baseURL()+"/api/v1/documents", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("add request failed: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", resp.StatusCode)
	}

	resp, err = c.Get(fmt.Sprintf("%s/api/v1/search?q=%s", baseURL(), word))
	if err != nil {
		t.Fatalf("search request failed: %v", err)
	}
	var result struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding search response: %v", err)
	}
	resp.Body.Close()
	found := false
	for _, d := range result.Results {
		if d.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("document %d not found via %q: %+v", id, word, result.Results)
	}

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/documents/%d", baseURL(), id), nil)
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
}
