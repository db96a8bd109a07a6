package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type testPlayer struct {
	ID    string
	Token string
}

func createSession(t *testing.T, ts *httptest.Server, hostName string, extra map[string]any) (string, testPlayer) {
	t.Helper()
	payload := map[string]any{"host_name": hostName}
	for key, value := range extra {
		payload[key] = value
	}
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["code"].(string), testPlayer{
		ID:    body["player_id"].(string),
		Token: body["token"].(string),
	}
}

func joinPlayer(t *testing.T, ts *httptest.Server, code, name string) testPlayer {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions/"+code+"/join", map[string]string{
		"name": name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return testPlayer{
		ID:    body["player_id"].(string),
		Token: body["token"].(string),
	}
}

func startRound(t *testing.T, ts *httptest.Server, code string, host testPlayer) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions/"+code+"/start-round", map[string]string{
		"player_id": host.ID,
		"token":     host.Token,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func submitCaption(t *testing.T, ts *httptest.Server, code string, roundNumber int, player testPlayer, text string) map[string]any {
	t.Helper()
	path := fmt.Sprintf("/api/sessions/%s/rounds/%d/captions", code, roundNumber)
	resp := doRequest(t, ts, http.MethodPost, path, map[string]string{
		"player_id": player.ID,
		"token":     player.Token,
		"text":      text,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func fetchSnapshot(t *testing.T, ts *httptest.Server, code string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/sessions/"+code, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

// waitForRoundStatus polls until the current round reaches the wanted
// status; scoring runs on a background goroutine.
func waitForRoundStatus(t *testing.T, ts *httptest.Server, code, status string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		body := fetchSnapshot(t, ts, code)
		if round, ok := body["round"].(map[string]any); ok {
			if round["status"] == status {
				return body
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for round status %q", status)
	return nil
}

func waitForSessionStatus(t *testing.T, ts *httptest.Server, code, status string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		body := fetchSnapshot(t, ts, code)
		if body["status"] == status {
			return body
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for session status %q", status)
	return nil
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}
