package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Manual end-to-end check against a locally running server:
//
//	go run integration_runner.go
//
// Walks the full flow: register, login, me, create job, list jobs.

const baseURL = "http://localhost:8080"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func main() {
	fmt.Println("=== FSM Backend Integration Test ===")

	email := fmt.Sprintf("it-%d@example.com", time.Now().Unix())

	// 1. Register
	fmt.Println("1. Registering user...")
	body, _ := json.Marshal(map[string]any{
		"name":         "Integration Tester",
		"email":        email,
		"password":     "pw123",
		"organization": "Acme",
	})
	resp, err := http.Post(baseURL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal("Register request failed:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Register returned %d", resp.StatusCode)
	}
	fmt.Println("✓ Registered", email)

	// 2. Login
	fmt.Println("2. Logging in...")
	form := url.Values{"username": {email}, "password": {"pw123"}}
	resp, err = http.PostForm(baseURL+"/auth/login", form)
	if err != nil {
		log.Fatal("Login request failed:", err)
	}
	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		log.Fatal("Decode token:", err)
	}
	resp.Body.Close()
	if token.AccessToken == "" {
		log.Fatal("Empty access token")
	}
	fmt.Println("✓ Got access token")

	// 3. Me
	fmt.Println("3. Fetching /auth/me...")
	me := authedRequest("GET", "/auth/me", token.AccessToken, nil)
	fmt.Println("✓ Identity:", me["email"])

	// 4. Create job
	fmt.Println("4. Creating job...")
	jobBody, _ := json.Marshal(map[string]any{
		"title":          "Fix water heater",
		"customer_name":  "John Doe",
		"customer_phone": "+1-555-0100",
		"address":        "1 Main St",
	})
	job := authedRequest("POST", "/jobs", token.AccessToken, jobBody)
	fmt.Println("✓ Job created:", job["id"])

	// 5. List jobs
	fmt.Println("5. Listing jobs...")
	jobs := authedRequest("GET", "/jobs", token.AccessToken, nil)
	items, _ := jobs["items"].([]any)
	fmt.Printf("✓ %d job(s) visible\n", len(items))

	fmt.Println("=== All checks passed ===")
}

func authedRequest(method, path, token string, body []byte) map[string]any {
	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		log.Fatal("Build request:", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("%s %s returned %d", method, path, resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("Decode %s response: %v", path, err)
	}
	return out
}
