package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout, streaming can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting RAG API Smoke Test\n")

	// 1. Retrieval via GET
	color.Yellow("\n[RAG] 1. Retrieve (GET)")
	resp, body, err := sendRequest("GET", "/rag/v1/retrieve?question=how+do+i+reset+my+password&topK=3", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var retrieveResp map[string]interface{}
	json.Unmarshal(body, &retrieveResp)
	prettyPrint(retrieveResp)

	// 2. Retrieval via POST with explicit minScore
	color.Yellow("\n[RAG] 2. Retrieve (POST, minScore=0.5)")
	resp, body, err = sendRequest("POST", "/rag/v1/retrieve", map[string]interface{}{
		"question": "how do i reset my password",
		"topK":     5,
		"minScore": 0.5,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	json.Unmarshal(body, &retrieveResp)
	prettyPrint(retrieveResp)

	// 3. Non-streaming answer, anonymous session
	color.Yellow("\n[RAG] 3. Answer (non-streaming, temporary session)")
	resp, body, err = sendRequest("POST", "/rag/v1/answer", map[string]interface{}{
		"question": "how do i reset my password",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var answerResp map[string]interface{}
	json.Unmarshal(body, &answerResp)
	prettyPrint(answerResp)

	// 4. Streaming answer with a named session
	color.Yellow("\n[RAG] 4. Answer (SSE stream, session smoke-test-1)")
	streamBody, _ := json.Marshal(map[string]interface{}{
		"question":  "what payment methods do you support",
		"sessionId": "smoke-test-1",
		"model":     "deepseek",
	})
	req, err := http.NewRequest("POST", baseURL+"/rag/v1/answer/stream", bytes.NewBuffer(streamBody))
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	streamResp, err := (&http.Client{}).Do(req)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	defer streamResp.Body.Close()
	color.Green("Status: %s", streamResp.Status)

	scanner := bufio.NewScanner(streamResp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			color.Magenta(line)
		case strings.HasPrefix(line, "data: "):
			fmt.Println(line)
		}
	}

	color.Cyan("\n✨ Smoke test complete")
}
