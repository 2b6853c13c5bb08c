// Command openai-stub is a local OpenAI-compatible server for developing and
// smoke-testing recipiod without a real model. It answers chat completions
// with a deterministic recipe object and transcriptions with a fixed
// transcript.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		// Echo a fragment of the user text into the steps so callers can
		// see their input flowed through.
		user := ""
		if len(req.Messages) >= 2 {
			user = strings.TrimSpace(req.Messages[1].Content)
		}
		firstLine := user
		if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
			firstLine = firstLine[:i]
		}
		rec := map[string]any{
			"title":        "Stub Pasta",
			"description":  "Deterministic recipe from the stub model.",
			"ingredients":  []string{"200g pasta", "1 jar of sauce"},
			"steps":        []string{"Boil pasta for 10 minutes.", "Add sauce.", "Input was: " + firstLine},
			"cooking_time": 10,
			"servings":     2,
			"difficulty":   "Easy",
			"cuisine":      "Italian",
			"tags":         []string{"stub"},
			"language":     "en",
		}
		b, _ := json.Marshal(rec)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub-1",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": string(b)},
			}},
		})
	})
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text": "Boil pasta for ten minutes, then add the sauce.",
		})
	})

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
