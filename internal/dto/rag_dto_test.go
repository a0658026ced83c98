package dto

import (
	"strings"
	"testing"

	"ai-kbchat-be/internal/constant"
)

func TestQueryRequestResolvers(t *testing.T) {
	half := 0.5
	zero := 0.0

	tests := []struct {
		name         string
		req          QueryRequest
		wantTopK     int
		wantMinScore float64
	}{
		{
			name:         "defaults",
			req:          QueryRequest{Question: "q"},
			wantTopK:     constant.DefaultTopK,
			wantMinScore: constant.DefaultMinScore,
		},
		{
			name:         "explicit overrides",
			req:          QueryRequest{Question: "q", TopK: 7, MinScore: &half},
			wantTopK:     7,
			wantMinScore: 0.5,
		},
		{
			name:         "explicit zero minScore is respected",
			req:          QueryRequest{Question: "q", MinScore: &zero},
			wantTopK:     constant.DefaultTopK,
			wantMinScore: 0,
		},
		{
			name:         "negative topK falls back",
			req:          QueryRequest{Question: "q", TopK: -2},
			wantTopK:     constant.DefaultTopK,
			wantMinScore: constant.DefaultMinScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.ResolveTopK(); got != tt.wantTopK {
				t.Errorf("ResolveTopK() = %d, want %d", got, tt.wantTopK)
			}
			if got := tt.req.ResolveMinScore(); got != tt.wantMinScore {
				t.Errorf("ResolveMinScore() = %v, want %v", got, tt.wantMinScore)
			}
		})
	}
}

func TestAnswerRequestResolveSession(t *testing.T) {
	t.Run("named session", func(t *testing.T) {
		req := AnswerRequest{Question: "q", SessionId: "user-42"}
		session := req.ResolveSession()

		if session.Id != "user-42" || session.Temporary {
			t.Errorf("session = %+v", session)
		}
	})

	t.Run("blank session mints a temporary id", func(t *testing.T) {
		req := AnswerRequest{Question: "q", SessionId: "   "}
		session := req.ResolveSession()

		if !session.Temporary {
			t.Error("expected temporary session")
		}
		if !strings.HasPrefix(session.Id, "temp-") {
			t.Errorf("session id = %q", session.Id)
		}

		// Each resolution mints a fresh id.
		if other := req.ResolveSession(); other.Id == session.Id {
			t.Error("expected unique ids per resolution")
		}
	})
}

func TestAnswerRequestResolveModel(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"", constant.DefaultModel},
		{"  ", constant.DefaultModel},
		{"Ollama", "ollama"},
		{"deepseek", "deepseek"},
	}

	for _, tt := range tests {
		req := AnswerRequest{Question: "q", Model: tt.model}
		if got := req.ResolveModel(); got != tt.want {
			t.Errorf("ResolveModel(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestAnswerRequestToQuery(t *testing.T) {
	score := 0.4
	req := AnswerRequest{Question: "q", TopK: 5, MinScore: &score, Model: "ollama"}

	query := req.ToQuery()
	if query.Question != "q" || query.TopK != 5 || query.MinScore != &score {
		t.Errorf("ToQuery() = %+v", query)
	}
}
