package prompt

import (
	"testing"

	"ai-kbchat-be/internal/entity"
)

func TestBuild(t *testing.T) {
	retrieval := &entity.RetrievalResult{
		Question: "how to reset",
		Context:  "【docId=1, type=faq, score=0.900】\nReset via login page.",
	}

	got := Build("how to reset", retrieval, "user: hi\nassistant: hello")

	want := "Conversation History:\n" +
		"user: hi\nassistant: hello" +
		"\n\n" +
		"Retrieved Context:\n" +
		"【docId=1, type=faq, score=0.900】\nReset via login page." +
		"\n\n" +
		"User Question: how to reset\n" +
		"Answer with clear and concise. You can infer based on info."

	if got != want {
		t.Errorf("Build() =\n%q\nwant\n%q", got, want)
	}
}
