package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/conneroisu/groq-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebrone-ai/video-content-creation-agent/models"
)

type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func chatResponseWith(content string) string {
	resp := chatResponse{
		ID:      "test-id",
		Object:  "chat.completion",
		Created: 1234567890,
		Model:   "llama-3.3-70b-versatile",
	}
	resp.Choices = make([]struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}, 1)
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = content
	resp.Choices[0].FinishReason = "stop"
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestGenerator(t *testing.T, serverURL string) *GroqGenerator {
	t.Helper()
	client, err := groq.NewClient("test-api-key", groq.WithBaseURL(serverURL+"/"))
	require.NoError(t, err)
	return &GroqGenerator{
		client: client,
		model:  groq.ChatModel("llama-3.3-70b-versatile"),
	}
}

func llmTestServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponseWith(content)))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerateScriptParsesResponse(t *testing.T) {
	server := llmTestServer(t, `{"title":"Ocean Story","duration":30,"script_content":"The sea is vast.","tone":"calm","key_points":["depth"],"music_prompt":"ambient waves"}`)
	g := newTestGenerator(t, server.URL)

	script, err := g.GenerateScript(context.Background(), models.ProjectData{ProjectTitle: "Ocean", Duration: 30})
	require.NoError(t, err)
	assert.Equal(t, "Ocean Story", script.Title)
	assert.Equal(t, "The sea is vast.", script.ScriptContent)
	assert.Equal(t, "ambient waves", script.MusicPrompt)
}

func TestGenerateScriptMissingContentIsError(t *testing.T) {
	server := llmTestServer(t, `{"title":"Empty"}`)
	g := newTestGenerator(t, server.URL)

	_, err := g.GenerateScript(context.Background(), models.ProjectData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script_content")
}

func TestGenerateScriptDefaultsDuration(t *testing.T) {
	server := llmTestServer(t, `{"title":"T","script_content":"text"}`)
	g := newTestGenerator(t, server.URL)

	script, err := g.GenerateScript(context.Background(), models.ProjectData{Duration: 45})
	require.NoError(t, err)
	assert.Equal(t, 45, script.Duration)
}

func TestGenerateStoryboardWrappedObject(t *testing.T) {
	server := llmTestServer(t, `{"scenes":[{"timestamp":"0:00-0:05","scene_description":"opening shot","camera_angle":"wide"}]}`)
	g := newTestGenerator(t, server.URL)

	scenes, err := g.GenerateStoryboard(context.Background(), models.ProjectData{}, &VideoScript{ScriptContent: "s"})
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, "opening shot", scenes[0].SceneDescription)
}

func TestGenerateShotPlanWrappedObject(t *testing.T) {
	server := llmTestServer(t, `{"shots":[{"timestamp":"0:00-0:05","ai_prompt":"a city skyline","voiceover_script":"welcome"}]}`)
	g := newTestGenerator(t, server.URL)

	shots, err := g.GenerateShotPlan(context.Background(), models.ProjectData{}, nil)
	require.NoError(t, err)
	require.Len(t, shots, 1)
	assert.Equal(t, "a city skyline", shots[0].AIPrompt)
}

func TestGenerateTextHTTPErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "authentication_error"}}`))
	}))
	defer server.Close()
	g := newTestGenerator(t, server.URL)

	_, err := g.GenerateText(context.Background(), "system", "prompt")
	require.Error(t, err)
}

func TestParseJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		content string
		keys    []string
		wantLen int
		wantErr bool
	}{
		{
			name:    "bareArray",
			content: `[{"timestamp":"0:00"},{"timestamp":"0:05"}]`,
			keys:    []string{"scenes"},
			wantLen: 2,
		},
		{
			name:    "knownKey",
			content: `{"scenes":[{"timestamp":"0:00"}]}`,
			keys:    []string{"scenes"},
			wantLen: 1,
		},
		{
			name:    "unknownKeyFallback",
			content: `{"storyline":[{"timestamp":"0:00"}]}`,
			keys:    []string{"scenes"},
			wantLen: 1,
		},
		{
			name:    "notJSON",
			content: `not json at all`,
			keys:    []string{"scenes"},
			wantErr: true,
		},
		{
			name:    "emptyObject",
			content: `{}`,
			keys:    []string{"scenes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJSONArray[StoryboardScene](tt.content, tt.keys)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestBriefPromptPrefersRefinedDescription(t *testing.T) {
	brief := models.ProjectData{
		ProjectDescription: "raw",
		RefinedDescription: "refined and researched",
	}
	prompt := briefPrompt(brief)
	assert.Contains(t, prompt, "refined and researched")
	assert.NotContains(t, prompt, "Project Description: raw\n")
}

func TestRefineDescriptionFallsBackOnFailure(t *testing.T) {
	llm := &fakeLLM{textErr: assert.AnError}
	got := RefineDescription(context.Background(), llm, "original text")
	assert.Equal(t, "original text", got)
}

func TestRefineDescriptionTwoPass(t *testing.T) {
	llm := &fakeLLM{text: "expanded description"}
	got := RefineDescription(context.Background(), llm, "original text")
	assert.Equal(t, "expanded description", got)
	require.Len(t, llm.textInputs, 2)
	assert.Contains(t, llm.textInputs[0], "original text")
}
