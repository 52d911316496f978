package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"research-hub-api/internal/access"

	"google.golang.org/genai"
)

// genaiGenerateContentHook lets tests intercept the model call.
var genaiGenerateContentHook = func(client *genai.Client, ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	return client.Models.GenerateContent(ctx, model, contents, nil)
}

const assistantModel = "gemini-2.5-flash"

type AssistantService struct {
	Forms  FormReaderPort
	Client *genai.Client
}

// SummarizeFormResponses answers a question about a form's collected data.
// Anyone who may view the form may ask; the model only ever sees sanitized
// response payloads.
func (as *AssistantService) SummarizeFormResponses(formID uint, question string, p access.Principal) (string, error) {
	f, _, err := as.Forms.GetForm(formID, p)
	if err != nil {
		return "", err
	}

	responses, _, err := as.Forms.ListResponses(formID, p)
	if err != nil {
		return "", err
	}

	rows := make([]json.RawMessage, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, json.RawMessage(r.Data))
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response data: %w", err)
	}

	prompt := question +
		"\n\nForm title: " + f.Title +
		"\n\nAnswer the question based only on the submitted response data below. Please don't take extra data from internet. Don't answer anything technical such as JSON structure or storage details: " +
		string(rowsJSON)

	ctx := context.Background()
	genResp, err := genaiGenerateContentHook(as.Client, ctx, assistantModel, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generation error: %w", err)
	}

	var answer string
	if len(genResp.Candidates) > 0 {
		for _, candidate := range genResp.Candidates {
			if candidate.Content != nil {
				for _, part := range candidate.Content.Parts {
					if part.Text != "" {
						answer = part.Text
						break
					}
				}
			}
		}
	}

	if answer == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return answer, nil
}
