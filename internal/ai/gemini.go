package ai

import (
	"context"

	"google.golang.org/genai"
)

const reformatInstruction = "Format the content in the given json format. Do not add, drop or rewrite any news item."

// GeminiFormatter performs the structured-output reformatting pass using the
// Gemini API with a response schema constraining the output to the
// categorized news shape.
type GeminiFormatter struct {
	apiKey string
	model  string
}

// NewGeminiFormatter creates a reformatter for the given model.
func NewGeminiFormatter(apiKey, model string) *GeminiFormatter {
	return &GeminiFormatter{apiKey: apiKey, model: model}
}

// Reformat asks the model to restate content as categorized news JSON and
// returns the raw JSON text.
func (f *GeminiFormatter) Reformat(ctx context.Context, content string) (string, error) {
	if f.apiKey == "" {
		return "", &APIError{Provider: "gemini", Message: "API key not configured"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  f.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &APIError{Provider: "gemini", Message: "failed to create client", Err: err}
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: reformatInstruction}},
			Role:  "system",
		},
		{
			Parts: []*genai.Part{{Text: content}},
			Role:  "user",
		},
	}

	resp, err := client.Models.GenerateContent(ctx, f.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   newsResponseSchema(),
	})
	if err != nil {
		return "", &APIError{Provider: "gemini", Message: "generate content call failed", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &APIError{Provider: "gemini", Message: "empty response text"}
	}
	return text, nil
}

func newsResponseSchema() *genai.Schema {
	itemSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString, Description: "The headline or title of the news item."},
			"description": {Type: genai.TypeString, Description: "The main content of the news item with details and context."},
			"link":        {Type: genai.TypeString, Description: "URL pointing to the source or original article."},
		},
		Required: []string{"title"},
	}

	categorySchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category": {Type: genai.TypeString, Description: "The category heading for this group of news items."},
			"news_items": {
				Type:        genai.TypeArray,
				Items:       itemSchema,
				Description: "News items in this category, most relevant first.",
			},
		},
		Required: []string{"category", "news_items"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"news_items": {
				Type:        genai.TypeArray,
				Items:       categorySchema,
				Description: "A list of categorized news items.",
			},
		},
		Required: []string{"news_items"},
	}
}
