package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	defaultTextModel      = "gemini-1.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
)

// GeminiService handles interactions with the Gemini API
type GeminiService struct {
	baseURL        string
	apiKey         string
	textModel      string
	embeddingModel string
	client         *http.Client
	logger         *log.Logger
}

// NewGeminiService creates a new Gemini service instance
func NewGeminiService() *GeminiService {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Printf("WARNING: GEMINI_API_KEY is not set; AI responses will fail")
	}

	textModel := os.Getenv("GEMINI_TEXT_MODEL")
	if textModel == "" {
		textModel = defaultTextModel
	}

	embeddingModel := os.Getenv("GEMINI_EMBEDDING_MODEL")
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	return &GeminiService{
		baseURL:        geminiBaseURL,
		apiKey:         apiKey,
		textModel:      textModel,
		embeddingModel: embeddingModel,
		client:         &http.Client{Timeout: 60 * time.Second},
		logger:         log.New(os.Stdout, "[GEMINI] ", log.LstdFlags),
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

type embedContentRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// QueryText asks the text model for a response to a plain prompt.
func (s *GeminiService) QueryText(ctx context.Context, text string) (string, error) {
	return s.generate(ctx, []geminiPart{{Text: text}})
}

// QueryImage asks the text model to describe an image.
func (s *GeminiService) QueryImage(ctx context.Context, base64Image, mimeType string) (string, error) {
	return s.generate(ctx, []geminiPart{
		{Text: "Describe this image in detail."},
		{InlineData: &geminiInlineData{MimeType: mimeType, Data: base64Image}},
	})
}

// QueryTextWithImage asks the text model about an image with a prompt.
func (s *GeminiService) QueryTextWithImage(ctx context.Context, text, base64Image, mimeType string) (string, error) {
	return s.generate(ctx, []geminiPart{
		{Text: text},
		{InlineData: &geminiInlineData{MimeType: mimeType, Data: base64Image}},
	})
}

// EmbedText returns an embedding vector for semantic retrieval. Failures
// degrade to an empty vector so a message is stored without an embedding
// rather than failing the whole exchange.
func (s *GeminiService) EmbedText(ctx context.Context, text string) []float64 {
	payload := embedContentRequest{
		Model:   "models/" + s.embeddingModel,
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	var resp embedContentResponse
	endpoint := fmt.Sprintf("models/%s:embedContent", s.embeddingModel)
	if err := s.makeRequest(ctx, endpoint, payload, &resp); err != nil {
		s.logger.Printf("Embedding request failed: %v", err)
		return nil
	}
	if resp.Error != nil {
		s.logger.Printf("Embedding request rejected: %s", resp.Error.Message)
		return nil
	}
	return resp.Embedding.Values
}

func (s *GeminiService) generate(ctx context.Context, parts []geminiPart) (string, error) {
	payload := generateContentRequest{
		Contents: []geminiContent{{Parts: parts}},
	}

	var resp generateContentResponse
	endpoint := fmt.Sprintf("models/%s:generateContent", s.textModel)
	if err := s.makeRequest(ctx, endpoint, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("gemini API error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("gemini API returned no text candidates")
}

// makeRequest performs an HTTP request to the Gemini API
func (s *GeminiService) makeRequest(ctx context.Context, endpoint string, payload, out interface{}) error {
	if s.apiKey == "" {
		return fmt.Errorf("missing Gemini credentials. Please set the GEMINI_API_KEY environment variable")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", s.baseURL, endpoint, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
