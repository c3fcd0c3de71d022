// Package agent drives a conversational search session. The language
// model decides when to query the photo library through a function
// tool; everything else is a plain chat exchange.
package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/search"
)

const systemPrompt = `You are a search assistant for a personal photo library.
Use the search_photos tool to look up photos when the user describes what they
are looking for. Answer with the matched file paths and explain briefly why
they match. If the tool returns no results, say so instead of inventing paths.`

// maxToolRounds caps how many times a single user message may trigger
// the search tool before the model must answer in plain text.
const maxToolRounds = 5

// Searcher answers text queries against the photo library.
type Searcher interface {
	ByText(ctx context.Context, query string, minSimilarity float64, limit int) (*search.Results, error)
}

// Agent holds the chat session state.
type Agent struct {
	client        openai.Client
	model         string
	searcher      Searcher
	minSimilarity float64
	limit         int
	log           *zap.Logger
}

// New creates a chat agent backed by an OpenAI compatible endpoint.
func New(apiKey, baseURL, model string, searcher Searcher, minSimilarity float64, limit int, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Agent{
		client:        openai.NewClient(opts...),
		model:         model,
		searcher:      searcher,
		minSimilarity: minSimilarity,
		limit:         limit,
		log:           log,
	}
}

// Run reads user messages line by line and prints the assistant's
// replies. It returns when the input stream ends or the user types
// "exit".
func (a *Agent) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}

	fmt.Fprintln(out, "Ask about your photos. Type \"exit\" to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		messages = append(messages, openai.UserMessage(line))
		reply, updated, err := a.respond(ctx, messages)
		if err != nil {
			return err
		}
		messages = updated
		fmt.Fprintln(out, reply)
	}
	return scanner.Err()
}

// respond runs the chat completion loop for one user turn, executing
// tool calls until the model produces a plain text answer.
func (a *Agent) respond(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, []openai.ChatCompletionMessageParamUnion, error) {
	for range maxToolRounds {
		resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    a.model,
			Messages: messages,
			Tools:    []openai.ChatCompletionToolUnionParam{searchPhotosTool()},
		})
		if err != nil {
			return "", messages, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", messages, errors.New("no response from model")
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg.ToParam())

		if len(msg.ToolCalls) == 0 {
			return msg.Content, messages, nil
		}

		for _, call := range msg.ToolCalls {
			result := a.runTool(ctx, call.Function.Name, call.Function.Arguments)
			messages = append(messages, openai.ToolMessage(result, call.ID))
		}
	}
	return "", messages, fmt.Errorf("model kept calling tools after %d rounds", maxToolRounds)
}

func (a *Agent) runTool(ctx context.Context, name, arguments string) string {
	if name != "search_photos" {
		return fmt.Sprintf(`{"error": "unknown tool %q"}`, name)
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return fmt.Sprintf(`{"error": "invalid arguments: %v"}`, err)
	}
	if args.Query == "" {
		return `{"error": "query must not be empty"}`
	}

	a.log.Debug("running photo search tool", zap.String("query", args.Query))
	results, err := a.searcher.ByText(ctx, args.Query, a.minSimilarity, a.limit)
	if err != nil {
		a.log.Warn("photo search tool failed", zap.Error(err))
		return fmt.Sprintf(`{"error": "search failed: %v"}`, err)
	}
	return formatToolResult(results)
}

type toolMatch struct {
	FilePath       string  `json:"file_path"`
	CosineDistance float64 `json:"cosine_distance"`
}

type toolResult struct {
	Multimodal []toolMatch `json:"multimodal"`
	Text       []toolMatch `json:"text"`
}

// formatToolResult renders both ranked lists as JSON for the model.
// Lower cosine distance means a closer match.
func formatToolResult(results *search.Results) string {
	out := toolResult{
		Multimodal: make([]toolMatch, 0, len(results.Multimodal)),
		Text:       make([]toolMatch, 0, len(results.Text)),
	}
	for _, r := range results.Multimodal {
		out.Multimodal = append(out.Multimodal, toolMatch{FilePath: r.FilePath, CosineDistance: r.CosineDistance})
	}
	for _, r := range results.Text {
		out.Text = append(out.Text, toolMatch{FilePath: r.FilePath, CosineDistance: r.CosineDistance})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"error": "could not encode results: %v"}`, err)
	}
	return string(data)
}

func searchPhotosTool() openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        "search_photos",
		Description: openai.String("Search the photo library by a natural language description. Returns two ranked lists of matching photos: one from the image similarity space and one from the text similarity space."),
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for, e.g. \"beach sunset with palm trees\"",
				},
			},
			"required": []string{"query"},
		},
	})
}
