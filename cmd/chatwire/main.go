// Package main is a small command-line front end for the chatwire library.
// It sends one prompt to the chosen provider and prints the reply, streaming
// deltas to stdout as they arrive unless -stream=false.
//
// Credentials come from the environment (OPENAI_KEY / OPENAI_BASE_URL or
// ANTHROPIC_KEY / ANTHROPIC_URL); a .env file in the working directory is
// loaded automatically.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"chatwire/providers/ai"
	"chatwire/providers/ai/anthropic"
	"chatwire/providers/ai/openai"

	"github.com/lmittmann/tint"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	providerName := flag.String("provider", "openai", "provider to use: openai or anthropic")
	model := flag.String("model", "", "model identifier (required)")
	prompt := flag.String("prompt", "", "user prompt (required)")
	system := flag.String("system", "", "optional system prompt")
	stream := flag.Bool("stream", true, "stream the reply token by token")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))

	if *model == "" || *prompt == "" {
		flag.Usage()
		os.Exit(2)
	}

	credentials, err := ai.CredentialsFromEnv(ai.APIProvider(*providerName))
	if err != nil {
		slog.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	var provider ai.StreamProvider
	switch credentials.Provider {
	case ai.ProviderOpenAI:
		provider = openai.New()
	case ai.ProviderAnthropic:
		provider = anthropic.New()
	}
	provider.WithCredentials(credentials)

	request := ai.ChatRequest{
		Model:        *model,
		SystemPrompt: *system,
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: *prompt},
		},
	}

	ctx := context.Background()

	if !*stream {
		response, err := provider.SendMessage(ctx, request)
		if err != nil {
			slog.Error("request failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(response.Content)
		logUsage(response.Usage)
		return
	}

	chatStream, err := provider.StreamMessage(ctx, request)
	if err != nil {
		slog.Error("request failed", "error", err)
		os.Exit(1)
	}

	var usage *ai.Usage
	for event, err := range chatStream.Iter() {
		if err != nil {
			fmt.Println()
			slog.Error("stream failed", "error", err)
			os.Exit(1)
		}
		switch event.Type {
		case ai.StreamEventContent:
			fmt.Print(event.Content)
		case ai.StreamEventUsage:
			usage = event.Usage
		}
	}
	fmt.Println()
	logUsage(usage)
}

func logUsage(usage *ai.Usage) {
	if usage == nil {
		return
	}
	slog.Info("token usage",
		"prompt", usage.PromptTokens,
		"completion", usage.CompletionTokens,
		"total", usage.TotalTokens,
	)
}
