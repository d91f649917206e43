package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thatsimonsguy/ambient-hub/internal/chat"
)

func main() {
	var envFile, model, personaFile string
	var mute bool
	flag.StringVar(&envFile, "env-file", ".env", "Path to an env file with OPENAI_API_KEY")
	flag.StringVar(&model, "model", "", "Model identifier for chat completions (default gpt-5-nano)")
	flag.StringVar(&personaFile, "persona-file", "", "Optional file overriding the built-in persona")
	flag.BoolVar(&mute, "mute", false, "Print replies without speaking them")
	flag.Parse()

	godotenv.Load(envFile)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is not set. Export it or put it in an env file.")
		os.Exit(1)
	}

	persona := ""
	if personaFile != "" {
		raw, err := os.ReadFile(personaFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read persona file: %v\n", err)
			os.Exit(1)
		}
		persona = strings.TrimSpace(string(raw))
	}

	gen := chat.NewGenerator(apiKey, os.Getenv("OPENAI_API_BASE"), model)
	conv := chat.NewConversation(persona)
	speaker := chat.NewSpeaker(mute)

	fmt.Println("Ambient companion ready. Type 'exit' to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println("\nLater, man.")
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Catch you on the flip side.")
			return
		}

		reply, err := gen.Reply(context.Background(), conv, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[API error: %v]\n", err)
			continue
		}

		fmt.Println(reply)
		fmt.Println()
		if err := speaker.Say(reply); err != nil {
			fmt.Fprintf(os.Stderr, "[Voice playback failed: %v]\n", err)
		}
	}
}
