package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gapfill/gapfill/internal/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive configuration of the enrichment provider",
		Long:  "Choose the LLM that fills in missing task details and store its API key.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return err
				}
				path = p
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}

			return runSetup(bufio.NewReader(os.Stdin), path, cfg)
		},
	}
}

func runSetup(reader *bufio.Reader, path string, cfg config.Config) error {
	fmt.Println("Which LLM should fill in missing task details?")
	fmt.Println("  [1] Claude (Anthropic)")
	fmt.Println("  [2] OpenAI")
	fmt.Println("  [3] Ollama (local)")
	fmt.Println("  [4] None (keyword rules only)")
	fmt.Print("> ")

	switch strings.TrimSpace(readLineBuf(reader)) {
	case "1":
		cfg.LLM.Provider = "claude"
		fmt.Print("Enter your Anthropic API key (or press Enter to set ANTHROPIC_API_KEY later): ")
		if key := readLineBuf(reader); key != "" {
			cfg.LLM.Keys.Anthropic = key
		}
	case "2":
		cfg.LLM.Provider = "openai"
		fmt.Print("Enter your OpenAI API key (or press Enter to set OPENAI_API_KEY later): ")
		if key := readLineBuf(reader); key != "" {
			cfg.LLM.Keys.OpenAI = key
		}
	case "3":
		cfg.LLM.Provider = "ollama"
		fmt.Printf("Ollama host (press Enter for %s): ", cfg.LLM.Ollama.Host)
		if host := readLineBuf(reader); host != "" {
			cfg.LLM.Ollama.Host = host
		}
		fmt.Printf("Ollama model (press Enter for %s): ", cfg.LLM.Ollama.Model)
		if m := readLineBuf(reader); m != "" {
			cfg.LLM.Ollama.Model = m
		}
	case "4":
		cfg.LLM.Provider = "none"
	default:
		fmt.Println("Unrecognized choice; keyword rules only.")
		cfg.LLM.Provider = "none"
	}
	cfg.Enrichment.Enabled = true

	fmt.Println()
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("Configuration saved to %s\n", path)
	return nil
}

// readLineBuf reads a trimmed line from a bufio.Reader.
func readLineBuf(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
