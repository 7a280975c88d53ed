package cmd

import (
	"fmt"
	"os"
	"time"

	client "github.com/mutablelogic/go-client"
	"github.com/spf13/cobra"

	"flowtrigger/internal/format"
	"flowtrigger/internal/ollama"
)

// chatFlags are shared by every command that talks to the chat service
type chatFlags struct {
	host        string
	model       string
	temperature float64
}

func (f *chatFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", "", "Ollama address (or set OLLAMA_HOST, default "+ollama.DefaultHost+")")
	cmd.Flags().StringVarP(&f.model, "model", "m", ollama.DefaultModel, "Model to chat with")
	cmd.Flags().Float64VarP(&f.temperature, "temperature", "t", ollama.DefaultTemperature, "Sampling temperature, 0.0-1.0")
}

func (f *chatFlags) client() (*ollama.Client, error) {
	return newOllamaClient(f.host)
}

func newOllamaClient(host string) (*ollama.Client, error) {
	opts := []client.ClientOpt{client.OptTimeout(5 * time.Minute)}
	if verbose {
		opts = append(opts, client.OptTrace(os.Stderr, true))
	}
	return ollama.New(host, opts...)
}

var (
	chatOpts   chatFlags
	chatSystem string
)

func init() {
	chatCmd := &cobra.Command{
		Use:   "chat <prompt> [followup...]",
		Short: "Chat with a local model",
		Long: `Chat with a local Ollama model.

Each argument is one user turn. Replies are kept in the conversation so
follow-up turns see the earlier context.

Examples:
  flowtrigger chat "Explain quantum computing in simple terms"
  flowtrigger chat "What is machine learning?" "Can you give me a practical example?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runChat,
	}
	chatOpts.bind(chatCmd)
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "System prompt")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	c, err := chatOpts.client()
	if err != nil {
		return err
	}

	var messages []ollama.Message
	if chatSystem != "" {
		messages = append(messages, ollama.Message{Role: ollama.RoleSystem, Content: chatSystem})
	}

	out := cmd.OutOrStdout()
	for i, prompt := range args {
		messages = append(messages, ollama.Message{Role: ollama.RoleUser, Content: prompt})

		response, err := c.Chat(cmd.Context(), chatOpts.model, messages, chatOpts.temperature)
		if err != nil {
			return fmt.Errorf("error getting %s response: %w", chatOpts.model, err)
		}
		messages = append(messages, ollama.Message{Role: ollama.RoleAssistant, Content: response.Message.Content})

		if i > 0 {
			fmt.Fprintln(out)
		}
		format.PrintReply(out, "AI:", response.Message.Content)
	}
	return nil
}
