package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"flowtrigger/internal/format"
	"flowtrigger/internal/model"
	"flowtrigger/internal/ollama"
	"flowtrigger/internal/trigger"
)

var (
	forwardFlags triggerFlags
	forwardChat  chatFlags
)

func init() {
	forwardCmd := &cobra.Command{
		Use:   "forward [prompt]",
		Short: "Ask a local model and send the answer to a flow",
		Long: `Ask a local model a question, then POST the answer to a flow.

The flow receives {"response", "timestamp", "model", "original_prompt",
"response_length"}. Any JSON object given with --data or --payload is
merged on top. The prompt is read from stdin when not given.

Example:
  flowtrigger forward "Draft a status update for the team" --url status-flow`,
		Args: cobra.MaximumNArgs(1),
		RunE: runForward,
	}
	forwardFlags.bind(forwardCmd, false)
	forwardChat.bind(forwardCmd)

	rootCmd.AddCommand(forwardCmd)
}

func runForward(cmd *cobra.Command, args []string) error {
	store := forwardFlags.openStore()
	if store != nil {
		defer store.Close()
	}

	// Resolve first so configuration errors surface before the model call
	cfg, err := forwardFlags.resolve(store)
	if err != nil {
		return err
	}

	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}
	if prompt == "" {
		return errors.New("no prompt provided")
	}

	c, err := forwardChat.client()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reply, err := ollama.Ask(cmd.Context(), c, forwardChat.model, "", prompt, forwardChat.temperature)
	if err != nil {
		return fmt.Errorf("error getting %s response: %w", forwardChat.model, err)
	}

	format.PrintSuccess(out, "AI response received:")
	fmt.Fprintln(out, strings.Repeat("━", 28))
	fmt.Fprintln(out, reply)
	fmt.Fprintln(out, strings.Repeat("━", 28))

	cfg.Payload, err = forwardPayload(cfg.Payload, reply, prompt, forwardChat.model, time.Now())
	if err != nil {
		return err
	}

	resp, err := forwardFlags.send(cmd, store, cfg)
	if err != nil || resp == nil {
		return err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("flow trigger failed with status %d", resp.StatusCode)
	}
	format.PrintSuccess(out, fmt.Sprintf("Flow triggered successfully! Status: %d", resp.StatusCode))
	return nil
}

// forwardPayload builds the flow body around the model reply. extra must
// be a JSON object; its keys win on collision.
func forwardPayload(extra model.Payload, reply, prompt, modelName string, now time.Time) (map[string]any, error) {
	payload := map[string]any{
		"response":        reply,
		"timestamp":       now.Format("2006-01-02T15:04:05.000000"),
		"model":           modelName,
		"original_prompt": prompt,
		"response_length": utf8.RuneCountInString(reply),
	}

	if extra != nil {
		obj, ok := extra.(map[string]any)
		if !ok {
			return nil, trigger.ConfigError(errors.New("extra payload for forward must be a JSON object"))
		}
		for k, v := range obj {
			payload[k] = v
		}
	}
	return payload, nil
}

// readPrompt takes the prompt from args, or one line from stdin
func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Enter your question for AI: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
