package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowtrigger/internal/format"
	"flowtrigger/internal/ollama"
)

var (
	modelFrom   string
	modelSystem string
	modelParams []string
	modelHost   string
	modelPrint  bool
)

func init() {
	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Manage custom local models",
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a custom model from a base model",
		Long: `Create a custom model with its own system prompt and parameters.

Example:
  flowtrigger model create python_assistant \
    --system "You are an expert Python programmer. Provide clear, concise code examples with explanations." \
    --param temperature=0.7 --param top_p=0.9`,
		Args: cobra.ExactArgs(1),
		RunE: runModelCreate,
	}
	createCmd.Flags().StringVar(&modelFrom, "from", ollama.DefaultModel, "Base model")
	createCmd.Flags().StringVar(&modelSystem, "system", "", "System prompt")
	createCmd.Flags().StringArrayVarP(&modelParams, "param", "p", []string{}, "Model parameter as key=value (can be used multiple times)")
	createCmd.Flags().StringVar(&modelHost, "host", "", "Ollama address (or set OLLAMA_HOST)")
	createCmd.Flags().BoolVar(&modelPrint, "print", false, "Print the equivalent Modelfile and exit")

	modelCmd.AddCommand(createCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelCreate(cmd *cobra.Command, args []string) error {
	params, err := ollama.ParseParameters(modelParams)
	if err != nil {
		return err
	}

	request := ollama.CreateRequest{
		Model:      args[0],
		From:       modelFrom,
		System:     modelSystem,
		Parameters: params,
	}

	out := cmd.OutOrStdout()
	if modelPrint {
		fmt.Fprint(out, ollama.Modelfile(request))
		return nil
	}

	c, err := newOllamaClient(modelHost)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Creating custom model '%s'...\n", request.Model)
	status, err := c.CreateModel(cmd.Context(), request)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	format.PrintSuccess(out, fmt.Sprintf("Custom model '%s' created (%s)", request.Model, status))
	return nil
}
