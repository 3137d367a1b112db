package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/chaptrack/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [chapter_file]",
	Short: "Translate chapter titles to another language using AI",
	Long: `Translate the chapter titles of a chapter track using AI.

Chapter timing is kept; only the titles change. The provider, model and
batching defaults come from the [translate] section of the config file.

Examples:
  chaptrack translate movie.srt --target-language japanese
  chaptrack translate movie.chaptrack -t de --provider anthropic
  chaptrack translate movie.vtt -l english -t spanish -o movie.es.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the chapter titles")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the model")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation requests")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of chapter titles per API request")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if providerStr == "" {
		providerStr = cfg.Translate.Provider
	}
	provider := translate.Provider(strings.ToLower(providerStr))
	if model == "" {
		model = cfg.Translate.Model
	}
	if !cmd.Flags().Changed("concurrency") {
		concurrency = cfg.Translate.Concurrency
	}
	if !cmd.Flags().Changed("batch-size") {
		batchSize = cfg.Translate.BatchSize
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if apiKey == "" {
		apiKey = cfg.APIKey(string(provider))
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			apiKeyEnvVar(provider),
		)
	}

	if outputPath == "" {
		outputPath = derivedPath(inputPath, targetLang, "")
	}

	logger.Infow("Starting chapter translation",
		"input", inputPath,
		"output", outputPath,
		"provider", provider,
		"target_language", targetLang,
		"input_language", inputLang,
		"model", model,
	)

	w, err := openWorkspace(inputPath)
	if err != nil {
		return err
	}
	store := w.store()
	if store.Len() == 0 {
		return fmt.Errorf("chapter track contains no chapters")
	}

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
		Concurrency:    concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating chapter titles",
		"chapters", store.Len(),
		"concurrency", concurrency,
	)
	if err := translate.TranslateChapters(ctx, translator, store); err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	logger.Infow("Writing output file")
	if err := w.save(outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Chapters translated successfully: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Chapters: %d\n", store.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "  Target language: %s\n", targetLang)
	return nil
}

func apiKeyEnvVar(provider translate.Provider) string {
	switch provider {
	case translate.ProviderGemini:
		return "GEMINI_API_KEY"
	case translate.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case translate.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "CHAPTRACK_TRANSLATE_API_KEY"
	}
}
