package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oraraka-deko/sonda/sonda"
)

var (
	// Global flags
	cfgFile string
	method  string
	model   string
	system  string
	summary string
	timeout time.Duration
	verbose bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sonda [query]",
	Short: "Route research queries to OpenAI research backends",
	Long: `sonda forwards a research query to one of two hosted OpenAI research
backends and prints the normalized report.

With --method auto (the default) the query is classified by keyword
heuristics: comprehensive queries go to the deep-research backend,
technical queries to the agent pipeline. If the chosen backend fails,
the other one is tried once.

The OPENAI_API_KEY environment variable must be set.`,
	Args: cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runResearch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (models, keyword sets)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show progress information and debug logs")
	rootCmd.Flags().StringVarP(&method, "method", "m", "auto", "research method: auto, agents, deep-research")
	rootCmd.Flags().StringVar(&model, "model", "", "model override for the chosen backend")
	rootCmd.Flags().StringVarP(&system, "system", "s", "", "custom system message for research guidance")
	rootCmd.Flags().StringVar(&summary, "summary", "auto", "reasoning summary level: auto, detailed, none")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "per-backend-call timeout (default 10m)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.DetectEnv = true
	cfg.Logger = logger
	cfg.Timeout = timeout

	client, err := sonda.New(cfg)
	if err != nil {
		return err
	}

	req := sonda.ResearchRequest{
		Query:   strings.Join(args, " "),
		Method:  parseMethod(method),
		Model:   model,
		System:  system,
		Summary: sonda.SummaryLevel(summary),
	}
	if verbose {
		req.OnProgress = printProgress
	}

	res, err := client.Research(cmd.Context(), req)
	if err != nil {
		return err
	}

	printResult(res)
	return nil
}

// loadConfig reads the optional YAML config file. Flags and the
// environment take precedence over file values.
func loadConfig() (sonda.Config, error) {
	var cfg sonda.Config
	if cfgFile == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ResearchModel = v.GetString("models.research")
	cfg.AuxModel = v.GetString("models.aux")
	cfg.DeepResearchModel = v.GetString("models.deep_research")
	cfg.DefaultMethod = parseMethod(v.GetString("default_method"))
	if v.IsSet("keywords.comprehensive") {
		cfg.ComprehensiveKeywords = v.GetStringSlice("keywords.comprehensive")
	}
	if v.IsSet("keywords.technical") {
		cfg.TechnicalKeywords = v.GetStringSlice("keywords.technical")
	}
	return cfg, nil
}

func parseMethod(s string) sonda.Method {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "agents", "openai-agents", string(sonda.MethodAgents):
		return sonda.MethodAgents
	case "deep-research", string(sonda.MethodDeepResearch):
		return sonda.MethodDeepResearch
	default:
		return sonda.MethodAuto
	}
}

func printProgress(ev sonda.ProgressEvent) {
	switch ev.Stage {
	case sonda.StageAgentSwitch:
		fmt.Printf("-> switched to agent: %s\n", ev.Agent)
	case sonda.StageDegraded:
		fmt.Printf("-> degraded: %s\n", ev.Detail)
	case sonda.StageFallback:
		fmt.Printf("-> falling back to: %s\n", ev.Detail)
	}
}

func printResult(res sonda.UnifiedResult) {
	divider := strings.Repeat("=", 50)

	fmt.Println(divider)
	fmt.Printf("Method used: %s\n", res.MethodUsed)
	fmt.Printf("Request ID:  %s\n", res.RequestID)
	fmt.Println(divider)
	fmt.Println(res.Result)
	fmt.Println(divider)

	if searches, ok := res.Metadata[sonda.MetaWebSearches].([]string); ok && len(searches) > 0 {
		fmt.Printf("\nWeb searches performed (%d):\n", len(searches))
		for i, s := range searches {
			fmt.Printf("%d. %s\n", i+1, s)
		}
	}

	if citations, ok := res.Metadata[sonda.MetaCitations].([]sonda.Citation); ok && len(citations) > 0 {
		fmt.Printf("\nCitations (%d):\n", len(citations))
		for i, c := range citations {
			fmt.Printf("%d. %s\n", i+1, c.Title)
			if c.URL != "" {
				fmt.Printf("   URL: %s\n", c.URL)
			}
			if c.Excerpt != "" {
				fmt.Printf("   Excerpt: %s\n", c.Excerpt)
			}
		}
	}

	if trace, ok := res.Metadata[sonda.MetaAgentTrace].([]string); ok && len(trace) > 0 {
		fmt.Printf("\nAgents used: %s\n", strings.Join(trace, ", "))
	}

	if sources, ok := res.Metadata[sonda.MetaSources].([]string); ok && len(sources) > 0 {
		fmt.Printf("\nSources (%d):\n", len(sources))
		for i, s := range sources {
			fmt.Printf("%d. %s\n", i+1, s)
		}
	}
}
