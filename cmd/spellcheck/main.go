package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/contextspell/internal/config"
	"github.com/contextspell/internal/corrector"
	"github.com/contextspell/internal/customdict"
	"github.com/contextspell/internal/debug"
	"github.com/contextspell/internal/dictionary"
	"github.com/contextspell/internal/web"
)

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "spellcheck",
		Short: "Context-aware spell correction",
		Long:  `A statistical spell corrector that ranks corrections by trigram language-model context, catching real-word errors as well as typos`,
	}

	rootCmd.AddCommand(createTrainCmd())
	rootCmd.AddCommand(createFixCmd())
	rootCmd.AddCommand(createCandidatesCmd())
	rootCmd.AddCommand(createScanCmd())
	rootCmd.AddCommand(createStatsCmd())
	rootCmd.AddCommand(createServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newCorrector builds a corrector from SPELL_* environment settings.
func newCorrector() *corrector.SpellCorrector {
	cfg := config.LoadCorrector()
	sc := corrector.New()
	sc.SetPenalty(cfg.KnownWordsPenalty, cfg.UnknownWordsPenalty)
	if err := sc.SetMaxCandidatesToCheck(cfg.MaxCandidatesToCheck); err != nil {
		log.Fatalf("Invalid SPELL_MAX_CANDIDATES: %v", err)
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sc.WithCustomDict(customdict.New(client, cfg.RedisKey))
	}
	return sc
}

func loadedCorrector(modelPath string) *corrector.SpellCorrector {
	sc := newCorrector()
	if err := sc.LoadLangModel(modelPath); err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	return sc
}

func createTrainCmd() *cobra.Command {
	var fromDB bool
	var table, column string
	var debugEnabled bool

	cmd := &cobra.Command{
		Use:   "train [corpus] [alphabet] [model-out]",
		Short: "Train a language model from a text corpus",
		Long:  `Streams the corpus, builds the vocabulary and trigram tables, and writes the binary model file. With --from-db the corpus argument is the path the Postgres documents are exported to first.`,
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			corpusPath, alphabetPath, modelPath := args[0], args[1], args[2]

			if fromDB {
				db, err := dictionary.Connect()
				if err != nil {
					log.Fatalf("Failed to connect to database: %v", err)
				}
				defer db.Close()

				source := dictionary.NewCorpusSource(db, table, column)
				source.SetDebug(debugEnabled)
				count, err := source.Export(corpusPath)
				if err != nil {
					log.Fatalf("Failed to export corpus: %v", err)
				}
				fmt.Printf("Exported %d documents to %s\n", count, corpusPath)
			}

			done := debug.Timing(debugEnabled, "training")
			sc := newCorrector()
			if err := sc.TrainLangModel(corpusPath, alphabetPath, modelPath); err != nil {
				log.Fatalf("Training failed: %v", err)
			}
			done()
			fmt.Printf("Model written to %s\n", modelPath)
		},
	}

	cmd.Flags().BoolVar(&fromDB, "from-db", false, "export the corpus from Postgres before training")
	cmd.Flags().StringVar(&table, "table", "documents", "source table for --from-db")
	cmd.Flags().StringVar(&column, "column", "body", "text column for --from-db")
	cmd.Flags().BoolVar(&debugEnabled, "debug", false, "enable progress output")
	return cmd
}

func createFixCmd() *cobra.Command {
	var normalized bool

	cmd := &cobra.Command{
		Use:   "fix [model] [text...]",
		Short: "Correct a text fragment",
		Long:  `Corrects the given text (or stdin when no text arguments are given) and prints the result`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sc := loadedCorrector(args[0])

			fix := sc.FixFragment
			if normalized {
				fix = sc.FixFragmentNormalized
			}

			if len(args) > 1 {
				fmt.Println(fix(strings.Join(args[1:], " ")))
				return
			}

			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
			for scanner.Scan() {
				fmt.Println(fix(scanner.Text()))
			}
			if err := scanner.Err(); err != nil {
				log.Fatalf("Reading stdin: %v", err)
			}
		},
	}

	cmd.Flags().BoolVar(&normalized, "normalized", false, "emit normalized output (lower-case, single spaces)")
	return cmd
}

func createCandidatesCmd() *cobra.Command {
	var position int

	cmd := &cobra.Command{
		Use:   "candidates [model] [words...]",
		Short: "Show scored candidates for one sentence position",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			sc := loadedCorrector(args[0])
			sentence := args[1:]

			scored := sc.GetCandidatesScored(sentence, position)
			if len(scored) == 0 {
				fmt.Println("No candidates")
				return
			}
			for _, s := range scored {
				fmt.Printf("%12.4f  %s\n", s.Score, s.Word)
			}
		},
	}

	cmd.Flags().IntVar(&position, "pos", 0, "sentence position to query")
	return cmd
}

func createScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [model] [text...]",
		Short: "Report every misspelling in a fragment as JSON",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			sc := loadedCorrector(args[0])
			fmt.Println(sc.GetALLCandidatesScoredJSON(strings.Join(args[1:], " ")))
		},
	}
}

func createStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [model]",
		Short: "Print model statistics",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sc := loadedCorrector(args[0])
			model, err := sc.GetLangModel()
			if err != nil {
				log.Fatalf("Failed to get model: %v", err)
			}
			stats := model.Stats()
			fmt.Printf("Vocabulary:   %d words\n", stats.VocabSize)
			fmt.Printf("Unigrams:     %d\n", stats.Gram1Count)
			fmt.Printf("Bigrams:      %d\n", stats.Gram2Count)
			fmt.Printf("Trigrams:     %d\n", stats.Gram3Count)
			fmt.Printf("Total tokens: %d\n", stats.TotalTokens)
			fmt.Printf("Checksum:     %016x\n", stats.CheckSum)
		},
	}
}

func createServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [model]",
		Short: "Serve the corrector over HTTP",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sc := loadedCorrector(args[0])

			server := web.NewServer(web.Config{
				Host: config.GetEnv("SPELL_WEB_HOST", "localhost"),
				Port: config.GetEnvInt("SPELL_WEB_PORT", 8480),
			}, sc)

			if err := server.Start(); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		},
	}
}
