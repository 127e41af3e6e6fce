package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/han-segmenter/pkg/han"
)

type config struct {
	Dict      string `yaml:"dict"`
	HMMModel  string `yaml:"hmm_model"`
	UserDict  string `yaml:"user_dict"`
	IDF       string `yaml:"idf"`
	StopWords string `yaml:"stop_words"`
}

var (
	cfgPath string
	cfg     config
	verbose bool
	logger  *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "han",
		Short:         "Chinese word segmentation toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "YAML config file")
	pf.StringVarP(&cfg.Dict, "dict", "d", "data/dict.utf8", "dictionary file")
	pf.StringVarP(&cfg.HMMModel, "hmm-model", "m", "data/hmm_model.utf8", "HMM model file")
	pf.StringVarP(&cfg.UserDict, "user-dict", "u", "", "user dictionary paths, '|' or ';' separated")
	pf.StringVar(&cfg.IDF, "idf", "data/idf.utf8", "IDF table file")
	pf.StringVar(&cfg.StopWords, "stop-words", "data/stop_words.utf8", "stopword file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return setup(cmd.Flags())
	}
	root.AddCommand(cutCommand(), tagCommand(), extractCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(flags *pflag.FlagSet) error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	if cfgPath == "" {
		return nil
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fileCfg config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config %s: %w", cfgPath, err)
	}
	// Explicit flags win over the config file.
	if !flags.Changed("dict") && fileCfg.Dict != "" {
		cfg.Dict = fileCfg.Dict
	}
	if !flags.Changed("hmm-model") && fileCfg.HMMModel != "" {
		cfg.HMMModel = fileCfg.HMMModel
	}
	if !flags.Changed("user-dict") && fileCfg.UserDict != "" {
		cfg.UserDict = fileCfg.UserDict
	}
	if !flags.Changed("idf") && fileCfg.IDF != "" {
		cfg.IDF = fileCfg.IDF
	}
	if !flags.Changed("stop-words") && fileCfg.StopWords != "" {
		cfg.StopWords = fileCfg.StopWords
	}
	return nil
}

func newSegmenter() (*han.Segmenter, error) {
	start := time.Now()
	seg, err := han.New(han.Options{
		DictPath:      cfg.Dict,
		HMMModelPath:  cfg.HMMModel,
		UserDictPaths: cfg.UserDict,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("segmenter ready", zap.Duration("load_time", time.Since(start)))
	return seg, nil
}

func parseMode(s string) (han.Mode, error) {
	switch strings.ToLower(s) {
	case "mp":
		return han.ModeMP, nil
	case "hmm":
		return han.ModeHMM, nil
	case "mix":
		return han.ModeMix, nil
	case "query":
		return han.ModeQuery, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func cutCommand() *cobra.Command {
	var (
		modeName   string
		noHMM      bool
		inputPath  string
		outputPath string
		threads    int
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "cut",
		Short: "Segment lines of text into words",
		RunE: func(_ *cobra.Command, _ []string) error {
			mode, err := parseMode(modeName)
			if err != nil {
				return err
			}
			seg, err := newSegmenter()
			if err != nil {
				return err
			}
			lines, err := readLines(inputPath, limit)
			if err != nil {
				return err
			}
			results := segmentLines(seg, lines, threads, func(ctx *han.CutContext, line string) string {
				words := seg.Cut(line, han.CutOptions{Mode: mode, UseHMM: !noHMM, Context: ctx})
				texts := make([]string, 0, len(words))
				for _, w := range words {
					texts = append(texts, w.Text)
				}
				return strings.Join(texts, "/")
			})
			return writeLines(outputPath, results)
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", "mix", "segmentation mode: mp, hmm, mix, query")
	cmd.Flags().BoolVar(&noHMM, "no-hmm", false, "disable HMM recovery in mix mode")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input text file (default stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "worker goroutines (0 = all CPUs)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "limit number of lines (0 = unlimited)")
	return cmd
}

func tagCommand() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		threads    int
	)
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Segment lines and attach part-of-speech tags",
		RunE: func(_ *cobra.Command, _ []string) error {
			seg, err := newSegmenter()
			if err != nil {
				return err
			}
			lines, err := readLines(inputPath, 0)
			if err != nil {
				return err
			}
			results := segmentLines(seg, lines, threads, func(_ *han.CutContext, line string) string {
				tagged := seg.Tag(line)
				pairs := make([]string, 0, len(tagged))
				for _, tw := range tagged {
					pairs = append(pairs, tw.Text+"/"+tw.Tag)
				}
				return strings.Join(pairs, " ")
			})
			return writeLines(outputPath, results)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input text file (default stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "worker goroutines (0 = all CPUs)")
	return cmd
}

func extractCommand() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		topN       int
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract top keywords from the input text",
		RunE: func(_ *cobra.Command, _ []string) error {
			seg, err := newSegmenter()
			if err != nil {
				return err
			}
			ke, err := han.NewKeywordExtractor(seg, cfg.IDF, cfg.StopWords, logger)
			if err != nil {
				return err
			}
			text, err := readAll(inputPath)
			if err != nil {
				return err
			}
			keywords := ke.Extract(text, topN)
			out := make([]string, 0, len(keywords))
			for _, kw := range keywords {
				out = append(out, fmt.Sprintf("%s\t%.6f", kw.Word, kw.Weight))
			}
			return writeLines(outputPath, out)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input text file (default stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&topN, "top", "n", 20, "number of keywords")
	return cmd
}

// segmentLines fans lines out to worker goroutines; each worker owns a
// CutContext so repeated cuts reuse its scratch buffers.
func segmentLines(seg *han.Segmenter, lines []string, threads int, process func(*han.CutContext, string) string) []string {
	numWorkers := threads
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	start := time.Now()

	results := make([]string, len(lines))
	jobs := make(chan int, len(lines))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := han.NewCutContext()
			for i := range jobs {
				results[i] = process(ctx, lines[i])
			}
		}()
	}
	for i := range lines {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	logger.Info("processed",
		zap.String("lines", humanize.Comma(int64(len(lines)))),
		zap.Duration("elapsed", elapsed),
		zap.Float64("lines_per_sec", float64(len(lines))/elapsed.Seconds()))
	return results
}

func readLines(path string, limit int) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("input file not found: %w", err)
		}
		defer file.Close()
		r = file
	}
	var lines []string
	scanner := bufio.NewScanner(r)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
		if limit > 0 && len(lines) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func readAll(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("input file not found: %w", err)
	}
	return string(data), nil
}

func writeLines(path string, lines []string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer file.Close()
		w = file
	}
	writer := bufio.NewWriter(w)
	for _, line := range lines {
		writer.WriteString(line)
		writer.WriteByte('\n')
	}
	return writer.Flush()
}
