package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"github.com/spf13/viper"

	"github.com/vancomm/cubehunt/internal/cubes"
)

var log = logrus.New()

type options struct {
	Seed    int64
	Luck    float64
	Reveal  string
	Stats   bool
	LogPath string
	Verbose bool
}

func init() {
	flag.Int64("seed", 0, "grid seed")
	flag.Float64("luck", 1.0, "luck factor")
	flag.String("reveal", "", "comma separated x:y cells to reveal in order")
	flag.Bool("stats", false, "print kind and rarity statistics")
	flag.String("log", "", "also log to this file, rotated")
	flag.Bool("v", false, "debug logging")
}

// loadOptions resolves each option from, in order, an explicit flag, a
// CUBEGEN_* environment variable, and the flag default.
func loadOptions(fs *flag.FlagSet, v *viper.Viper) options {
	v.SetEnvPrefix("cubegen")
	v.AutomaticEnv()

	fs.VisitAll(func(f *flag.Flag) {
		v.SetDefault(f.Name, f.DefValue)
	})
	fs.Visit(func(f *flag.Flag) {
		v.Set(f.Name, f.Value.String())
	})

	return options{
		Seed:    v.GetInt64("seed"),
		Luck:    v.GetFloat64("luck"),
		Reveal:  v.GetString("reveal"),
		Stats:   v.GetBool("stats"),
		LogPath: v.GetString("log"),
		Verbose: v.GetBool("v"),
	}
}

func setupLogging(opts options) error {
	level := logrus.InfoLevel
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	if opts.LogPath != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   opts.LogPath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		log.AddHook(hook)
	}

	var out io.Writer = io.Discard
	if opts.Verbose {
		out = log.WriterLevel(logrus.DebugLevel)
	}
	cubes.Log = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// parseReveals reads "x:y,x:y".
func parseReveals(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		xs, ys, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("cell %q: expected x:y", part)
		}
		x, err := strconv.Atoi(xs)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", part, err)
		}
		y, err := strconv.Atoi(ys)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", part, err)
		}
		if !cubes.InBounds(x, y) {
			return nil, fmt.Errorf("cell %q: %w", part, cubes.ErrOutOfRange)
		}
		ids = append(ids, cubes.CellID(x, y))
	}
	return ids, nil
}

func playReveals(g *cubes.Grid, ids []int) cubes.ScoreState {
	var score cubes.ScoreState
	for _, id := range ids {
		x, y := cubes.Position(id)
		res, award, err := cubes.Reveal(g, id, &score)
		entry := log.WithFields(logrus.Fields{"x": x, "y": y})
		if err != nil {
			entry.WithError(err).Warn("reveal skipped")
			continue
		}
		entry.WithFields(logrus.Fields{
			"outcome":  res.Outcome.String(),
			"revealed": len(res.Revealed),
			"points":   award.Points,
			"combo":    award.Combo,
			"score":    score.Score,
		}).Info("revealed")
	}
	return score
}

func main() {
	flag.Parse()
	opts := loadOptions(flag.CommandLine, viper.New())

	if err := setupLogging(opts); err != nil {
		log.Fatal(err)
	}

	ids, err := parseReveals(opts.Reveal)
	if err != nil {
		log.Fatal("invalid -reveal: ", err)
	}

	log.WithFields(logrus.Fields{
		"seed": opts.Seed,
		"luck": opts.Luck,
	}).Debug("generating grid")
	g := cubes.Generate(opts.Seed, opts.Luck)

	fog := len(ids) > 0
	if fog {
		score := playReveals(g, ids)
		log.WithFields(logrus.Fields{
			"score":     score.Score,
			"max_combo": score.MaxCombo,
			"revealed":  g.RevealedCount(),
		}).Info("final score")
	}

	fmt.Print(g.ToString(fog))

	if opts.Stats {
		fmt.Println()
		if err := collectStats(g).Write(os.Stdout); err != nil {
			log.Fatal(err)
		}
	}
}
