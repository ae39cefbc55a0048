// Command dbcgen compiles a .dbc file into a package of generated Go
// accessor bundles, one file per message.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"dbc-bitgen/internal/codegen"
	"dbc-bitgen/internal/dbcfront"
	"dbc-bitgen/internal/logx"
	"dbc-bitgen/internal/message"
)

func main() {
	var (
		dbcPath   = flag.String("dbc", "", "Path to the .dbc file to compile (required)")
		outDir    = flag.String("out", "generated", "Output directory for generated accessor files")
		pkgName   = flag.String("pkg", "generated", "Go package name for generated files")
		messages  = flag.String("messages", "", "Comma-separated message names to generate (default: all)")
		signals   = flag.String("signals", "", "Comma-separated signal names to generate (default: all in selected messages)")
		logLevel  = flag.String("log", "info", "trace|debug|info|warn|error|critical")
		logPath   = flag.String("logfile", "dbcgen.log", "Path to the log file")
	)
	flag.Parse()

	log, err := logx.NewFileLogger(*logPath, logx.ParseLevel(*logLevel), true)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open " + *logPath + ": " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()
	log = log.With("dbcgen")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dbcPath == "" {
		log.Critical("missing required -dbc flag")
		os.Exit(1)
	}

	if err := run(ctx, log, *dbcPath, *outDir, *pkgName, *messages, *signals); err != nil {
		log.Critical("generation failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logx.Logger, dbcPath, outDir, pkgName, messagesFlag, signalsFlag string) error {
	db, unknown, err := dbcfront.Load(dbcPath)
	if err != nil {
		return fmt.Errorf("dbcgen: load %s: %w", dbcPath, err)
	}
	for _, u := range unknown {
		log.Event(logx.WARN, "unrecognized definition", logx.Fields{"def": u.Def})
	}

	descs := dbcfront.ToDescriptions(db)
	wantedMessages := splitSet(messagesFlag)
	wantedSignals := splitSet(signalsFlag)

	var plans []*message.Plan
	for _, d := range descs {
		if wantedMessages != nil && !wantedMessages[d.Name] {
			continue
		}
		p := message.Build(d, wantedSignals)
		for _, note := range p.Skipped {
			log.SignalSkipped(p.Name, note.Signal, note.Reason)
		}
		for _, sp := range p.Signals {
			if !sp.CanEncode {
				log.EncodeUnsupported(p.Name, sp.Name)
			}
		}
		plans = append(plans, p)
	}
	if len(plans) == 0 {
		return fmt.Errorf("dbcgen: no messages selected out of %d in %s", len(descs), dbcPath)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("dbcgen: create output dir %s: %w", outDir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range plans {
		p := p
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			src, err := codegen.Emit(pkgName, p)
			if err != nil {
				return fmt.Errorf("dbcgen: emit %s: %w", p.Name, err)
			}
			path := filepath.Join(outDir, strings.ToLower(p.Name)+".go")
			if err := os.WriteFile(path, src, 0o644); err != nil {
				return fmt.Errorf("dbcgen: write %s: %w", path, err)
			}
			log.Info("wrote %s (%d signal accessors)", path, len(p.Signals))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("generated %d message(s) into %s", len(plans), outDir)
	return nil
}

func splitSet(csv string) map[string]bool {
	if csv == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = true
		}
	}
	return out
}
