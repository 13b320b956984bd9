package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/logger"
)

var buildCommand = cli.Command{
	Name:      "build",
	Usage:     "Indexes every text file under a directory",
	ArgsUsage: "<directory>",
	Action:    runBuild,
}

var searchCommand = cli.Command{
	Name:      "search",
	Usage:     "Lists the documents containing all of the given terms",
	ArgsUsage: "<term> [<term> ...]",
	Action:    runSearch,
}

var infoCommand = cli.Command{
	Name:   "info",
	Usage:  "Prints the header and counts of the index file",
	Action: runInfo,
}

func runBuild(c *cli.Context) error {
	if c.NArg() != 1 {
		return apperrors.New(apperrors.ErrInvalidInput, "", "usage: build <directory>")
	}
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.finish()

	ctx, stop := signalContext("build")
	defer stop()
	engine, err := indexer.NewEngine(rt.cfg.Index, rt.metrics)
	if err != nil {
		return err
	}
	stats, err := engine.Build(ctx, c.Args().First())
	if err != nil {
		logger.FromContext(ctx).Error("build failed", "error", err)
		return err
	}
	out := c.App.Writer
	fmt.Fprintf(out, "index written to %s\n", stats.Path)
	fmt.Fprintf(out, "documents indexed: %d\n", stats.Documents)
	fmt.Fprintf(out, "unique words: %d\n", stats.Words)
	if stats.Skipped > 0 {
		fmt.Fprintf(out, "files skipped: %d\n", stats.Skipped)
	}
	if stats.DroppedTerms > 0 {
		fmt.Fprintf(out, "oversized words dropped: %d\n", stats.DroppedTerms)
	}
	return nil
}

func runSearch(c *cli.Context) error {
	if c.NArg() < 1 {
		return apperrors.New(apperrors.ErrInvalidInput, "", "usage: search <term> [<term> ...]")
	}
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.finish()

	ctx, stop := signalContext("search")
	defer stop()
	result, err := searcher.New(rt.cfg.Index, rt.metrics).Search(ctx, c.Args())
	if err != nil {
		logger.FromContext(ctx).Error("search failed", "error", err)
		if apperrors.Is(err, apperrors.ErrIndexNotFound) {
			return fmt.Errorf("%w (run: %s build <directory>)", err, c.App.HelpName)
		}
		return err
	}
	printSearchResult(c.App.Writer, result)
	return nil
}

func runInfo(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.finish()

	info, err := searcher.New(rt.cfg.Index, rt.metrics).Info()
	if err != nil {
		return err
	}
	out := c.App.Writer
	fmt.Fprintf(out, "path: %s\n", rt.cfg.Index.IndexPath)
	fmt.Fprintf(out, "format version: %d\n", info.Header.Version)
	fmt.Fprintf(out, "compression: %s\n", info.Header.Compression)
	fmt.Fprintf(out, "documents: %d\n", info.Documents)
	fmt.Fprintf(out, "unique words: %d\n", info.Words)
	fmt.Fprintf(out, "postings: %d\n", info.Postings)
	fmt.Fprintf(out, "size: %d bytes\n", info.Size)
	return nil
}

// printSearchResult writes the matching paths followed by the number of
// documents each looked-up term appears in.
func printSearchResult(out io.Writer, result *executor.SearchResult) {
	if result.TotalHits == 0 {
		fmt.Fprintln(out, "no documents found")
	} else {
		fmt.Fprintf(out, "documents found (%d):\n", result.TotalHits)
		for _, path := range result.Results {
			fmt.Fprintf(out, "  %s\n", path)
		}
	}
	if len(result.Terms) > 0 {
		fmt.Fprintln(out, "term frequencies:")
		for _, term := range result.Terms {
			fmt.Fprintf(out, "  %q: %d\n", term, result.TermStats[term])
		}
	}
	if len(result.StopWords) > 0 {
		fmt.Fprintf(out, "stop-words ignored: %s\n", strings.Join(result.StopWords, " "))
	}
}
