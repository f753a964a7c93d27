package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/scrubcli/scrub/internal/shred"
	"golang.org/x/sync/errgroup"
)

func (c *CLI) Shred(args []string) error {
	slog.Debug("cli.shred started")
	defer slog.Debug("cli.shred finished")

	if len(args) == 0 {
		return errors.New("too few arguments")
	}

	roots, err := c.resolvePaths(args)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		// every argument was missing and -f swallowed them
		return nil
	}

	shredCfg, err := c.shredConfig()
	if err != nil {
		return err
	}

	discoverOpts := shred.DiscoverOptions{
		ExcludeFiles:    c.config.Exclude.Files,
		ExcludePatterns: c.config.Exclude.Patterns,
		ExcludeGlobs:    c.config.Exclude.Globs,
	}

	if c.option.DryRun {
		return c.printPlan(roots, discoverOpts)
	}

	if !c.option.Yes && !c.option.Rm.Force {
		prompt := fmt.Sprintf("scrub will permanently destroy %d path(s); this cannot be undone. Proceed?", len(roots))
		if !ask(prompt) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	progressCh := make(chan shred.Progress, 1)
	shredder, err := shred.New(shredCfg,
		shred.WithDiscoverOptions(discoverOpts),
		shred.WithProgress(func(p shred.Progress) {
			select {
			case progressCh <- p:
			default:
				// never block the erasure loop; the next update replaces this one
			}
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	maxDur, err := c.config.Shred.MaxRunDuration()
	if err != nil {
		return fmt.Errorf("invalid max_duration: %w", err)
	}
	if maxDur > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, maxDur)
		defer cancelTimeout()
	}

	var res *shred.Result
	var eg errgroup.Group
	eg.Go(func() error {
		defer close(progressCh)
		var runErr error
		res, runErr = shredder.Run(ctx, roots)
		return runErr
	})
	eg.Go(func() error {
		renderProgress(progressCh)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	c.printSummary(res)

	if res.FilesFailed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", res.FilesFailed, res.FilesProcessed)
	}
	return nil
}

// resolvePaths makes arguments absolute and rejects protected paths.
// With -f, missing arguments are silently dropped.
func (c *CLI) resolvePaths(args []string) ([]string, error) {
	var roots []string
	for _, arg := range args {
		absPath, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}

		if _, err := os.Lstat(absPath); err != nil {
			if os.IsNotExist(err) {
				if c.option.Rm.Force {
					slog.Debug("ignoring nonexistent path", "path", absPath)
					continue
				}
				return nil, fmt.Errorf("%s: no such file or directory", arg)
			}
			return nil, err
		}

		if err := c.validatePath(absPath); err != nil {
			return nil, err
		}
		roots = append(roots, absPath)
	}
	return roots, nil
}

// validatePath checks the target against the protected path list and
// refuses whole mount roots
func (c *CLI) validatePath(absPath string) error {
	protected := c.config.Core.ProtectedPaths
	if len(protected) == 0 {
		protected = []string{"/"}
	}
	for _, p := range protected {
		if absPath == p {
			return fmt.Errorf("cannot shred protected path: %s", absPath)
		}
	}
	if v := shred.ClassifyPath(absPath); v.MountPoint == absPath {
		return fmt.Errorf("cannot shred a mount root: %s", absPath)
	}
	return nil
}

func (c *CLI) shredConfig() (shred.Config, error) {
	chunk, err := c.config.Shred.ChunkSizeBytes()
	if err != nil {
		return shred.Config{}, fmt.Errorf("invalid chunk_size: %w", err)
	}

	passes := c.config.Shred.Passes
	if c.option.Passes > 0 {
		passes = c.option.Passes
	}

	verify := c.config.Shred.Verify
	if c.option.NoVerify {
		verify = false
	}

	return shred.Config{
		Passes:    passes,
		ChunkSize: int(chunk),
		Verify:    verify,
	}, nil
}

// printPlan shows what a run would do, without any I/O on the targets
func (c *CLI) printPlan(roots []string, opts shred.DiscoverOptions) error {
	files, err := shred.Discover(roots, opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("Nothing to shred.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"File", "Size", "Filesystem", "Strategy"})
	for _, f := range files {
		v := shred.ClassifyPath(f.Path)
		table.Append([]string{
			f.Path,
			humanize.Bytes(uint64(f.Size)),
			v.FSType,
			shred.StrategyFor(v).String(),
		})
	}
	table.Render()

	total := lo.SumBy(files, func(f shred.DiscoveredFile) int64 { return f.Size })
	fmt.Printf("%d file(s), %s total\n", len(files), humanize.Bytes(uint64(total)))
	return nil
}

func ask(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// renderProgress drains the progress channel, drawing a single
// updating line when stderr is a terminal
func renderProgress(ch <-chan shred.Progress) {
	tty := isatty.IsTerminal(os.Stderr.Fd())
	for p := range ch {
		if !tty {
			continue
		}
		fmt.Fprintf(os.Stderr, "\r\033[K[%3.0f%%] %s", p.Fraction*100, p.Status)
	}
	if tty {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}

func (c *CLI) printSummary(res *shred.Result) {
	green := color.New(color.FgHiGreen).SprintFunc()
	yellow := color.New(color.FgHiYellow).SprintFunc()
	red := color.New(color.FgHiRed).SprintFunc()

	if res.WasCancelled {
		fmt.Println(yellow("Cancelled."))
	}

	fmt.Printf("%s %d file(s), %s in %s\n",
		green("Shredded"),
		res.FilesSucceeded,
		humanize.Bytes(uint64(res.BytesShredded)),
		res.Duration.Round(time.Millisecond),
	)

	if c.option.Rm.Verbose || c.config.Core.Verbose {
		for _, f := range res.Files {
			if f.Succeeded() {
				fmt.Printf("shredded '%s' (%s)\n", f.Path, f.Strategy)
			}
		}
	}

	unlinkOnly := lo.CountBy(res.Files, func(f shred.FileResult) bool {
		return f.Succeeded() && f.Strategy == shred.StrategyUnlinkOnly
	})
	if unlinkOnly > 0 {
		fmt.Println(yellow(fmt.Sprintf(
			"Warning: %d file(s) on network volumes were removed without content destruction", unlinkOnly)))
	}

	if len(res.HardLinkedFiles) > 0 {
		fmt.Println(yellow("Warning: data may persist through other hard links for:"))
		for _, path := range res.HardLinkedFiles {
			fmt.Printf("  %s\n", path)
		}
	}

	failures := lo.Filter(res.Files, func(f shred.FileResult, _ int) bool {
		return !f.Succeeded()
	})
	if len(failures) > 0 {
		fmt.Println(red(fmt.Sprintf("Failed to shred %d file(s):", len(failures))))
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"File", "Strategy", "Error"})
		for _, f := range failures {
			table.Append([]string{f.Path, f.Strategy.String(), f.Err.Error()})
		}
		table.Render()
	}
}
