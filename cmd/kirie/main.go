package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/storage"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/studio"
)

const usage = `usage: kirie [-api URL] [-dir DIR] [-lang ja|en] <command> [args]

commands:
  generate -style ID PROMPT   create a paper-cut image from text
  convert  -style ID FILE     turn a photo into a paper-cut image
  styles                      list available styles
  history                     list previous generations
  show N                      select history entry N
  download [N]                save the current (or Nth) image
  export                      zip every image in the history
  clear                       delete the history
`

type cli struct {
	client *studio.Client
	state  *studio.State
	saver  *studio.Saver
	out    io.Writer
}

func main() {
	_, _ = infra.LoadDotEnv(".env.local", ".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		exitWithError(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("kirie", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	apiFlag := fs.String("api", envOr("KIRIE_API_URL", "http://localhost:3000"), "base URL of the kirie API")
	dirFlag := fs.String("dir", envOr("KIRIE_HOME", defaultDir()), "directory for history and downloads")
	langFlag := fs.String("lang", os.Getenv("KIRIE_LANG"), "interface language (ja or en)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("a command is required")
	}

	store, err := storage.NewFileStore(*dirFlag)
	if err != nil {
		return err
	}
	state, err := studio.Load(ctx, store)
	if err != nil {
		return err
	}
	if lang := strings.TrimSpace(*langFlag); lang != "" && i18n.Normalize(lang) != state.Language() {
		if err := state.SetLanguage(ctx, lang); err != nil {
			return err
		}
	}

	httpClient := &http.Client{Timeout: 90 * time.Second}
	c := &cli{
		client: studio.NewClient(*apiFlag, state.Language(), httpClient),
		state:  state,
		saver:  studio.NewSaver(store, httpClient),
		out:    out,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "generate":
		return c.generate(ctx, rest)
	case "convert":
		return c.convert(ctx, rest)
	case "styles":
		return c.styles(ctx)
	case "history":
		return c.history()
	case "show":
		return c.show(ctx, rest)
	case "download":
		return c.download(ctx, rest)
	case "export":
		return c.export(ctx)
	case "clear":
		return c.clear(ctx)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	style := fs.String("style", "traditional", "style id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return errors.New(c.state.T(i18n.PromptRequired))
	}
	gen, err := c.client.Generate(ctx, prompt, *style)
	if err != nil {
		return err
	}
	return c.record(ctx, gen, prompt)
}

func (c *cli) convert(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	style := fs.String("style", "", "style id (server default when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New(c.state.T(i18n.ImageRequired))
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	gen, err := c.client.Convert(ctx, uri, *style)
	if err != nil {
		return err
	}
	return c.record(ctx, gen, filepath.Base(fs.Arg(0)))
}

func (c *cli) record(ctx context.Context, gen *studio.Generation, prompt string) error {
	if err := c.state.Record(ctx, studio.HistoryEntry{
		ImageURL:  gen.ImageURL,
		Prompt:    prompt,
		Style:     gen.Style,
		StyleName: gen.StyleName,
		Model:     gen.Model,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return err
	}
	fmt.Fprintln(c.out, c.state.T(i18n.Generated, gen.StyleName, gen.Model))
	fmt.Fprintln(c.out, preview(gen.ImageURL))
	return nil
}

func (c *cli) styles(ctx context.Context) error {
	health, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	for _, s := range health.Styles {
		fmt.Fprintf(c.out, "%-16s %-20s %s\n", s.ID, s.Name, s.AI)
	}
	return nil
}

func (c *cli) history() error {
	entries := c.state.History()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, c.state.T(i18n.HistoryEmpty))
		return nil
	}
	cur, _ := c.state.Current()
	for i, e := range entries {
		marker := " "
		if e == cur {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s%3d  %s  %-14s %s\n", marker, i, e.Timestamp.Local().Format("2006-01-02 15:04"), e.Style, e.Prompt)
	}
	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	idx, err := index(args)
	if err != nil {
		return err
	}
	e, err := c.state.Show(ctx, idx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n%s\n", e.Prompt, e.Model, preview(e.ImageURL))
	return nil
}

func (c *cli) download(ctx context.Context, args []string) error {
	var entry studio.HistoryEntry
	if len(args) > 0 {
		idx, err := index(args)
		if err != nil {
			return err
		}
		if entry, err = c.state.Show(ctx, idx); err != nil {
			return err
		}
	} else {
		var ok bool
		if entry, ok = c.state.Current(); !ok {
			return errors.New(c.state.T(i18n.NothingToDownload))
		}
	}
	path, err := c.saver.Download(ctx, entry.ImageURL)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, c.state.T(i18n.Saved, path))
	return nil
}

func (c *cli) export(ctx context.Context) error {
	path, n, err := c.saver.Export(ctx, c.state.History())
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New(c.state.T(i18n.NothingToDownload))
	}
	fmt.Fprintln(c.out, c.state.T(i18n.Exported, n, path))
	return nil
}

func (c *cli) clear(ctx context.Context) error {
	if err := c.state.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, c.state.T(i18n.HistoryCleared))
	return nil
}

func index(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("an index is required")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", args[0])
	}
	return n, nil
}

// preview keeps data URIs from flooding the terminal.
func preview(ref string) string {
	if strings.HasPrefix(ref, "data:") && len(ref) > 80 {
		return ref[:60] + "... (" + strconv.Itoa(len(ref)) + " bytes)"
	}
	return ref
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kirie"
	}
	return filepath.Join(home, ".kirie")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
