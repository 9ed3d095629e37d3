// Command folio drives a Folio OCR workbench session from the terminal:
// upload documents to the recognition backend, run single-page or batch
// OCR, search recognized text, and export the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	folio "github.com/vorojar/Folio-OCR"
	"github.com/vorojar/Folio-OCR/backend"
	"github.com/vorojar/Folio-OCR/export"
	"github.com/vorojar/Folio-OCR/session"
)

const usage = `Usage: folio [flags] <command> [args]

Commands:
  status                 check backend and model readiness
  upload <file>...       upload files and recognize the first page
  ocr <file> <page>      upload one file and print a page's recognized text
  batch <file>...        upload files and recognize every page
  search <file> <query>  upload, batch-recognize, and search
  export <file> <out>    upload, batch-recognize, and export (.md or .xlsx)

Flags:
`

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	backendURL := flag.String("backend", "", "recognition backend base URL (overrides config)")
	verbose := flag.Bool("v", false, "debug logging")
	reflowOut := flag.Bool("reflow", false, "reflow paragraphs on export")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := folio.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = folio.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}
	if v := os.Getenv("FOLIO_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("FOLIO_MIRROR_PATH"); v != "" {
		cfg.MirrorPath = v
	}
	if *backendURL != "" {
		cfg.BackendURL = *backendURL
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args, *reflowOut); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg folio.Config, args []string, reflowOut bool) error {
	client := backend.New(backend.Config{BaseURL: cfg.BackendURL})

	cmd, rest := args[0], args[1:]
	if cmd == "status" {
		st, err := client.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("backend: %s\nmodel loaded: %v\nlayout loaded: %v\n",
			cfg.BackendURL, st.ModelLoaded, st.LayoutLoaded)
		return nil
	}

	ctl, err := folio.New(cfg, client, workbenchEvents())
	if err != nil {
		return err
	}
	defer ctl.Close()

	// Cancel a running batch on interrupt before the deferred Close.
	go func() {
		<-ctx.Done()
		ctl.CancelBatch()
	}()

	switch cmd {
	case "upload":
		if len(rest) == 0 {
			return fmt.Errorf("upload: at least one file required")
		}
		return upload(ctx, ctl, client, rest)

	case "ocr":
		if len(rest) != 2 {
			return fmt.Errorf("ocr: file and page number required")
		}
		num, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("ocr: bad page number %q", rest[1])
		}
		if err := upload(ctx, ctl, client, rest[:1]); err != nil {
			return err
		}
		if err := ctl.SelectPage(ctx, num); err != nil {
			return err
		}
		// Cache-hit short-circuit makes this a no-op when auto
		// recognition already ran.
		if err := ctl.RequestPage(ctx, num); err != nil {
			return err
		}
		text, err := ctl.ActiveText(ctx)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil

	case "batch":
		if len(rest) == 0 {
			return fmt.Errorf("batch: at least one file required")
		}
		if err := upload(ctx, ctl, client, rest); err != nil {
			return err
		}
		return ctl.RequestBatch(ctx)

	case "search":
		if len(rest) < 2 {
			return fmt.Errorf("search: file and query required")
		}
		query := strings.Join(rest[1:], " ")
		if err := upload(ctx, ctl, client, rest[:1]); err != nil {
			return err
		}
		if err := ctl.RequestBatch(ctx); err != nil {
			return err
		}
		up := ctl.Search(ctx, query)
		fmt.Printf("%d hit(s) on %d page(s)\n", up.Total, len(up.Matches))
		for _, m := range up.Matches {
			fmt.Printf("  page %d: %d\n", m.PageNum, m.Count)
		}
		return nil

	case "export":
		if len(rest) != 2 {
			return fmt.Errorf("export: file and output path required")
		}
		if err := upload(ctx, ctl, client, rest[:1]); err != nil {
			return err
		}
		if err := ctl.RequestBatch(ctx); err != nil {
			return err
		}
		var opts []export.Option
		if reflowOut {
			opts = append(opts, export.WithReflow())
		}
		out := rest[1]
		if strings.HasSuffix(out, ".xlsx") {
			return ctl.ExportWorkbook(ctx, out, opts...)
		}
		data, err := ctl.ExportMarkdown(ctx, opts...)
		if err != nil {
			return err
		}
		return os.WriteFile(out, data, 0o644)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// upload preflights the files, streams them to the backend, and feeds
// the discovery stream into the controller.
func upload(ctx context.Context, ctl *folio.Controller, client *backend.Client, paths []string) error {
	var files []backend.UploadFile
	var closers []*os.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()

	for _, path := range paths {
		if err := preflight(path); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		closers = append(closers, f)
		files = append(files, backend.UploadFile{Name: path, Content: f})
	}

	stream, err := client.Upload(ctx, files)
	if err != nil {
		return err
	}
	defer stream.Close()
	return ctl.Open(ctx, stream)
}

// workbenchEvents prints progress to stdout the way the web workbench
// surfaces it.
func workbenchEvents() folio.Events {
	return folio.Events{
		OnDocumentInitialized: func(docID, filename string) {
			fmt.Printf("document %s (%s)\n", filename, docID)
		},
		OnPageAdded: func(pageNum int) {
			fmt.Printf("  page %d discovered\n", pageNum)
		},
		OnPageStatusChanged: func(pageNum int, status session.Status) {
			if status == session.StatusRunning {
				return
			}
			fmt.Printf("  page %d: %s\n", pageNum, status)
		},
		OnBatchProgress: func(p folio.BatchProgress) {
			fmt.Printf("  batch %d/%d (%.0f%%), ~%s left\n",
				p.Completed, p.Total, p.Ratio*100, p.ETA.Round(time.Second))
		},
		OnModelLoading: func(elapsed time.Duration) {
			fmt.Printf("  loading model... %s\n", elapsed.Round(time.Second))
		},
		OnSaveFailed: func(pageNum int, err error) {
			fmt.Printf("  save failed for page %d: %v (edits kept in memory)\n", pageNum, err)
		},
	}
}
