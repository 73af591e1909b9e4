package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arnold/blueprint-api/internal/autosave"
	"github.com/arnold/blueprint-api/internal/checkout"
	"github.com/arnold/blueprint-api/internal/export"
	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a saved session or the checkout snapshot",
	Long: `Export the snapshot taken at checkout as PDF, CSV and/or Markdown files.
In development (APP_ENV=development) a saved wizard session can be exported
as a preview.

Exporting the snapshot as PDF consumes it: it can be delivered only once.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("session", "", "Session ID to export")
	exportCmd.Flags().Bool("snapshot", false, "Export the checkout snapshot instead of a session")
	exportCmd.Flags().StringSlice("format", []string{"pdf", "csv", "markdown"}, "Formats to write (pdf, csv, markdown)")
	exportCmd.Flags().String("out", ".", "Output directory")
}

var errPreviewDisabled = errors.New("exporting a session is a development preview; set APP_ENV=development or export the checkout --snapshot")

type exportOptions struct {
	SessionID string
	Preview   bool
	Snapshot  bool
	Formats   []export.Format
	OutDir    string
	Now       time.Time
}

func runExport(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("session")
	snapshot, _ := cmd.Flags().GetBool("snapshot")
	names, _ := cmd.Flags().GetStringSlice("format")
	outDir, _ := cmd.Flags().GetString("out")

	if (id == "") == !snapshot {
		return errors.New("pass exactly one of --session or --snapshot")
	}

	cfg := loadConfig()
	opts := exportOptions{SessionID: id, Preview: cfg.DevPreview, Snapshot: snapshot, OutDir: outDir, Now: time.Now()}
	for _, name := range names {
		f, err := export.ParseFormat(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		opts.Formats = append(opts.Formats, f)
	}

	store, err := openLocalStore(cfg)
	if err != nil {
		return err
	}

	paths, err := exportFiles(cmd.Context(), store, opts)
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("Saved"), p)
	}
	return err
}

// exportFiles writes every requested format. The snapshot is consumed only
// after its PDF was written.
func exportFiles(ctx context.Context, store *storage.SafeStore, opts exportOptions) ([]string, error) {
	var in export.Input
	if opts.Snapshot {
		snap, err := checkout.Load(ctx, store)
		if err != nil {
			return nil, err
		}
		in = export.FromSnapshot(snap, opts.Now)
	} else {
		if !opts.Preview {
			return nil, errPreviewDisabled
		}
		if !autosave.ValidSessionID(opts.SessionID) {
			return nil, fmt.Errorf("invalid session id %q", opts.SessionID)
		}
		session := &autosave.SessionContext{ID: opts.SessionID, Store: store}
		doc, ok := session.Saved(ctx)
		if !ok {
			return nil, fmt.Errorf("no saved progress for session %s", opts.SessionID)
		}
		in = export.FromDocument(doc, opts.Now)
	}

	var paths []string
	pdfWritten := false
	for _, f := range opts.Formats {
		path, err := writeArtifact(f, in, opts.OutDir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
		pdfWritten = pdfWritten || f == export.FormatPDF
	}

	if opts.Snapshot && pdfWritten {
		if _, err := checkout.Consume(ctx, store); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

func writeArtifact(f export.Format, in export.Input, dir string) (string, error) {
	a, err := export.Generate(f, in)
	metrics.Default.RecordExport(string(f), err)
	if err != nil {
		return "", err
	}
	return export.WriteFile(dir, a)
}
