package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsync/internal/domain"
	chiTransport "github.com/kailas-cloud/docsync/internal/transport/chi"
	syncuc "github.com/kailas-cloud/docsync/internal/usecase/sync"
)

// maxBackfillLine bounds one JSON line of backfill input.
const maxBackfillLine = 10 << 20

// errEventFailed makes the process exit non-zero when an event outcome is failed.
var errEventFailed = errors.New("synchronization failed")

func newSyncCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run lifecycle events against the remote index without the HTTP server",
	}
	cmd.AddCommand(newSyncEventCmd(opts, syncuc.OpInsert, "Index a new entity and record its documents"))
	cmd.AddCommand(newSyncEventCmd(opts, syncuc.OpUpdate, "Re-index an entity and replace its mappings"))
	cmd.AddCommand(newSyncEventCmd(opts, syncuc.OpDelete, "Remove an entity from the index and drop its mappings"))
	cmd.AddCommand(newBackfillCmd(opts))
	return cmd
}

func newSyncEventCmd(opts *globalOpts, op syncuc.Op, short string) *cobra.Command {
	var (
		id   int64
		body string
	)

	cmd := &cobra.Command{
		Use:   string(op),
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			e := domain.Entity{ID: id, Body: body}
			var rep syncuc.Report
			switch op {
			case syncuc.OpInsert:
				rep = a.sync.Insert(cmd.Context(), e)
			case syncuc.OpUpdate:
				rep = a.sync.Update(cmd.Context(), e)
			default:
				rep = a.sync.Delete(cmd.Context(), e)
			}

			if err := writeReports(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if rep.Outcome == syncuc.OutcomeFailed {
				return errEventFailed
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Entity ID")
	cmd.Flags().StringVar(&body, "body", "", "Entity body (ignored for delete)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// backfillLine is one entity of JSONL backfill input.
type backfillLine struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

func newBackfillCmd(opts *globalOpts) *cobra.Command {
	var (
		file        string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Synchronize existing entities read as JSON lines ({\"id\":1,\"body\":\"...\"})",
		Long: `Backfill reads one JSON object per line from --file (or stdin when the
flag is omitted or "-"). Entities that already have mappings are updated,
the rest are inserted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file) //nolint:gosec // operator supplied path
				if err != nil {
					return fmt.Errorf("open backfill input: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			entities, err := readEntities(in)
			if err != nil {
				return err
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = cfg.Sync.BackfillConcurrency
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			reports := a.sync.Backfill(cmd.Context(), entities, concurrency)
			return writeReports(cmd.OutOrStdout(), reports...)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSONL input file (default stdin)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel events (default sync.backfill_concurrency)")
	return cmd
}

func readEntities(r io.Reader) ([]domain.Entity, error) {
	var entities []domain.Entity

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxBackfillLine)
	for n := 1; sc.Scan(); n++ {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var l backfillLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		entities = append(entities, domain.Entity{ID: l.ID, Body: l.Body})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read backfill input: %w", err)
	}
	return entities, nil
}

// writeReports prints one JSON report per line.
func writeReports(w io.Writer, reports ...syncuc.Report) error {
	enc := json.NewEncoder(w)
	for _, r := range reports {
		if err := enc.Encode(chiTransport.NewReportResponse(r)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}
