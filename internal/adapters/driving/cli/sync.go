package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/adlumen/amzads/internal/adapters/driven/config"
	"github.com/adlumen/amzads/internal/connectors/amazonads"
	"github.com/adlumen/amzads/internal/core/domain"
	"github.com/adlumen/amzads/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Extract streams from the Amazon Ads API",
	Long: `Extract campaign structure and performance reports as newline-delimited
JSON on stdout. Streams run sequentially in dependency order so that
child streams can scope their requests to the entities their parents
returned.

Examples:
  # Sync everything
  amzads sync

  # Sync selected streams only
  amzads sync --stream campaigns --stream ad_groups`,
	RunE: runSyncCmd,
}

// Flags for sync.
var selectedStreams []string

func init() {
	syncCmd.Flags().StringArrayVarP(
		&selectedStreams, "stream", "s", nil,
		"stream to extract (can be repeated; defaults to all)")
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	selected, err := resolveSelection(selectedStreams)
	if err != nil {
		return err
	}

	path := configPath
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, streamSettings, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tokens := amazonads.NewTokenStore(cfg)
	connector := amazonads.New(cfg, tokens)
	defer connector.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := connector.Validate(ctx); err != nil {
		return fmt.Errorf("validate connection: %w", err)
	}

	return runStreams(ctx, cmd.OutOrStdout(), connector, selected, streamSettings)
}

// resolveSelection validates --stream values and returns the streams to run
// in catalog order. An empty selection means every stream.
func resolveSelection(names []string) ([]*amazonads.Stream, error) {
	if len(names) == 0 {
		return amazonads.Streams, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := amazonads.StreamByName(name); err != nil {
			return nil, err
		}
		wanted[name] = true
	}

	selected := make([]*amazonads.Stream, 0, len(names))
	for _, stream := range amazonads.Streams {
		if wanted[stream.Name] {
			selected = append(selected, stream)
		}
	}
	return selected, nil
}

// runStreams extracts each selected stream in order, chaining parent
// contexts between dependent streams. A failed stream is logged and skipped
// so the remaining streams still run; the command reports failure if any
// stream failed.
func runStreams(
	ctx context.Context,
	out io.Writer,
	connector *amazonads.Connector,
	selected []*amazonads.Stream,
	settings map[string]config.StreamSettings,
) error {
	// Child contexts collected per stream, consumed by dependent streams.
	contexts := make(map[string][]amazonads.ParentContext)

	var failed []string
	for _, stream := range selected {
		parents := []amazonads.ParentContext{nil}
		if stream.ParentStream != "" {
			collected, ok := contexts[stream.ParentStream]
			switch {
			case ok && len(collected) > 0:
				parents = collected
			case ok:
				logger.Warn("stream %s: parent %s yielded no scoping keys, extracting unscoped", stream.Name, stream.ParentStream)
			default:
				logger.Warn("stream %s: parent %s not synced, extracting unscoped", stream.Name, stream.ParentStream)
			}
		}

		fields := settings[stream.Name].Fields

		count, children, err := runStream(ctx, out, connector, stream, parents, fields)
		if err != nil {
			logger.Warn("stream %s failed: %v", stream.Name, err)
			failed = append(failed, stream.Name)
			continue
		}

		if stream.ChildContext != nil {
			contexts[stream.Name] = children
		}
		logger.Info("stream %s: %d records", stream.Name, count)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d stream(s) failed: %v", len(failed), failed)
	}
	return nil
}

// runStream extracts one stream across all of its parent contexts and
// writes each record to out. It returns the record count and the child
// contexts derived from the records. Records without usable scoping keys,
// e.g. when a field selection dropped them, contribute no context.
func runStream(
	ctx context.Context,
	out io.Writer,
	connector *amazonads.Connector,
	stream *amazonads.Stream,
	parents []amazonads.ParentContext,
	fields []string,
) (int, []amazonads.ParentContext, error) {
	var count int
	var children []amazonads.ParentContext

	for _, parent := range parents {
		records, errs := connector.Sync(ctx, stream, parent, fields)

		for record := range records {
			if err := writeRecord(out, stream.Name, record); err != nil {
				return count, children, err
			}
			if stream.ChildContext != nil {
				if child := stream.ChildContext(record); child != nil {
					children = append(children, child)
				}
			}
			count++
		}

		if err := <-errs; err != nil {
			return count, children, err
		}
	}

	return count, children, nil
}

// writeRecord emits one record as an NDJSON envelope naming its stream.
func writeRecord(out io.Writer, stream string, record domain.Record) error {
	line, err := sjson.SetBytes([]byte(`{}`), "stream", stream)
	if err != nil {
		return fmt.Errorf("encode record envelope: %w", err)
	}
	line, err = sjson.SetRawBytes(line, "record", record.Raw())
	if err != nil {
		return fmt.Errorf("encode record envelope: %w", err)
	}

	if _, err := out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
