package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/rendercache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the render cache",
	Long: `The render cache keeps raw section renders keyed by pattern fingerprint,
sample bank, tempo and duration, so re-rendering a song only mixes the
sections that changed.`,
}

type cacheList []rendercache.Info

func (l cacheList) Header() []string {
	return []string{"key", "tempo", "duration", "samples", "bank", "created"}
}

func (l cacheList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, e := range l {
		rows[i] = []string{
			e.Key[:min(len(e.Key), 16)],
			strconv.FormatFloat(e.Tempo, 'g', -1, 64),
			cli.FormatDuration(e.DurationMs),
			strconv.Itoa(e.Samples),
			e.BankID,
			e.CreatedAt.Format(time.DateTime),
		}
	}
	return rows
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached section renders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		cache, store, err := openCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		entries, err := cache.List(commandContext(cmd))
		if err != nil {
			return err
		}
		return outputResult(cacheList(entries))
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached render",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		cache, store, err := openCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		n, err := cache.Clear(commandContext(cmd))
		if err != nil {
			return err
		}
		cli.PrintSuccess("Removed %d cached renders", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
