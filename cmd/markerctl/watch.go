package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/OCAP2/markerset/internal/autosave"
	"github.com/OCAP2/markerset/internal/config"
)

var errAutosaveDisabled = errors.New("autosave is disabled in the config")

func (a *app) watchCmd() *cobra.Command {
	var (
		name string
		poll time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Keep a stored document in sync with a file until interrupted",
		Long: `Loads FILE into the stored document every time it changes on disk. The
document is written back by the autosave loop at autosave.interval and once
more on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			autosaveCfg := config.GetAutosaveConfig()
			if !autosaveCfg.Enabled {
				return errAutosaveDisabled
			}
			if poll <= 0 {
				return fmt.Errorf("--poll must be positive, got %s", poll)
			}
			name = a.documentName(name)

			backend, err := a.openStorage()
			if err != nil {
				return err
			}
			defer backend.Close()

			doc := a.newDocument()
			if err := a.loadStored(cmd.Context(), backend, name, doc); err != nil {
				return err
			}

			saver, err := autosave.New(backend, a.logger, autosaveCfg.Interval)
			if err != nil {
				return err
			}
			if err := saver.Track(name, doc); err != nil {
				return err
			}
			saver.Start()
			a.logger.Info("Watching document file", "file", args[0], "document", name)

			var lastMod time.Time
			reload := func() {
				info, err := os.Stat(args[0])
				if err != nil {
					a.logger.Error("Failed to stat watched file", "file", args[0], "error", err)
					return
				}
				if !info.ModTime().After(lastMod) {
					return
				}
				lastMod = info.ModTime()

				tree, err := readDocument(cmd.InOrStdin(), args[0])
				if err != nil {
					a.logger.Error("Failed to read watched file", "file", args[0], "error", err)
					return
				}
				report := doc.Load(a.resolver(), tree.Root(), true)
				printReport(cmd.ErrOrStderr(), args[0], report)
				doc.MarkDirty()
				fmt.Fprintf(cmd.OutOrStdout(), "reloaded %s (%d sets)\n", args[0], len(doc.Sets()))
			}

			reload()
			ticker := time.NewTicker(poll)
			defer ticker.Stop()
			for {
				select {
				case <-cmd.Context().Done():
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					return saver.Stop(ctx)
				case <-ticker.C:
					reload()
				}
			}
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Document name (default from config)")
	cmd.Flags().DurationVar(&poll, "poll", 2*time.Second, "How often to check the file for changes")
	return cmd
}
