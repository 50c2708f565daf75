package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OCAP2/markerset/internal/autosave"
	"github.com/OCAP2/markerset/internal/config"
	"github.com/OCAP2/markerset/internal/geo"
	"github.com/OCAP2/markerset/internal/markerset"
	"github.com/OCAP2/markerset/internal/storage"
	"github.com/OCAP2/markerset/pkg/core"
	"github.com/OCAP2/markerset/pkg/marker"
)

// documentName picks the document a command works on and records it for the
// log context.
func (a *app) documentName(name string) string {
	if name == "" {
		name = config.GetString("document")
	}
	a.document = name
	return name
}

// persist writes doc through an autosave.Saver so CLI writes are counted and
// logged like periodic saves. Stop flushes the document once.
func (a *app) persist(ctx context.Context, backend storage.Backend, name string, doc *markerset.Document) error {
	interval := config.GetAutosaveConfig().Interval
	if interval <= 0 {
		interval = time.Minute
	}
	saver, err := autosave.New(backend, a.logger, interval)
	if err != nil {
		return err
	}
	if err := saver.Track(name, doc); err != nil {
		return err
	}
	return saver.Stop(ctx)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the documents in the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.openStorage()
			if err != nil {
				return err
			}
			defer backend.Close()

			names, err := backend.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		output string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "export [NAME]",
		Short: "Write a stored document to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			name = a.documentName(name)

			backend, err := a.openStorage()
			if err != nil {
				return err
			}
			defer backend.Close()

			tree, err := backend.Load(cmd.Context(), name)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), output, tree, asJSON)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of YAML")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		name   string
		strict bool
		merge  bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Validate a document file and store it",
		Long: `Reads FILE, drops entries that cannot be loaded (or fails with --strict) and
stores the normalized document. With --merge the file is loaded on top of the
stored document instead of replacing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name = a.documentName(name)
			tree, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			backend, err := a.openStorage()
			if err != nil {
				return err
			}
			defer backend.Close()

			doc := a.newDocument()
			if merge {
				if err := a.loadStored(cmd.Context(), backend, name, doc); err != nil {
					return err
				}
			}

			report := doc.Load(a.resolver(), tree.Root(), !merge)
			if !printReport(cmd.ErrOrStderr(), args[0], report) && strict {
				return errInvalidDocument
			}
			doc.MarkDirty()

			if err := a.persist(cmd.Context(), backend, name, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s as '%s' (%d sets)\n", args[0], name, len(doc.Sets()))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Document name (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of dropping invalid entries")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge into the stored document")
	return cmd
}

// loadStored loads the named document into doc. A missing document leaves
// doc empty.
func (a *app) loadStored(ctx context.Context, backend storage.Backend, name string, doc *markerset.Document) error {
	tree, err := backend.Load(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	doc.Load(a.resolver(), tree.Root(), true)
	return nil
}

func (a *app) addCmd() *cobra.Command {
	var (
		name  string
		setID string
		mapID string
		at    string
		label string
		id    string
		html  string
		icon  string
	)
	cmd := &cobra.Command{
		Use:   "add poi|html",
		Short: "Add a point marker to a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name = a.documentName(name)
			pos, err := geo.Position3DFromString(at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			if id == "" {
				id = markerset.NewID()
			}

			backend, err := a.openStorage()
			if err != nil {
				return err
			}
			defer backend.Close()

			doc := a.newDocument()
			if err := a.loadStored(cmd.Context(), backend, name, doc); err != nil {
				return err
			}

			set, ok := doc.Set(setID)
			if !ok {
				if set, err = doc.CreateSet(setID, core.MapRef{ID: mapID}); err != nil {
					return err
				}
			}
			mapRef := set.Map()
			if mapID != "" {
				mapRef = core.MapRef{ID: mapID}
			}

			var m marker.Marker
			switch args[0] {
			case marker.TypePOI:
				poi := marker.NewPOI(id, mapRef, pos)
				if icon != "" {
					if err := poi.SetIcon(icon, core.DefaultAnchor); err != nil {
						return err
					}
				}
				m = poi
			case marker.TypeHTML:
				m = marker.NewHTML(id, mapRef, pos, html)
			default:
				return fmt.Errorf("%w: '%s'", markerset.ErrUnknownType, args[0])
			}
			if label != "" {
				m.SetLabel(label)
			}
			if err := set.Add(m); err != nil {
				return err
			}

			if err := a.persist(cmd.Context(), backend, name, doc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Document name (default from config)")
	cmd.Flags().StringVar(&setID, "set", "default", "Marker set id")
	cmd.Flags().StringVar(&mapID, "map", "", "Map id for the marker (default: the set's map)")
	cmd.Flags().StringVar(&at, "at", "0,0,0", "Position as x,y,z")
	cmd.Flags().StringVar(&label, "label", "", "Label (default: the id)")
	cmd.Flags().StringVar(&id, "id", "", "Marker id (default: random uuid)")
	cmd.Flags().StringVar(&html, "html", "", "HTML content for html markers")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon for poi markers")
	return cmd
}
