package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/state"
)

func (a *app) rootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:   "inventario",
		Short: "Asset inventory audit sessions",
		Long: `Inventario keeps an on-site asset audit: it loads inventory spreadsheets,
records where each item was found and by whom, and exports the results.

Every command works on the stored session. The shell command keeps the
session open and saves it periodically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context(), flags)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.cfgFile, "config", "", "config file (default is ./inventario.yaml)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&flags.yes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.resetCmd(),
		a.statusCmd(),
		a.themeCmd(),
		a.autosaveCmd(),
		a.ingestCmd(),
		a.listsCmd(),
		a.listDeleteCmd(),
		a.itemActionCmd(inventory.ActionLocate),
		a.itemActionCmd(inventory.ActionRelabel),
		a.itemActionCmd(inventory.ActionUnlocate),
		a.labelsDoneCmd(),
		a.noteCmd(),
		a.searchCmd(),
		a.areaCmd(),
		a.custodianCmd(),
		a.additionalCmd(),
		a.photoCmd(),
		a.exportCmd(),
		a.sessionCmd(),
		a.logCmd(),
		a.shellCmd(),
	)
	return root
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

// writeOutput stores data as dir/name and prints where it went.
func (a *app) writeOutput(dir, name string, data *bytes.Buffer) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	a.printf("%s\n", path)
	return nil
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.svc.View(func(st *state.State) {
				w := a.table()
				defer w.Flush()

				operator := "-"
				if st.CurrentUser != nil {
					operator = fmt.Sprintf("%s (%s)", st.CurrentUser.Name, st.CurrentUser.Number)
				}
				active := "-"
				if c := st.Active(); c != nil {
					active = fmt.Sprintf("%s, %s", c.Name, c.LocationWithID)
				}
				located := 0
				for i := range st.Inventory {
					if st.Inventory[i].Located.Bool() {
						located++
					}
				}
				fmt.Fprintf(w, "Operador:\t%s\n", operator)
				fmt.Fprintf(w, "Sesión activa:\t%v\n", st.LoggedIn)
				fmt.Fprintf(w, "Solo lectura:\t%v\n", st.ReadOnlyMode)
				fmt.Fprintf(w, "Usuario activo:\t%s\n", active)
				fmt.Fprintf(w, "Listados:\t%d\n", len(st.Lists()))
				fmt.Fprintf(w, "Bienes:\t%d ubicados de %d\n", located, len(st.Inventory))
				fmt.Fprintf(w, "Por etiquetar:\t%d\n", len(st.LabelQueue()))
				fmt.Fprintf(w, "Bienes adicionales:\t%d\n", len(st.AdditionalItems))
				fmt.Fprintf(w, "Usuarios:\t%d\n", len(st.Custodians))
				fmt.Fprintf(w, "Áreas completadas:\t%d de %d\n", len(st.CompletedAreas), len(st.Areas()))
				if st.LastAutosave != nil {
					fmt.Fprintf(w, "Último guardado:\t%s\n", st.LastAutosave.Format(time.DateTime))
				}
			})
			return nil
		},
	}
}

func (a *app) logCmd() *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.svc.View(func(st *state.State) {
				entries := st.ActivityLog
				if last > 0 && len(entries) > last {
					entries = entries[len(entries)-last:]
				}
				for _, e := range entries {
					a.printf("%s\n", e)
				}
			})
			return nil
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 20, "number of entries (0 for all)")
	return cmd
}
