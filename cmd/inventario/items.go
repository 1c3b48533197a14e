package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/state"
)

func (a *app) ingestCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "ingest <file.xlsx>...",
		Short: "Load inventory spreadsheets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				if err := a.ingestFile(cmd, path, replace); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace files already loaded without asking")
	return cmd
}

func (a *app) ingestFile(cmd *cobra.Command, path string, replace bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	name := filepath.Base(path)

	res, err := a.svc.Ingest(cmd.Context(), name, f, replace)
	if errors.Is(err, inventory.ErrDuplicateFile) {
		if !a.confirm(fmt.Sprintf("El archivo %q ya fue cargado. ¿Reemplazarlo?", name)) {
			return nil
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		res, err = a.svc.Ingest(cmd.Context(), name, f, true)
	}
	if err != nil {
		return err
	}
	a.printf("%s: %d bienes, área %s, tipo %s", name, res.Items, res.Area, res.BookType)
	if res.Dropped > 0 {
		a.printf(", %d filas descartadas", res.Dropped)
	}
	if res.Replaced > 0 {
		a.printf(", %d bienes reemplazados", res.Replaced)
	}
	a.printf("\n")
	return nil
}

func (a *app) listsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show the loaded lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := a.table()
			defer w.Flush()
			fmt.Fprintln(w, "ID\tARCHIVO\tÁREA\tTIPO\tBIENES\tUBICADOS")
			for _, l := range a.svc.Lists() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n", l.ID, l.FileName, l.Area, l.BookType, l.Items, l.Located)
			}
			return nil
		},
	}
}

func (a *app) listDeleteCmd() *cobra.Command {
	var keep, deleteAll bool
	var moveTo string
	cmd := &cobra.Command{
		Use:   "list-delete <id>",
		Short: "Remove a loaded list and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid list id %q", args[0])
			}
			im, err := a.svc.Impact(id)
			if err != nil {
				return err
			}
			if !a.confirm(fmt.Sprintf("¿Eliminar el listado %q con %d bienes?", im.List.FileName, im.List.Items)) {
				return nil
			}

			var policy inventory.OrphanPolicy
			switch {
			case keep:
				policy.Action = inventory.OrphanKeep
			case moveTo != "":
				policy = inventory.OrphanPolicy{Action: inventory.OrphanReassign, Area: moveTo}
			case deleteAll:
				policy.Action = inventory.OrphanDeleteAll
			case len(im.Custodians) > 0:
				a.printf("El área %s se quedará sin bienes. Usuarios afectados:\n", im.List.Area)
				for _, c := range im.Custodians {
					a.printf("  %s (%s)\n", c.Name, c.LocationWithID)
				}
				a.printf("Bienes adicionales afectados: %d\n", im.Additional)
				if !a.confirm("¿Mantener el área y sus usuarios?") {
					return fmt.Errorf("%w: use --move-to <area> or --delete-all", inventory.ErrOrphanedArea)
				}
				policy.Action = inventory.OrphanKeep
			}

			_, err = a.svc.DeleteList(cmd.Context(), id, policy)
			return err
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the area and its custodians")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "move the custodians to another area")
	cmd.Flags().BoolVar(&deleteAll, "delete-all", false, "delete the custodians and their additional items")
	cmd.MarkFlagsMutuallyExclusive("keep", "move-to", "delete-all")
	return cmd
}

var actionUse = map[inventory.Action]struct{ use, short string }{
	inventory.ActionLocate:   {"locate", "Mark items as found with the active custodian"},
	inventory.ActionRelabel:  {"relabel", "Mark items as found and needing a new label"},
	inventory.ActionUnlocate: {"unlocate", "Return items to pending"},
}

func (a *app) itemActionCmd(action inventory.Action) *cobra.Command {
	return &cobra.Command{
		Use:   actionUse[action].use + " <key>...",
		Short: actionUse[action].short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, keys []string) error {
			ctx := cmd.Context()
			var res *inventory.BatchResult
			var err error
			switch action {
			case inventory.ActionLocate:
				res, err = a.svc.Locate(ctx, keys...)
			case inventory.ActionRelabel:
				res, err = a.svc.Relabel(ctx, keys...)
			default:
				if !a.confirm(fmt.Sprintf("¿Regresar %d bien(es) a pendiente? Se borrará su usuario asignado.", len(keys))) {
					return nil
				}
				res, err = a.svc.Unlocate(ctx, keys...)
			}
			if err != nil {
				return err
			}
			if len(res.Missing) > 0 {
				a.printf("Claves no encontradas: %s\n", strings.Join(res.Missing, ", "))
			}
			if len(res.Pending) == 0 {
				a.finished(res)
				return nil
			}

			accepted := a.acceptReassignments(res.Pending)
			if len(accepted) == 0 {
				return nil
			}
			res, err = a.svc.Reassign(ctx, action, accepted...)
			if err != nil {
				return err
			}
			a.finished(res)
			return nil
		},
	}
}

// acceptReassignments asks about each reassignment in turn and returns the
// keys the operator accepted.
func (a *app) acceptReassignments(pending []model.Reassignment) []string {
	var accepted []string
	for _, p := range pending {
		q := fmt.Sprintf("El bien %s (%s) ya está asignado a %s. ¿Reasignarlo a %s?",
			model.DisplayKey(p.Key), p.Description, p.From, p.To)
		if a.confirm(q) {
			accepted = append(accepted, p.Key)
		}
	}
	return accepted
}

// finished points at the closing report once every item is located.
func (a *app) finished(res *inventory.BatchResult) {
	if res.InventoryFinished {
		a.printf("Todos los bienes están ubicados. Genere el reporte final con: export inventory\n")
	}
}

func (a *app) labelsDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels-done <key>...",
		Short: "Clear the relabel flag of printed labels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, keys []string) error {
			_, err := a.svc.MarkLabelPrinted(cmd.Context(), keys...)
			return err
		},
	}
}

func (a *app) noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <key> [text...]",
		Short: "Set or clear the note of an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.SaveNotes(cmd.Context(), map[string]string{args[0]: strings.Join(args[1:], " ")})
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	var f state.Filter
	var status string
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Find inventory items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.Term = args[0]
			}
			switch status {
			case "", "all":
			case "located":
				f.Status = state.StatusLocated
			case "pending":
				f.Status = state.StatusPending
			default:
				return fmt.Errorf("%w: status must be all, located or pending", inventory.ErrInvalidInput)
			}

			page := a.svc.Search(f)
			w := a.table()
			fmt.Fprintln(w, "CLAVE\tDESCRIPCIÓN\tÁREA\tUSUARIO\tUBICADO\tETIQUETA")
			for _, it := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					model.DisplayKey(it.Key), it.Description, it.Area, it.Custodian, it.Located, it.Relabel)
			}
			w.Flush()
			a.printf("Página %d de %d (%d bienes)\n", page.Page, page.Pages, page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "all, located or pending")
	cmd.Flags().StringVar(&f.Area, "area", "", "only items of this area")
	cmd.Flags().StringVar(&f.BookType, "type", "", "only items of this book type")
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.PageSize, "page-size", 0, "items per page (default from config)")
	return cmd
}

func (a *app) areaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Areas and their hand-over",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show every area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.svc.View(func(st *state.State) {
				w := a.table()
				defer w.Flush()
				fmt.Fprintln(w, "ÁREA\tNOMBRE\tRESPONSABLE\tCOMPLETA\tCERRADA")
				for _, area := range st.Areas() {
					_, closed := st.ClosedAreas[area]
					fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\n", area, st.AreaName(area),
						st.AreaDirectory[area].Name, st.CompletedAreas[area], closed)
				}
			})
			return nil
		},
	}

	var responsible, location string
	closeArea := &cobra.Command{
		Use:   "close <area>",
		Short: "Record the hand-over of an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.CloseArea(cmd.Context(), args[0], responsible, location)
		},
	}
	closeArea.Flags().StringVar(&responsible, "responsible", "", "who receives the area")
	closeArea.Flags().StringVar(&location, "location", "", "where the hand-over took place")

	var entry model.DirectoryEntry
	directory := &cobra.Command{
		Use:   "directory <area>",
		Short: "Set who is responsible for an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(entry.Name) == "" {
				return fmt.Errorf("%w: --name is required", inventory.ErrInvalidInput)
			}
			return a.svc.SetAreaDirectory(cmd.Context(), args[0], entry)
		},
	}
	directory.Flags().StringVar(&entry.Name, "name", "", "responsible person")
	directory.Flags().StringVar(&entry.Title, "title", "", "their position")
	directory.Flags().StringVar(&entry.FullName, "full-name", "", "full area name")

	cmd.AddCommand(list, closeArea, directory)
	return cmd
}
