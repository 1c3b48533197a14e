package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/state"
)

func (a *app) custodianCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "custodian",
		Aliases: []string{"user"},
		Short:   "Manage the custodians items are assigned to",
	}

	var in inventory.CustodianInput
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a custodian and make them active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			c, err := a.svc.CreateCustodian(cmd.Context(), in, false)
			if errors.Is(err, inventory.ErrDuplicateCustodian) {
				if !a.confirm(fmt.Sprintf("Ya existe un usuario llamado %q. ¿Crearlo de todos modos?", in.Name)) {
					return nil
				}
				c, err = a.svc.CreateCustodian(cmd.Context(), in, true)
			}
			if err != nil {
				return err
			}
			a.printf("%s\t%s\n", c.ID, c.LocationWithID)
			return nil
		},
	}
	add.Flags().StringVar(&in.Area, "area", "", "area the custodian belongs to")
	add.Flags().StringVar(&in.Location, "location", "", "base location, numbered automatically")

	var edit inventory.CustodianInput
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a custodian; a rename follows their items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.svc.EditCustodian(cmd.Context(), args[0], edit)
			return err
		},
	}
	editCmd.Flags().StringVar(&edit.Name, "name", "", "new name")
	editCmd.Flags().StringVar(&edit.Area, "area", "", "new area")
	editCmd.Flags().StringVar(&edit.Location, "location", "", "new location label")
	_ = editCmd.MarkFlagRequired("name")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a custodian",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.DeleteCustodian(cmd.Context(), args[0])
		},
	}

	undo := &cobra.Command{
		Use:   "undo",
		Short: "Restore the custodian deleted last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.svc.UndoDeleteCustodian(cmd.Context())
			if err != nil {
				return err
			}
			a.printf("%s\t%s\n", c.ID, c.Name)
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Make a custodian active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.svc.ActivateCustodian(cmd.Context(), args[0])
			return err
		},
	}

	none := &cobra.Command{
		Use:   "none",
		Short: "Clear the active custodian",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.svc.DeactivateCustodian(cmd.Context())
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show every custodian",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.svc.View(func(st *state.State) {
				w := a.table()
				defer w.Flush()
				fmt.Fprintln(w, "\tID\tNOMBRE\tÁREA\tUBICACIÓN\tBIENES")
				counts := make(map[string]int)
				for _, it := range st.Inventory {
					counts[it.Custodian]++
				}
				for _, c := range st.Custodians {
					mark := ""
					if c.ID == st.ActiveCustodian {
						mark = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", mark, c.ID, c.Name, c.Area, c.LocationWithID, counts[c.Name])
				}
			})
			return nil
		},
	}

	cmd.AddCommand(add, editCmd, rm, undo, use, none, list)
	return cmd
}

func (a *app) additionalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "additional",
		Short: "Items found on site that no list contains",
	}

	var in inventory.AdditionalInput
	add := &cobra.Command{
		Use:   "add <description>",
		Short: "Register an item under the active custodian",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in.Description = strings.Join(args, " ")
			item, err := a.svc.AddAdditional(ctx, in, false)
			if errors.Is(err, inventory.ErrDuplicateSerial) {
				if !a.confirm("Esa serie/clave ya existe en el inventario. ¿Registrarlo de todos modos?") {
					return nil
				}
				item, err = a.svc.AddAdditional(ctx, in, true)
			}
			if err != nil {
				return err
			}
			a.printf("%s\n", item.ID)
			if item.Personal {
				return a.svc.SetEntryForm(ctx, item.ID, a.confirm("¿Cuenta con formato de entrada?"))
			}
			return nil
		},
	}
	additionalFlags(add, &in)
	add.Flags().BoolVar(&in.Personal, "personal", false, "the item belongs to the custodian")

	var edit inventory.AdditionalInput
	editCmd := &cobra.Command{
		Use:   "edit <id> <description>",
		Short: "Replace the fields of an additional item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit.Description = strings.Join(args[1:], " ")
			_, err := a.svc.EditAdditional(cmd.Context(), args[0], edit)
			return err
		},
	}
	additionalFlags(editCmd, &edit)
	editCmd.Flags().BoolVar(&edit.Personal, "personal", false, "the item belongs to the custodian")

	var photoTo string
	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an additional item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *inventory.PhotoRef
			if photoTo != "" {
				ref, err := parsePhotoRef(photoTo)
				if err != nil {
					return err
				}
				target = &ref
			}
			if !a.confirm("¿Eliminar el bien adicional?") {
				return nil
			}
			return a.svc.DeleteAdditional(cmd.Context(), args[0], target)
		},
	}
	rm.Flags().StringVar(&photoTo, "photo-to", "", "move the photo to kind:id first")

	assign := &cobra.Command{
		Use:   "assign-key <id> <key>",
		Short: "Give an additional item an inventory key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.AssignKey(cmd.Context(), args[0], args[1])
		},
	}

	entry := &cobra.Command{
		Use:   "entry-form <id> yes|no",
		Short: "Record whether a personal item has entry paperwork",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(args[1]) {
			case "yes", "si", "sí":
				return a.svc.SetEntryForm(cmd.Context(), args[0], true)
			case "no":
				return a.svc.SetEntryForm(cmd.Context(), args[0], false)
			}
			return fmt.Errorf("%w: answer yes or no", inventory.ErrInvalidInput)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show every additional item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.svc.View(func(st *state.State) {
				w := a.table()
				defer w.Flush()
				fmt.Fprintln(w, "ID\tDESCRIPCIÓN\tSERIE\tUSUARIO\tCLAVE\tNOTA")
				for i := range st.AdditionalItems {
					it := &st.AdditionalItems[i]
					note := ""
					if it.NeedsRegularization() {
						note = "regularizar"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Description, it.Serial, it.Custodian, it.AssignedKey, note)
				}
			})
			return nil
		},
	}

	cmd.AddCommand(add, editCmd, rm, assign, entry, list)
	return cmd
}

func additionalFlags(cmd *cobra.Command, in *inventory.AdditionalInput) {
	cmd.Flags().StringVar(&in.Serial, "serial", "", "serial number")
	cmd.Flags().StringVar(&in.OriginalKey, "key", "", "key printed on the item")
	cmd.Flags().StringVar(&in.Brand, "brand", "", "brand")
	cmd.Flags().StringVar(&in.Model, "model", "", "model")
	cmd.Flags().StringVar(&in.Area, "area", "", "area")
}

// parsePhotoRef parses "kind:id", e.g. "inventory:300001".
func parsePhotoRef(s string) (inventory.PhotoRef, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return inventory.PhotoRef{}, fmt.Errorf("%w: photo target must be kind:id", inventory.ErrInvalidInput)
	}
	return photoRef(kind, id)
}
