package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/inventory"
)

func (a *app) loginCmd() *cobra.Command {
	var takeOver, reset bool
	cmd := &cobra.Command{
		Use:   "login <operator>",
		Short: "Start or resume the session as an operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode := inventory.LoginDefault
			switch {
			case reset:
				mode = inventory.LoginReset
			case takeOver:
				mode = inventory.LoginContinue
			}

			_, err := a.svc.Login(ctx, args[0], mode)
			if !errors.Is(err, inventory.ErrOperatorMismatch) {
				return err
			}
			a.printf("Hay un inventario en curso: %v\n", err)
			switch {
			case a.confirm("¿Continuar el inventario existente con este usuario?"):
				mode = inventory.LoginContinue
			case a.confirm("¿Iniciar un inventario nuevo? Se borrarán todos los datos"):
				mode = inventory.LoginReset
			default:
				return err
			}
			_, err = a.svc.Login(ctx, args[0], mode)
			return err
		},
	}
	cmd.Flags().BoolVar(&takeOver, "continue", false, "take over another operator's session")
	cmd.Flags().BoolVar(&reset, "reset", false, "discard another operator's session")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the operator's session, keeping the data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.svc.Logout(cmd.Context())
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the session and every photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.confirm("¿Iniciar un inventario nuevo? Se borrarán todos los datos y fotos") {
				return nil
			}
			return a.svc.ResetSession(cmd.Context())
		},
	}
}

func (a *app) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme light|dark",
		Short:     "Set the display theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"light", "dark"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.SetTheme(cmd.Context(), args[0])
		},
	}
}

func (a *app) autosaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autosave [interval]",
		Short: "Show or change the autosave interval",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				a.printf("%s (activo: %v)\n", a.autosaveInterval(ctx), a.svc.AutosaveRunning())
				return nil
			}
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid interval %q: %w", args[0], err)
			}
			return a.setAutosaveInterval(ctx, d)
		},
	}
}

func (a *app) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Back up and restore the whole session",
	}

	var final bool
	var outDir string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the session and all photos to a zip archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if final && !a.confirm("Un respaldo finalizado se abre en modo de solo lectura. ¿Continuar?") {
				return nil
			}
			var buf bytes.Buffer
			name, err := a.svc.ExportSession(cmd.Context(), &buf, final)
			if err != nil {
				return err
			}
			return a.writeOutput(outDir, name, &buf)
		},
	}
	export.Flags().BoolVar(&final, "final", false, "mark the archive read-only")
	export.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")

	restore := &cobra.Command{
		Use:   "import <file.zip>",
		Short: "Replace the session with a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.confirm("Se reemplazará la sesión actual. ¿Continuar?") {
				return nil
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			res, err := a.svc.ImportSession(cmd.Context(), f, info.Size(), filepath.Base(args[0]))
			if err != nil {
				return err
			}
			a.printf("%d fotos y %d imágenes de croquis restauradas.\n", res.Photos, res.LayoutImages)
			return nil
		},
	}

	cmd.AddCommand(export, restore)
	return cmd
}
