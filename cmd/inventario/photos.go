package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/report"
)

func (a *app) photoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Photos of items, additional items and locations",
		Long: `Photos belong to an entity of one kind:

  inventory   an inventory item, by key
  additional  an additional item, by id
  location    a custodian location, by label (e.g. "OFICINA 01")`,
	}

	attach := &cobra.Command{
		Use:   "attach <kind> <id> <file>",
		Short: "Attach a photo, replacing any previous one",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := photoRef(args[0], args[1])
			if err != nil {
				return err
			}
			f, err := os.Open(args[2])
			if err != nil {
				return err
			}
			defer f.Close()
			return a.svc.AttachPhoto(cmd.Context(), ref, f)
		},
	}

	rm := &cobra.Command{
		Use:   "rm <kind> <id>",
		Short: "Delete a photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := photoRef(args[0], args[1])
			if err != nil {
				return err
			}
			return a.svc.DeletePhoto(cmd.Context(), ref)
		},
	}

	var outDir string
	get := &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Save a stored photo to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := photoRef(args[0], args[1])
			if err != nil {
				return err
			}
			b, err := a.svc.Photo(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if b == nil {
				return fmt.Errorf("photo %s: %w", ref.Key(), inventory.ErrNotFound)
			}
			return a.writeOutput(outDir, ref.Key()+photoExt(b.ContentType), bytes.NewBuffer(b.Data))
		},
	}
	get.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")

	importCmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Attach photos named after inventory keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]inventory.PhotoFile, 0, len(args))
			for _, path := range args {
				files = append(files, inventory.PhotoFile{
					Name: filepath.Base(path),
					Open: func() (io.ReadCloser, error) { return os.Open(path) },
				})
			}
			res, err := a.svc.ImportPhotos(cmd.Context(), files)
			if err != nil {
				return err
			}
			a.printf("%d importadas, %d ignoradas\n", res.Imported, res.Failed)
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore <file.zip>",
		Short: "Restore the photos of a session archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			res, err := a.svc.RestorePhotos(cmd.Context(), f, info.Size())
			if err != nil {
				return err
			}
			a.printf("%d restauradas, %d ignoradas\n", res.Imported, res.Failed)
			return nil
		},
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "List photo flags without a stored photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			drift, err := a.svc.VerifyPhotos(cmd.Context())
			if err != nil {
				return err
			}
			if len(drift) == 0 {
				a.printf("Todas las fotos están almacenadas.\n")
				return nil
			}
			for _, ref := range drift {
				a.printf("%s\t%s\n", ref.Kind, ref.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(attach, rm, get, importCmd, restore, verify)
	return cmd
}

func photoRef(kind, id string) (inventory.PhotoRef, error) {
	k, err := model.ParsePhotoKind(kind)
	if err != nil {
		return inventory.PhotoRef{}, fmt.Errorf("%w: %v", inventory.ErrInvalidInput, err)
	}
	return inventory.PhotoRef{Kind: k, ID: id}, nil
}

func photoExt(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write spreadsheets",
	}

	var area, invDir string
	inv := &cobra.Command{
		Use:   "inventory",
		Short: "Export the inventory and additional items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var buf bytes.Buffer
			name, err := a.svc.ExportInventory(cmd.Context(), &buf, area)
			if errors.Is(err, report.ErrNoData) {
				return nil
			}
			if err != nil {
				return err
			}
			return a.writeOutput(invDir, name, &buf)
		},
	}
	inv.Flags().StringVar(&area, "area", "", "only this area")
	inv.Flags().StringVarP(&invDir, "output", "o", ".", "output directory")

	var labelsDir string
	labels := &cobra.Command{
		Use:   "labels",
		Short: "Export the label print queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var buf bytes.Buffer
			name, err := a.svc.ExportLabels(cmd.Context(), &buf)
			if errors.Is(err, report.ErrNoData) {
				return nil
			}
			if err != nil {
				return err
			}
			return a.writeOutput(labelsDir, name, &buf)
		},
	}
	labels.Flags().StringVarP(&labelsDir, "output", "o", ".", "output directory")

	cmd.AddCommand(inv, labels)
	return cmd
}
