package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrlokans/sitedocs/internal/audit"
	"github.com/mrlokans/sitedocs/internal/auth"
	"github.com/mrlokans/sitedocs/internal/docs"
	"github.com/mrlokans/sitedocs/internal/entities"
	"github.com/mrlokans/sitedocs/internal/entrypoint"
	"github.com/mrlokans/sitedocs/internal/medialib"
)

// showOutput is printed by the show command.
type showOutput struct {
	VideoURL       string `json:"video_url"`
	PDFURL         string `json:"pdf_url"`
	VideoID        uint   `json:"video_id"`
	ChangesEnabled bool   `json:"changes_enabled"`
	ChangesSource  string `json:"changes_source"`
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved documentation URLs as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCore(func(core *entrypoint.Core) error {
				resolved := core.Resolver.Resolve()
				changes := core.Settings.GetEnableChangesInfo()
				return printJSON(cmd, showOutput{
					VideoURL:       resolved.VideoURL,
					PDFURL:         resolved.PDFURL,
					VideoID:        core.Resolver.VideoSelection(),
					ChangesEnabled: changes.Enabled,
					ChangesSource:  changes.Source,
				})
			})
		},
	}
}

func newSetVideoCommand(a *app) *cobra.Command {
	var rawID string

	cmd := &cobra.Command{
		Use:   "set-video --id <media id>",
		Short: "Choose the documentation video (0 clears it)",
		Long: `Stores the media item shown as the documentation video. The command is
run by the operator of the host, so no account or capability is checked.
Values that are not a positive integer clear the selection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCore(func(core *entrypoint.Core) error {
				id := docs.ParseSelection(rawID)
				previous := core.Resolver.VideoSelection()
				if err := core.Resolver.SetVideoSelection(id); err != nil {
					return fmt.Errorf("save video selection: %w", err)
				}
				core.Audit.LogVideoSelection(auth.DefaultUserID, previous, id)

				if id == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Documentation video cleared")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Documentation video set to media #%d\n", id)
				if core.Resolver.CurrentVideo() == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: media #%d does not exist; the video will show as not found\n", id)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rawID, "id", "", "media item ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAddMediaCommand(a *app) *cobra.Command {
	var (
		file     string
		url      string
		title    string
		slug     string
		mimeType string
	)

	cmd := &cobra.Command{
		Use:   "add-media (--file <path> | --url <url>)",
		Short: "Add a file or remote URL to the media library",
		Example: `  sitedocs add-media --file manual.pdf --slug wds-documentation-pdf
  sitedocs add-media --url https://cdn.example.com/tour.mp4 --title "Site tour" --mime-type video/mp4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCore(func(core *entrypoint.Core) error {
				var (
					item   *entities.MediaItem
					err    error
					action string
				)

				if file != "" {
					action = audit.ActionMediaUpload
					item, err = uploadFile(cmd, core.Library, file, title, slug)
				} else {
					action = audit.ActionMediaRegister
					item, err = core.Library.Register(cmd.Context(), medialib.RegisterInput{
						URL:      url,
						Title:    title,
						Slug:     slug,
						MimeType: mimeType,
						UserID:   auth.DefaultUserID,
					})
				}
				core.Audit.LogMedia(auth.DefaultUserID, action, item, err)
				if err != nil {
					return err
				}
				return printJSON(cmd, item)
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "local file to upload")
	cmd.Flags().StringVar(&url, "url", "", "remote URL to register")
	cmd.Flags().StringVar(&title, "title", "", "title, defaults to the file name")
	cmd.Flags().StringVar(&slug, "slug", "", "slug, defaults to the slugified title")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type of a remote URL")
	cmd.MarkFlagsOneRequired("file", "url")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

func uploadFile(cmd *cobra.Command, library *medialib.Library, path, title, slug string) (*entities.MediaItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return library.Upload(cmd.Context(), medialib.UploadInput{
		Reader:   f,
		FileName: filepath.Base(path),
		Title:    title,
		Slug:     slug,
		UserID:   auth.DefaultUserID,
	})
}

func newPruneMediaCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune-media",
		Short: "Remove media items whose stored file is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCore(func(core *entrypoint.Core) error {
				if dryRun {
					missing, err := core.Library.MissingFiles(cmd.Context())
					if err != nil {
						return err
					}
					for _, item := range missing {
						fmt.Fprintf(cmd.OutOrStdout(), "#%d %s (%s)\n", item.ID, item.Title, item.Slug)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d media item(s) would be removed\n", len(missing))
					return nil
				}

				pruned, err := core.Library.PruneMissing(cmd.Context())
				core.Audit.LogMediaPrune(pruned, err)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d media item(s) removed\n", pruned)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the items without removing them")
	return cmd
}

func newChangesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "changes {on|off|reset}",
		Short:     "Enable, disable or reset documentation changes",
		Long:      "Overrides DOCS_ENABLE_CHANGES in the database; reset removes the override.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCore(func(core *entrypoint.Core) error {
				var err error
				switch args[0] {
				case "on":
					err = core.Settings.SetEnableChanges(true)
				case "off":
					err = core.Settings.SetEnableChanges(false)
				case "reset":
					err = core.Settings.ClearEnableChanges()
				}
				if err != nil {
					return fmt.Errorf("update changes toggle: %w", err)
				}

				info := core.Settings.GetEnableChangesInfo()
				core.Audit.LogSettings(auth.DefaultUserID, audit.ActionEnableChangesUpdate,
					fmt.Sprintf("Documentation changes set to %q from the command line", args[0]))
				fmt.Fprintf(cmd.OutOrStdout(), "Changes enabled: %t (source: %s)\n", info.Enabled, info.Source)
				return nil
			})
		},
	}
}

func newCreateAdminCommand(a *app) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account for local authentication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SITEDOCS_ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or SITEDOCS_ADMIN_PASSWORD)")
			}

			return a.withCore(func(core *entrypoint.Core) error {
				service := auth.NewService(core.DB.DB, a.cfg.Auth)
				user, err := service.CreateUser(username, email, password, entities.UserRoleAdmin)
				if err != nil {
					return err
				}
				core.Audit.LogAuth(user.ID, audit.ActionSetup, "cli", "", true)
				fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %q (id %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (or SITEDOCS_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
