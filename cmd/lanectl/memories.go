package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agrance/memorylane/internal/client"
	"github.com/agrance/memorylane/internal/journal"
)

func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List memories, page by page",
		RunE:    runList,
	}
	cmd.Flags().String("sort", journal.SortOlder, "Sort order (older|newer)")
	cmd.Flags().Int("limit", journal.DefaultPageLimit, "Page size")
	cmd.Flags().Int("pages", 0, "Number of pages to fetch (0 = all)")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	sortOrder, _ := cmd.Flags().GetString("sort")
	limit, _ := cmd.Flags().GetInt("limit")
	maxPages, _ := cmd.Flags().GetInt("pages")
	asJSON, _ := cmd.Flags().GetBool("json")

	pager := client.NewPager(newClient(cmd), limit, sortOrder)
	if err := pager.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("list memories: %w", err)
	}
	fetched := 1
	for pager.HasMore() && (maxPages == 0 || fetched < maxPages) {
		if err := pager.LoadMore(cmd.Context()); err != nil {
			return fmt.Errorf("list memories: %w", err)
		}
		fetched++
	}

	memories := pager.Memories()
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(memories)
	}

	for _, m := range memories {
		fmt.Fprintf(cmd.OutOrStdout(), "%-6d %-12s %s\n", m.ID, m.Timestamp, m.Name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "showing %d of %d memories\n", len(memories), pager.Total())
	return nil
}

func NewGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid memory id %q", args[0])
			}
			m, err := newClient(cmd).GetMemory(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get memory: %w", err)
			}
			return printMemory(cmd, m)
		},
	}
}

func printMemory(cmd *cobra.Command, m journal.Memory) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "id:          %d\n", m.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "name:        %s\n", m.Name)
	fmt.Fprintf(cmd.OutOrStdout(), "date:        %s\n", m.Timestamp)
	fmt.Fprintf(cmd.OutOrStdout(), "image:       %s\n", m.Image)
	fmt.Fprintf(cmd.OutOrStdout(), "description: %s\n", m.Description)
	return nil
}

func NewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new memory",
		RunE:  runCreate,
	}
	cmd.Flags().StringP("name", "n", "", "Memory name")
	cmd.Flags().StringP("description", "d", "", "What happened")
	cmd.Flags().StringP("timestamp", "t", "", "Date of the memory (e.g. 2023-05-01)")
	cmd.Flags().String("image", "", "Image URL")
	cmd.Flags().String("image-file", "", "Local image to upload first")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("timestamp")
	return cmd
}

func runCreate(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	timestamp, _ := cmd.Flags().GetString("timestamp")
	image, _ := cmd.Flags().GetString("image")
	imageFile, _ := cmd.Flags().GetString("image-file")

	if imageFile != "" {
		uploader := newUploader(cmd)
		if uploader == nil {
			return fmt.Errorf("--image-file requires --upload-url (or UPLOAD_API_URL)")
		}
		f, err := os.Open(imageFile)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		asset, err := uploader.Upload(cmd.Context(), filepath.Base(imageFile), f)
		if err != nil {
			return fmt.Errorf("upload image: %w", err)
		}
		image = asset.URL
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded image key: %s\n", asset.Key)
	}

	id, err := newClient(cmd).CreateMemory(cmd.Context(), journal.Memory{
		Name:        name,
		Description: description,
		Timestamp:   timestamp,
		Image:       image,
	})
	if err != nil {
		return fmt.Errorf("create memory: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created memory %d\n", id)
	return nil
}

func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a memory's fields",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpdate,
	}
	cmd.Flags().StringP("name", "n", "", "Memory name")
	cmd.Flags().StringP("description", "d", "", "What happened")
	cmd.Flags().StringP("timestamp", "t", "", "Date of the memory")
	cmd.Flags().String("image", "", "Image URL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("timestamp")
	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid memory id %q", args[0])
	}
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	timestamp, _ := cmd.Flags().GetString("timestamp")
	image, _ := cmd.Flags().GetString("image")

	err = newClient(cmd).UpdateMemory(cmd.Context(), id, journal.Memory{
		Name:        name,
		Description: description,
		Timestamp:   timestamp,
		Image:       image,
	})
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated memory %d\n", id)
	return nil
}

func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a memory (and, best-effort, its uploaded image)",
		Args:    cobra.ExactArgs(1),
		RunE:    runDelete,
	}
	cmd.Flags().String("image-key", "", "Upload-service key of the memory's image")
	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid memory id %q", args[0])
	}
	imageKey, _ := cmd.Flags().GetString("image-key")

	if err := newClient(cmd).DeleteMemory(cmd.Context(), id, imageKey); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted memory %d\n", id)
	return nil
}
