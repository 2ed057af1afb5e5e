package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrance/memorylane/internal/client"
	"github.com/agrance/memorylane/internal/upload"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lanectl",
		Short:         "Command-line client for the Memory Lane journal API",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("api", envOrDefault("API_URL", "http://localhost:4001"), "Base URL of the journal API")
	rootCmd.PersistentFlags().String("upload-url", os.Getenv("UPLOAD_API_URL"), "Base URL of the image upload service")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(
		NewListCmd(),
		NewGetCmd(),
		NewCreateCmd(),
		NewUpdateCmd(),
		NewDeleteCmd(),
		NewProfileCmd(),
	)

	return rootCmd
}

// newClient wires the API client (and the uploader, when configured) from
// the persistent flags.
func newClient(cmd *cobra.Command) *client.Client {
	api, _ := cmd.Flags().GetString("api")
	uploadURL, _ := cmd.Flags().GetString("upload-url")

	var uploader upload.Uploader
	if uploadURL != "" {
		uploader = upload.NewHTTPUploader(uploadURL, os.Getenv("UPLOAD_API_KEY"))
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}

	return client.New(client.Config{
		BaseURL:  api,
		Uploader: uploader,
		Logger:   logger,
	})
}

func newUploader(cmd *cobra.Command) upload.Uploader {
	uploadURL, _ := cmd.Flags().GetString("upload-url")
	if uploadURL == "" {
		return nil
	}
	return upload.NewHTTPUploader(uploadURL, os.Getenv("UPLOAD_API_KEY"))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
