package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/recruit-pipeline/internal/config"
	"github.com/jonathan/recruit-pipeline/internal/db"
	"github.com/jonathan/recruit-pipeline/internal/filestore"
	"github.com/jonathan/recruit-pipeline/internal/llm"
	"github.com/jonathan/recruit-pipeline/internal/pipeline"
	"github.com/jonathan/recruit-pipeline/internal/rubric"
	"github.com/jonathan/recruit-pipeline/internal/server"
	"github.com/jonathan/recruit-pipeline/internal/sheets"
	"github.com/jonathan/recruit-pipeline/internal/tavus"
	"github.com/jonathan/recruit-pipeline/internal/vapi"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

var (
	servePort    int
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  `Start the HTTP server that exposes the trigger and callback endpoints for the recruitment pipeline.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Print startup and callback summaries")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.FromEnv()
	cfg.Port = servePort
	if err := cfg.Validate(); err != nil {
		return err
	}

	creds, err := cfg.CredentialsJSON()
	if err != nil {
		return err
	}
	records, err := sheets.New(ctx, cfg.GoogleSheetID, option.WithCredentialsJSON(creds))
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	deps := server.Deps{
		Rubrics: rubric.NewRegistry(),
		Records: records,
		Verbose: serveVerbose,
	}

	// The correlation index prefers the database; without one, video
	// callbacks fall back to scanning the conversation ID column.
	var correlator pipeline.Correlator = records
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare database schema: %w", err)
		}
		correlator = database
		deps.Index = database
	} else {
		log.Println("DATABASE_URL not set; correlating video callbacks via sheet scan")
	}

	if cfg.VapiAPIKey != "" {
		deps.Calls = vapi.NewClient(cfg.VapiAPIKey)
	}
	if cfg.TavusAPIKey != "" {
		deps.Videos = tavus.NewClient(cfg.TavusAPIKey)
	}

	var analyses pipeline.AnalysisStore
	if cfg.HasSharePoint() {
		sharepoint := filestore.NewSharePointClient(filestore.SharePointConfig{
			ClientID:     cfg.SharePointClientID,
			TenantID:     cfg.SharePointTenantID,
			ClientSecret: cfg.SharePointClientSecret,
			SiteURL:      cfg.SharePointSiteURL,
			FolderPath:   cfg.SharePointFolderPath,
		})
		analyses = sharepoint
		if cfg.HubSpotToken != "" {
			deps.Transfer = filestore.NewTransfer(filestore.NewHubSpotClient(cfg.HubSpotToken), sharepoint)
		}
	}

	deps.Dispatcher = pipeline.NewDispatcher(deps.Rubrics, llmClient, records, correlator, analyses)

	return server.New(cfg, deps).Start()
}
