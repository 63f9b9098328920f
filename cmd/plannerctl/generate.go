package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/gemini"
	"github.com/backpackor/planner/internal/repo"
	"github.com/backpackor/planner/internal/service"
)

var genFlags struct {
	start, end string
	companion  string
	speed      string
	styles     []string
	transport  []string
	regions    []string
	apiKey     string
	model      string
	endpoint   string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Ask the model for a plan and print it",
	Long: `Builds the same request as GET /generate-plan from flags, sends it to
Gemini with the catalog places of the chosen regions, and prints the
proposed plan JSON.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.start, "start", "", "first day (YYYY-MM-DD)")
	f.StringVar(&genFlags.end, "end", "", "last day (YYYY-MM-DD)")
	f.StringVar(&genFlags.companion, "companion", "", "who is travelling")
	f.StringVar(&genFlags.speed, "speed", string(domain.PaceNormal), "relaxed, normal or packed")
	f.StringSliceVar(&genFlags.styles, "style", nil, "travel style (repeatable)")
	f.StringSliceVar(&genFlags.transport, "transport", nil, "means of transport (repeatable)")
	f.StringSliceVar(&genFlags.regions, "region", nil, "region name (repeatable, at least one)")
	f.StringVar(&genFlags.apiKey, "gemini-key", os.Getenv("GEMINI_API_KEY"), "API key (default $GEMINI_API_KEY)")
	f.StringVar(&genFlags.model, "model", gemini.DefaultModel, "model name")
	f.StringVar(&genFlags.endpoint, "endpoint", os.Getenv("GEMINI_ENDPOINT"), "API base URL override")
	rootCmd.AddCommand(generateCmd)
}

// generationRequest turns the flags into a request. It rejects what the
// service would reject so no connection is opened for a bad invocation.
func generationRequest() (domain.GenerationRequest, error) {
	req := domain.GenerationRequest{
		Companion: genFlags.companion,
		Pace:      domain.Pace(genFlags.speed),
		Styles:    genFlags.styles,
		Transport: genFlags.transport,
		Regions:   genFlags.regions,
	}
	if len(req.Regions) == 0 {
		return req, errors.New("at least one --region is required")
	}
	if !req.Pace.Valid() {
		return req, fmt.Errorf("unknown --speed %q", genFlags.speed)
	}
	start, err := domain.ParseDate(genFlags.start)
	if err != nil {
		return req, err
	}
	end, err := domain.ParseDate(genFlags.end)
	if err != nil {
		return req, err
	}
	if start != nil {
		req.Start = *start
	}
	if end != nil {
		req.End = *end
	}
	return req, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	req, err := generationRequest()
	if err != nil {
		return err
	}
	if databaseURL == "" {
		return errors.New("no database: set --database-url or DATABASE_URL")
	}

	ctx := cmd.Context()
	logger := newLogger(cmd)

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	client, err := gemini.New(ctx, gemini.Config{
		APIKey:   genFlags.apiKey,
		Model:    genFlags.model,
		Endpoint: genFlags.endpoint,
	}, logger)
	if err != nil {
		return err
	}

	svc := service.NewGenerationService(repo.NewPlaceRepo(pool), client, logger)
	_, raw, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("format plan: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return err
}
