package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/oskarb/docmend/internal"
	"github.com/oskarb/docmend/internal/docx"
	"github.com/oskarb/docmend/internal/models"
	pkgconfig "github.com/oskarb/docmend/pkg/config"
)

func bootstrap(cmd *cli.Command) (*internal.App, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return internal.Bootstrap(internal.WithConfig(cfg))
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func addAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: add <file.docx>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := app.Engine.AddDocument(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}
	return printJSON(doc)
}

func listAction(_ context.Context, cmd *cli.Command) error {
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	docs, err := app.Registry.ListDocuments()
	if err != nil {
		return err
	}
	return printJSON(docs)
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: render <document-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	html, err := app.Engine.Render(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println(html)
	return nil
}

func removeAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: remove <document-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Engine.RemoveDocument(ctx, id); err != nil {
		return err
	}
	fmt.Printf("document %s removed\n", id)
	return nil
}

func scanAction(ctx context.Context, cmd *cli.Command) error {
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.Bool("all") {
		docs, err := app.Registry.ListDocuments()
		if err != nil {
			return err
		}
		ids := make([]string, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		results, err := app.Audit.ScanAll(ctx, ids)
		if err != nil {
			return err
		}
		return printJSON(results)
	}

	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: scan <document-id> (or scan --all)")
	}
	findings, err := app.Audit.Scan(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(findings)
}

func findingsAction(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: findings <document-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	findings, err := app.Registry.ListFindings(id)
	if err != nil {
		return err
	}
	return printJSON(findings)
}

func suggestAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: suggest <finding-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	suggestion, err := app.Audit.Suggest(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(suggestion)
}

func stageAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: stage <finding-id> --content <text>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	change, err := app.Engine.StageChange(ctx, id, cmd.String("content"), cmd.String("type"))
	if err != nil {
		return err
	}
	return printJSON(change)
}

func changesAction(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: changes <document-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	changes, err := app.Registry.ListChanges(id, cmd.String("status"))
	if err != nil {
		return err
	}
	return printJSON(changes)
}

func unstageAction(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: unstage <change-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Registry.CancelChange(id); err != nil {
		return err
	}
	fmt.Printf("change %s cancelled\n", id)
	return nil
}

func applyAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: apply <document-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	outcome, err := app.Engine.ApplyStaged(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(outcome)
}

func restoreAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: restore <document-id>")
	}
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Engine.Restore(ctx, id); err != nil {
		return err
	}
	fmt.Printf("document %s restored from backup\n", id)
	return nil
}

func sampleAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		path = "sample.docx"
	}
	data, err := docx.NewSample().Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("sample document written to %s\n", path)
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "docmend",
		Usage: "Locate, remediate, and restore content in DOCX documents",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a DOCX file in the workspace",
				ArgsUsage: "<file.docx>",
				Action:    addAction,
			},
			{
				Name:   "list",
				Usage:  "List registered documents",
				Action: listAction,
			},
			{
				Name:      "render",
				Usage:     "Render a document's working copy as HTML",
				ArgsUsage: "<document-id>",
				Action:    renderAction,
			},
			{
				Name:      "remove",
				Usage:     "Delete a document, its backup, and its registry state",
				ArgsUsage: "<document-id>",
				Action:    removeAction,
			},
			{
				Name:      "scan",
				Usage:     "Record audit findings for a document",
				ArgsUsage: "<document-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Scan every registered document concurrently"},
				},
				Action: scanAction,
			},
			{
				Name:      "findings",
				Usage:     "List a document's findings",
				ArgsUsage: "<document-id>",
				Action:    findingsAction,
			},
			{
				Name:      "suggest",
				Usage:     "Show the suggested fix for a finding",
				ArgsUsage: "<finding-id>",
				Action:    suggestAction,
			},
			{
				Name:      "stage",
				Usage:     "Stage a change against a finding",
				ArgsUsage: "<finding-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "content", Usage: "Replacement text", Required: true},
					&cli.StringFlag{Name: "type", Usage: "Change type", Value: "manual"},
				},
				Action: stageAction,
			},
			{
				Name:      "changes",
				Usage:     "List a document's change requests",
				ArgsUsage: "<document-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status (" + models.ChangeStatusStaged + ", " + models.ChangeStatusApplied + ", ...)"},
				},
				Action: changesAction,
			},
			{
				Name:      "unstage",
				Usage:     "Cancel a staged change",
				ArgsUsage: "<change-id>",
				Action:    unstageAction,
			},
			{
				Name:      "apply",
				Usage:     "Apply a document's staged changes as one batch",
				ArgsUsage: "<document-id>",
				Action:    applyAction,
			},
			{
				Name:      "restore",
				Usage:     "Restore a document from its backup snapshot",
				ArgsUsage: "<document-id>",
				Action:    restoreAction,
			},
			{
				Name:      "sample",
				Usage:     "Write a sample DOCX with known accessibility issues",
				ArgsUsage: "[path]",
				Action:    sampleAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
