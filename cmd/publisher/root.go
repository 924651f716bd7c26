package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"content_publisher/internal/domain"
	"content_publisher/internal/notify"
	"content_publisher/internal/scheduler"
	"content_publisher/internal/server"
)

type rootOptions struct {
	ConfigPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "publisher",
		Short:         "Content publication lifecycle engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "path to config file")

	cmd.AddCommand(
		newServeCommand(opts),
		newPublishDueCommand(opts),
		newCronCommand(opts),
		newNotifyWorkerCommand(opts),
		newSubmitCommand(opts),
		newReviseCommand(opts),
		newArchiveCommand(opts),
		newResyndicateCommand(opts),
		newStatusCommand(opts),
	)
	return cmd
}

// withApp wires the application for one command invocation.
func withApp(opts *rootOptions, fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(opts.ConfigPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext(a.logger)
		defer cancel()
		return fn(ctx, a, cmd, args)
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduled trigger and the approval pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			srv, err := server.New(a.cfg.Server, a.publication, a.preview, a.workflow, a.logger)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Start(ctx) })
			if withScheduler {
				sched := scheduler.NewScheduler(a.publication, a.cfg.Publication.Interval, a.logger)
				g.Go(func() error { return ignoreCanceled(sched.Start(ctx)) })
			}
			return g.Wait()
		}),
	}
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run publication on the configured interval")
	return cmd
}

func newPublishDueCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish-due",
		Short: "Run one publication pass and print the report",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			report, err := a.publication.RunScheduledPublication(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		}),
	}
}

func newCronCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cron",
		Short: "Run publication passes on the configured interval",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			sched := scheduler.NewScheduler(a.publication, a.cfg.Publication.Interval, a.logger)
			return ignoreCanceled(sched.Start(ctx))
		}),
	}
}

func newNotifyWorkerCommand(opts *rootOptions) *cobra.Command {
	var prefetch int

	cmd := &cobra.Command{
		Use:   "notify-worker",
		Short: "Send queued publication notices",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			if !a.cfg.RabbitMQ.Enabled {
				return errors.New("rabbitmq is disabled; notices are sent inline")
			}
			queue, err := a.openQueue()
			if err != nil {
				return err
			}
			deliveries, err := queue.Consume(prefetch)
			if err != nil {
				return err
			}
			return notify.NewWorker(a.sender, a.logger).Run(ctx, deliveries)
		}),
	}
	cmd.Flags().IntVar(&prefetch, "prefetch", 10, "unacknowledged messages held at once")
	return cmd
}

type submitOptions struct {
	ID       string
	Title    string
	Excerpt  string
	BodyFile string
	Category string
	ImageURL string
	Keywords []string
	Hashtags []string
	Sources  []string
	To       string
}

func newSubmitCommand(opts *rootOptions) *cobra.Command {
	so := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a draft for approval, creating it first unless --id is given",
		Long: `Send a draft for approval. The approver receives a one-time preview link.

Example:
  publisher submit --title "Spring launch" --body-file post.md --to editor@example.com
  publisher submit --id 0190a4c2-... --to editor@example.com`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			id, err := so.draft(ctx, a)
			if err != nil {
				return err
			}
			item, err := a.workflow.SubmitForApproval(ctx, id, so.To)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\npreview: %s\n", item.ID, item.Status, a.workflow.PreviewURL(*item.ApprovalToken))
			return nil
		}),
	}

	cmd.Flags().StringVar(&so.ID, "id", "", "existing draft id")
	cmd.Flags().StringVar(&so.Title, "title", "", "title of a new draft")
	cmd.Flags().StringVar(&so.Excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringVar(&so.BodyFile, "body-file", "", "markdown body file, - for stdin")
	cmd.Flags().StringVar(&so.Category, "category", "", "category")
	cmd.Flags().StringVar(&so.ImageURL, "image-url", "", "cover image url")
	cmd.Flags().StringSliceVar(&so.Keywords, "keywords", nil, "comma separated keywords")
	cmd.Flags().StringSliceVar(&so.Hashtags, "hashtags", nil, "comma separated hashtags")
	cmd.Flags().StringSliceVar(&so.Sources, "sources", nil, "comma separated source urls")
	cmd.Flags().StringVar(&so.To, "to", "", "approver email address")
	_ = cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("id", "title")
	cmd.MarkFlagsOneRequired("id", "title")
	return cmd
}

func (so *submitOptions) draft(ctx context.Context, a *app) (uuid.UUID, error) {
	if so.ID != "" {
		return uuid.Parse(so.ID)
	}

	body, err := readBody(so.BodyFile)
	if err != nil {
		return uuid.Nil, err
	}

	item := domain.NewDraft(so.Title, so.Excerpt, body, so.Category, time.Now().UTC())
	item.Keywords = so.Keywords
	item.Hashtags = so.Hashtags
	item.Sources = so.Sources
	if so.ImageURL != "" {
		item.ImageURL = &so.ImageURL
	}
	if err := a.workflow.CreateDraft(ctx, item); err != nil {
		return uuid.Nil, err
	}
	return item.ID, nil
}

func readBody(path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

func newReviseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revise <id>",
		Short: "Reopen a rejected item as a draft",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse id: %w", err)
			}
			item, err := a.workflow.Revise(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s revision %d\n", item.ID, item.Status, item.RevisionCount)
			return nil
		}),
	}
}

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a published item",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse id: %w", err)
			}
			item, err := a.workflow.Archive(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", item.ID, item.Status)
			return nil
		}),
	}
}

func newResyndicateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resyndicate <id>",
		Short: "Retry syndication on platforms a published item has not reached",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse id: %w", err)
			}
			report, err := a.publication.Resyndicate(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		}),
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [id|slug]",
		Short: "Show an item with its syndication history, or the last run",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				run, err := a.runs.Latest(ctx)
				if err != nil {
					return err
				}
				if run == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no publication runs recorded")
					return nil
				}
				return printJSON(cmd.OutOrStdout(), run)
			}

			var item *domain.ContentItem
			var err error
			if id, parseErr := uuid.Parse(args[0]); parseErr == nil {
				item, err = a.contents.GetByID(ctx, id)
			} else {
				item, err = a.contents.GetBySlug(ctx, strings.TrimSpace(args[0]))
			}
			if err != nil {
				return err
			}

			records, err := a.records.ListByContent(ctx, item.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"item":        item,
				"syndication": records,
			})
		}),
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
