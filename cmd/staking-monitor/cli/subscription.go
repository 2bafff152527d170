package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/db"
	dbmodel "github.com/overtake-labs/staking-monitor/internal/db/model"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// SubscriptionCmd edits the subscription store directly. A running server
// applies the changes on its next subscription sync.
func SubscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Manages alert subscriptions",
	}

	add := &cobra.Command{
		Use:   "add <chat-id|@channel>",
		Short: "Adds or updates a subscription",
		Args:  cobra.ExactArgs(1),
		RunE:  addSubscription,
	}
	add.Flags().String("threshold", "", "minimum alert value in fiat (default monitor.threshold-fiat)")
	add.Flags().Duration("interval", 0, "poll interval (default monitor.poll-interval)")
	add.Flags().Bool("paused", false, "store the subscription without monitoring it")

	remove := &cobra.Command{
		Use:   "remove <chat-id|@channel>",
		Short: "Deletes a subscription",
		Args:  cobra.ExactArgs(1),
		RunE:  removeSubscription,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lists stored subscriptions",
		Args:  cobra.ExactArgs(0),
		RunE:  listSubscriptions,
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}

func withDatabase(ctx context.Context, f func(cfg *config.Config, database db.DbInterface) error) error {
	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.Db)
	if err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	return f(cfg, db.NewDbWithMetrics(database))
}

func addSubscription(cmd *cobra.Command, args []string) error {
	id := args[0]
	threshold, _ := cmd.Flags().GetString("threshold")
	interval, _ := cmd.Flags().GetDuration("interval")
	paused, _ := cmd.Flags().GetBool("paused")

	return withDatabase(cmd.Context(), func(cfg *config.Config, database db.DbInterface) error {
		subCfg := types.SubscriptionConfig{
			ThresholdFiat: decimal.NewFromFloat(cfg.Monitor.ThresholdFiat),
			PollInterval:  cfg.Monitor.PollInterval,
		}
		if threshold != "" {
			value, err := decimal.NewFromString(threshold)
			if err != nil || value.IsNegative() {
				return fmt.Errorf("threshold must be a non negative number, got %q", threshold)
			}
			subCfg.ThresholdFiat = value
		}
		if interval > 0 {
			subCfg.PollInterval = interval
		}

		if err := database.SaveSubscription(cmd.Context(), dbmodel.NewSubscriptionDocument(id, subCfg, !paused)); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %s: threshold $%s, interval %s, active %t\n",
			id, subCfg.ThresholdFiat.StringFixed(2), subCfg.PollInterval, !paused)
		return err
	})
}

func removeSubscription(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd.Context(), func(_ *config.Config, database db.DbInterface) error {
		if err := database.DeleteSubscription(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return err
	})
}

func listSubscriptions(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd.Context(), func(_ *config.Config, database db.DbInterface) error {
		subs, err := database.LoadSubscriptions(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTHRESHOLD\tINTERVAL\tACTIVE\tUPDATED")
		for _, sub := range subs {
			interval := time.Duration(sub.PollIntervalMs) * time.Millisecond
			updated := time.Unix(sub.LastUpdated, 0).UTC().Format(time.RFC3339)
			fmt.Fprintf(w, "%s\t$%s\t%s\t%t\t%s\n", sub.ID, sub.ThresholdFiat, interval, sub.Active, updated)
		}
		return w.Flush()
	})
}
