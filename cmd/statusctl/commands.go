package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"delivered-status-service/internal/delivered"
	"delivered-status-service/internal/hook"
	"delivered-status-service/internal/legacy"
	"delivered-status-service/internal/repository"
	"delivered-status-service/internal/service"
	"delivered-status-service/internal/status"
)

var errNotConfirmed = errors.New("refusing to revert delivered orders without --yes")

func init() {
	// statuses
	var statusesCmd = &cobra.Command{
		Use:   "statuses",
		Short: "List registered order statuses in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := openService(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeFn(context.Background())
			return runStatuses(cmd.Context(), cmd.OutOrStdout(), svc)
		},
	}
	rootCmd.AddCommand(statusesCmd)

	// report
	var reportStatuses string
	var reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Show order count and gross total per reporting status",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := openService(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn(context.Background())
			var requested []string
			if cmd.Flags().Changed("statuses") {
				requested = splitStatuses(reportStatuses)
			}
			return runReport(cmd.Context(), cmd.OutOrStdout(), svc, requested)
		},
	}
	reportCmd.Flags().StringVarP(&reportStatuses, "statuses", "s", "", "Comma-separated statuses to report on (default: reporting statuses)")
	rootCmd.AddCommand(reportCmd)

	// revert-delivered
	var confirm bool
	var revertCmd = &cobra.Command{
		Use:   "revert-delivered",
		Short: "Move every delivered shop order back to completed",
		Long: `Bulk-updates every shop order in "delivered" to "completed" without
firing status events or writing history. Requires --yes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errNotConfirmed
			}
			_, store, closeFn, err := openService(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn(context.Background())
			return runRevert(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
	revertCmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm the bulk revert")
	rootCmd.AddCommand(revertCmd)
}

// openService arma el servicio con el estado "delivered" registrado. Con
// memoryOnly no abre la base: alcanza para listar estados.
func openService(ctx context.Context, memoryOnly bool) (*service.OrderStatusService, repository.Store, func(context.Context) error, error) {
	uri := cfg.MongoURI
	if memoryOnly {
		uri = repository.MemoryURIPrefix
	}
	store, closeFn, err := repository.Open(ctx, uri, cfg.MongoDBName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open order store: %w", err)
	}

	registry := status.NewRegistry()
	hooks := hook.NewManager(logger)
	svc := service.NewOrderStatusService(store, registry, hooks, logger)
	if err := delivered.Setup(delivered.Deps{Registry: registry, Hooks: hooks, Service: svc, Logger: logger}); err != nil {
		_ = closeFn(context.Background())
		return nil, nil, nil, err
	}
	return svc, store, closeFn, nil
}

func runStatuses(ctx context.Context, out io.Writer, svc *service.OrderStatusService) error {
	defs, err := svc.Statuses(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tLABEL\tPUBLIC\tSEARCHABLE")
	for _, d := range defs {
		fmt.Fprintf(w, "%s%s\t%s\t%t\t%t\n", status.KeyPrefix, d.ID, d.Label, d.Public, !d.ExcludeFromSearch)
	}
	return w.Flush()
}

func runReport(ctx context.Context, out io.Writer, svc *service.OrderStatusService, requested []string) error {
	rep, err := svc.Report(ctx, requested)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tORDERS\tGROSS")
	for _, r := range rep.Rows {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", r.Status, r.Count, r.Total)
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%.2f\n", rep.OrderCount, rep.GrossTotal)
	return w.Flush()
}

func runRevert(ctx context.Context, out io.Writer, store legacy.Reverter) error {
	n, err := legacy.NewCleanup(store, true, logger).RevertDelivered(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Reverted %d delivered orders to completed\n", n)
	return nil
}

func splitStatuses(raw string) []string {
	out := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = status.NormalizeStatus(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
