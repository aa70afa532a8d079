package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aniayu/storefront-go/internal/clients"
	"github.com/aniayu/storefront-go/internal/config"
	"github.com/aniayu/storefront-go/internal/orders"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the shop API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := newShopAPI(config.Load())

			res := clients.CheckHealth(cmd.Context(), clients.HealthProbe{Name: "shop-api", Client: base, Path: "/health"})
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("shop api unhealthy")
			}
			return nil
		},
	}
}

func orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order [id]",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := newShopAPI(config.Load())
			svc := orders.NewService(clients.NewOrderClient(base), anonymous{}, newLogger())

			view := svc.Get(cmd.Context(), args[0])
			if err := printJSON(cmd.OutOrStdout(), view); err != nil {
				return err
			}
			if !view.Found {
				return fmt.Errorf("%s", view.Message)
			}
			return nil
		},
	}
}

func trackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Look up orders by the email and phone used at checkout",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")

			base, _ := newShopAPI(config.Load())
			svc := orders.NewService(clients.NewOrderClient(base), anonymous{}, newLogger())

			lv := svc.Track(cmd.Context(), email, phone)
			if err := printJSON(cmd.OutOrStdout(), lv); err != nil {
				return err
			}
			if lv.Message != "" {
				return fmt.Errorf("%s", lv.Message)
			}
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email used for the order")
	cmd.Flags().String("phone", "", "Phone number used for the order")

	return cmd
}
