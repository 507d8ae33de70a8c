package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"aquaflow-client/internal/domain"
	"aquaflow-client/internal/service/orders"
	"github.com/spf13/cobra"
)

func newOrdersCmd(a **app) *cobra.Command {
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Admin order panel",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders with their available actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := (*a).orders.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s", (*a).orders.Message())
			}
			for _, stat := range (*a).orders.Stats() {
				fmt.Printf("%-10s %d   ", stat.Label, stat.Count)
			}
			fmt.Println()
			for _, o := range (*a).orders.Filter(search) {
				actions := orders.AvailableActions(o.Status)
				fmt.Printf("#%d  %-20s %-24s %-10s %s  [%s]\n",
					o.ID, o.CustomerName, o.Products, pesos(o.TotalCents),
					domain.DisplayStatus(o.Status), strings.Join(actions, ", "))
			}
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "filter by customer, product, or id")

	var yes bool
	act := &cobra.Command{
		Use:   "act <order-id> <action>",
		Short: "Perform an action on an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			action := args[1]

			if err := (*a).orders.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s", (*a).orders.Message())
			}
			status := ""
			for _, o := range (*a).orders.Orders() {
				if o.ID == orderID {
					status = o.Status
					break
				}
			}

			pending := orders.Confirm(orderID, action, status)
			if pending.RequiresConfirm && !yes {
				if !promptYesNo(pending.Confirmation) {
					fmt.Println("Cancelled.")
					return nil
				}
			}

			if err := (*a).orders.PerformAction(cmd.Context(), orderID, action); err != nil {
				return fmt.Errorf("%s", (*a).orders.Message())
			}
			fmt.Println((*a).orders.Message())
			return nil
		},
	}
	act.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	ordersCmd.AddCommand(list, act)
	return ordersCmd
}

func promptYesNo(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
