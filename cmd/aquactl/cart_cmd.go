package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCatalogCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the available gallons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := (*a).catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Printf("#%d  %-16s %2dL  %s\n", p.ID, p.Name, p.Liters, pesos(p.PriceCents))
			}
			return nil
		},
	}
}

func newCartCmd(a **app) *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := (*a).cart.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			for _, l := range (*a).cart.Lines() {
				fmt.Printf("#%d  %-16s x%d  %s\n", l.LineID, l.Name, l.Quantity, pesos(l.LineTotalCents()))
			}
			fmt.Printf("Total: %d items, %s\n", (*a).cart.TotalItems(), pesos((*a).cart.TotalCents()))
			return nil
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <gallon-id>",
		Short: "Add a gallon to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid gallon id %q", args[0])
			}
			if err := (*a).cart.Add(cmd.Context(), id, qty); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			fmt.Printf("Added. Cart now has %d items.\n", (*a).cart.TotalItems())
			return nil
		},
	}
	add.Flags().IntVarP(&qty, "quantity", "q", 1, "quantity to add")

	remove := &cobra.Command{
		Use:   "remove <line-id>...",
		Short: "Remove lines from the cart",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid line id %q", arg)
				}
				ids = append(ids, id)
			}
			if err := (*a).cart.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			if err := (*a).cart.Remove(cmd.Context(), ids...); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			fmt.Println("Removed.")
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <line-id> <quantity>",
		Short: "Set a line's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid line id %q", args[0])
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			if err := (*a).cart.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			if err := (*a).cart.UpdateQuantity(cmd.Context(), id, n); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			fmt.Printf("Cart now has %d items.\n", (*a).cart.TotalItems())
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove every line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := (*a).cart.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			if err := (*a).cart.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("%s", (*a).cart.Err())
			}
			fmt.Println("Cart cleared.")
			return nil
		},
	}

	cartCmd.AddCommand(list, add, remove, set, clear)
	return cartCmd
}

func pesos(cents int64) string {
	return fmt.Sprintf("₱%d.%02d", cents/100, cents%100)
}
