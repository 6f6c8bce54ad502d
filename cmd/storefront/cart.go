package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joss/storefront/internal/cart"
	"github.com/joss/storefront/internal/render"
)

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			showCart()
		},
	}

	// storefront cart add <id> [-q n]
	var quantity int
	addCmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a product to the cart",
		Long:  "Add a product to the cart. Adding one already present increases its quantity.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			p, err := app.api.GetProduct(ctx(), mustParseID(args[0]))
			if err != nil {
				exitOnError(err)
			}
			warnOnPersist(app.cart.Add(ctx(), p, quantity))

			line, _ := app.cart.Line(p.ID)
			if !asJSON {
				render.Stdout().Success("Added %s (now %d in cart)", p.Title, line.Quantity)
				return
			}
			showCart()
		},
	}
	addCmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "How many to add")

	// storefront cart set <id> <n>
	setCmd := &cobra.Command{
		Use:   "set <id> <quantity>",
		Short: "Set a line's quantity (0 or less removes it)",
		Long:  "Set a line's quantity. Zero or a negative quantity removes the line. Flags go before the id.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			id := mustParseID(args[0])
			n, err := strconv.Atoi(args[1])
			if err != nil {
				exitOnError(fmt.Errorf("invalid quantity %q", args[1]))
			}
			warnOnPersist(app.cart.UpdateQuantity(ctx(), id, n))
			showCart()
		},
	}

	// Negative quantities are arguments, not shorthand flags.
	setCmd.Flags().SetInterspersed(false)

	cmd.AddCommand(addCmd, setCmd,
		adjustCmd("inc", "Increase a line's quantity by one", 1),
		adjustCmd("dec", "Decrease a line's quantity by one (never below one)", -1),
	)

	// storefront cart remove <id>
	removeCmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			warnOnPersist(app.cart.Remove(ctx(), mustParseID(args[0])))
			showCart()
		},
	}

	// storefront cart clear
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			warnOnPersist(app.cart.Clear(ctx()))
			if !asJSON {
				render.Stdout().Success("Cart cleared")
				return
			}
			showCart()
		},
	}

	// storefront cart checkout
	checkoutCmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place the order and empty the cart",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			receipt, err := app.cart.Checkout(ctx())
			if errors.Is(err, cart.ErrEmptyCart) {
				exitOnError(err)
			}
			warnOnPersist(err)

			if asJSON {
				printJSON(receipt)
				return
			}
			fmt.Print(renderer().Receipt(receipt))
		},
	}

	cmd.AddCommand(removeCmd, clearCmd, checkoutCmd)
	return cmd
}

// adjustCmd builds the +/- controls. A change that would drop the
// quantity below one is ignored.
func adjustCmd(use, short string, delta int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := mustParseID(args[0])
			changed, err := app.cart.Adjust(ctx(), id, delta)
			warnOnPersist(err)
			if !changed && !asJSON {
				if _, ok := app.cart.Line(id); !ok {
					render.Stderr().Warn("Product %d is not in the cart", id)
				} else {
					render.Stderr().Warn("Quantity unchanged; use 'cart remove %d' to drop it", id)
				}
			}
			showCart()
		},
	}
}

func showCart() {
	lines := app.cart.Lines()
	items, total := app.cart.TotalItems(), app.cart.TotalPrice()
	if asJSON {
		if lines == nil {
			lines = []cart.Line{}
		}
		printJSON(map[string]any{"lines": lines, "items": items, "total": total})
		return
	}
	fmt.Print(renderer().Cart(lines, items, total))
}
