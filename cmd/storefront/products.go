package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joss/storefront/internal/catalog"
	"github.com/joss/storefront/internal/render"
)

func productsCmd() *cobra.Command {
	var search, category string

	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"ls"},
		Short:   "List products",
		Long:    "List the catalog, optionally narrowed by a text search and a category ('all' for every category)",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			products, err := app.api.ListProducts(ctx())
			if err != nil {
				exitOnError(err)
			}
			products = catalog.Filter(products, search, category)

			if asJSON {
				printJSON(products)
				return
			}
			fmt.Print(renderer().Products(products))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title or description (case-insensitive)")
	cmd.Flags().StringVarP(&category, "category", "c", catalog.AllCategories, "Category name or slug")

	// storefront products show <id>
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			p, err := app.api.GetProduct(ctx(), mustParseID(args[0]))
			if err != nil {
				exitOnError(err)
			}
			if asJSON {
				printJSON(p)
				return
			}
			fmt.Print(renderer().Product(p))
		},
	}

	// storefront products create --title ... --price ...
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product (login required)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			requireLogin()

			in := formInput(cmd, catalog.ProductInput{})
			p, err := app.api.CreateProduct(ctx(), in)
			if err != nil {
				exitOnError(err)
			}
			reportProduct("Created", p)
		},
	}
	addFormFlags(createCmd)

	// storefront products edit <id> [--field ...]
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product (login required)",
		Long:  "Edit a product. Fields not given keep their current values.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			requireLogin()

			id := mustParseID(args[0])
			current, err := app.api.GetProduct(ctx(), id)
			if err != nil {
				exitOnError(err)
			}

			in := formInput(cmd, catalog.InputFrom(current))
			p, err := app.api.UpdateProduct(ctx(), id, in)
			if err != nil {
				exitOnError(err)
			}
			reportProduct("Updated", p)
		},
	}
	addFormFlags(editCmd)

	// storefront products delete <id>
	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a product (login required)",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			requireLogin()

			id := mustParseID(args[0])
			if err := app.api.DeleteProduct(ctx(), id); err != nil {
				exitOnError(err)
			}
			if asJSON {
				printJSON(map[string]any{"deleted": id})
				return
			}
			render.Stdout().Success("Deleted product %d", id)
		},
	}

	cmd.AddCommand(showCmd, createCmd, editCmd, deleteCmd)
	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			categories, err := app.api.ListCategories(ctx())
			if err != nil {
				exitOnError(err)
			}
			if asJSON {
				printJSON(categories)
				return
			}
			fmt.Print(renderer().Categories(categories))
		},
	}
}

func addFormFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Product title")
	cmd.Flags().Float64("price", 0, "Price, greater than zero")
	cmd.Flags().String("description", "", "Product description")
	cmd.Flags().String("image", "", "Image URL")
	cmd.Flags().String("category", "", "Category name")
}

// formInput overlays the flags the user actually set onto base.
func formInput(cmd *cobra.Command, base catalog.ProductInput) catalog.ProductInput {
	flags := cmd.Flags()
	if flags.Changed("title") {
		base.Title, _ = flags.GetString("title")
	}
	if flags.Changed("price") {
		base.Price, _ = flags.GetFloat64("price")
	}
	if flags.Changed("description") {
		base.Description, _ = flags.GetString("description")
	}
	if flags.Changed("image") {
		base.Image, _ = flags.GetString("image")
	}
	if flags.Changed("category") {
		base.Category, _ = flags.GetString("category")
	}
	return base
}

func reportProduct(verb string, p catalog.Product) {
	if asJSON {
		printJSON(p)
		return
	}
	render.Stdout().Success("%s product %d: %s", verb, p.ID, p.Title)
}
