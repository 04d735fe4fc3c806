package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgcastano/provision/internal/cli"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the material and product catalog",
}

var catalogMaterialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List materials with shrink factors and fallback costs",
	RunE:  runCatalogMaterials,
}

var catalogProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List sellable products",
	RunE:  runCatalogProducts,
}

var catalogPresentationsCmd = &cobra.Command{
	Use:   "presentations <material-id>",
	Short: "List a material's purchase presentations in registration order",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogPresentations,
}

func init() {
	catalogCmd.AddCommand(catalogMaterialsCmd, catalogProductsCmd, catalogPresentationsCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogMaterials(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	materials, err := st.Materials(cmd.Context(), flagCategory)
	if err != nil {
		return err
	}
	if len(materials) == 0 {
		fmt.Println(cli.Muted("No materials in the catalog."))
		return nil
	}

	cur := currency()
	t := cli.Table{
		Title:   "Materials",
		Headers: []string{"ID", "Name", "Unit", "Category", "Shrink", "Unit cost"},
	}
	for _, m := range materials {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", m.ID),
			m.Name,
			m.BaseUnit,
			m.Category,
			cli.FormatQty(m.ShrinkFactor),
			cli.FormatMoney(cur, m.UnitCost),
		})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}

func runCatalogProducts(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	products, err := st.Products(cmd.Context())
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println(cli.Muted("No products in the catalog."))
		return nil
	}

	t := cli.Table{
		Title:   "Products",
		Headers: []string{"ID", "Code", "Name"},
	}
	for _, p := range products {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", p.ID),
			p.Code,
			p.Name,
		})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}

func runCatalogPresentations(cmd *cobra.Command, args []string) error {
	materialID, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	presentations, err := st.Presentations(cmd.Context(), materialID)
	if err != nil {
		return err
	}
	if len(presentations) == 0 {
		fmt.Println(cli.Muted("No presentations registered for this material."))
		return nil
	}

	cur := currency()
	t := cli.Table{
		Title:   "Presentations",
		Headers: []string{"ID", "Name", "Content", "Price"},
	}
	for i, p := range presentations {
		name := p.Name
		if i == 0 {
			// The first registered presentation is the one planning runs buy.
			name += " (selected)"
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", p.ID),
			name,
			cli.FormatQty(p.Content),
			cli.FormatMoney(cur, p.Price),
		})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}
