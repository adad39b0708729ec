// Command catalogctl browses a catalog file from the terminal using the same
// filter engine as the service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/logging"
	"storefront-catalog/internal/store"
)

type rootOptions struct {
	file     string
	logLevel string
	asJSON   bool
	logger   *zap.Logger
}

type queryOptions struct {
	minPrice     string
	maxPrice     string
	categories   []string
	brands       []string
	rating       string
	availability []string
	sort         string
	page         int
	pageSize     int
	union        bool
	renderDelay  time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Filter, sort and page through a product catalog file",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New("development", ro.logLevel)
			if err != nil {
				return err
			}
			ro.logger = logger
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&ro.file, "file", "f", "testdata/catalog.yaml", "catalog YAML file")
	root.PersistentFlags().StringVar(&ro.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&ro.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(newQueryCmd(ro), newFacetsCmd(ro), newProductCmd(ro))
	return root
}

func loadProducts(ctx context.Context, ro *rootOptions) ([]domain.Product, error) {
	products, err := store.NewFileCatalog(ro.file).LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	ro.logger.Debug("catalog loaded", zap.String("file", ro.file), zap.Int("products", len(products)))
	return products, nil
}

func newQueryCmd(ro *rootOptions) *cobra.Command {
	qo := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print one page of products matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, ro, qo)
		},
	}
	f := cmd.Flags()
	f.StringVar(&qo.minPrice, "min-price", "", "lowest base price to include")
	f.StringVar(&qo.maxPrice, "max-price", "", "highest base price to include")
	f.StringSliceVar(&qo.categories, "category", nil, "categories to include (repeatable)")
	f.StringSliceVar(&qo.brands, "brand", nil, "brands to include (repeatable)")
	f.StringVar(&qo.rating, "rating", "", "minimum star rating")
	f.StringSliceVar(&qo.availability, "availability", nil, "in-stock and/or out-of-stock")
	f.StringVar(&qo.sort, "sort", string(domain.SortFeatured), "sort key: "+joinSortKeys())
	f.IntVar(&qo.page, "page", 1, "page number")
	f.IntVar(&qo.pageSize, "page-size", catalog.DefaultPageSize, "products per page")
	f.BoolVar(&qo.union, "union", false, "match products in any selected availability instead of all")
	f.DurationVar(&qo.renderDelay, "render-delay", 0, "delay before the page is rendered")
	return cmd
}

func runQuery(cmd *cobra.Command, ro *rootOptions, qo *queryOptions) error {
	products, err := loadProducts(cmd.Context(), ro)
	if err != nil {
		return err
	}

	values := url.Values{
		"min_price":    {qo.minPrice},
		"max_price":    {qo.maxPrice},
		"category":     qo.categories,
		"brand":        qo.brands,
		"rating":       {qo.rating},
		"availability": qo.availability,
		"sort":         {qo.sort},
	}
	opts := catalog.Options{
		PageSize:    qo.pageSize,
		RenderDelay: qo.renderDelay,
		Logger:      ro.logger,
	}
	if qo.union {
		opts.AvailabilityMode = catalog.AvailabilityUnion
	}
	snap := catalog.Snapshot{
		Filters:  catalog.FilterStateFromValues(values, catalog.DefaultPriceCeiling),
		Page:     qo.page,
		PageSize: qo.pageSize,
	}

	out := cmd.OutOrStdout()
	var renderErr error
	engine := catalog.Restore(products, snap, opts, catalog.RenderFunc(func(v catalog.View) {
		if ro.asJSON {
			renderErr = writeJSON(out, v)
			return
		}
		renderErr = writeView(out, v)
	}))
	engine.Refresh()
	engine.Wait()
	return renderErr
}

func newFacetsCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "Print the category, brand, price and stock options of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := loadProducts(cmd.Context(), ro)
			if err != nil {
				return err
			}
			facets := catalog.BuildFacets(products)
			out := cmd.OutOrStdout()
			if ro.asJSON {
				return writeJSON(out, facets)
			}

			fmt.Fprintf(out, "Price: $%s - $%s\n", formatMoney(facets.PriceRange.Min), formatMoney(facets.PriceRange.Max))
			fmt.Fprintf(out, "In stock: %d  Out of stock: %d\n", facets.Availability.InStock, facets.Availability.OutOfStock)
			for _, group := range []struct {
				title   string
				options []catalog.FacetOption
			}{{"Categories", facets.Categories}, {"Brands", facets.Brands}} {
				fmt.Fprintf(out, "%s:\n", group.title)
				for _, o := range group.options {
					fmt.Fprintf(out, "  %-20s %d\n", o.Label, o.Count)
				}
			}
			return nil
		},
	}
}

func newProductCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Print one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			products, err := loadProducts(cmd.Context(), ro)
			if err != nil {
				return err
			}
			p, ok := catalog.New(products, catalog.Options{}, nil).ProductByID(id)
			if !ok {
				return fmt.Errorf("product %d not found", id)
			}
			out := cmd.OutOrStdout()
			if ro.asJSON {
				return writeJSON(out, p)
			}

			fmt.Fprintf(out, "%s (%s, %s)\n", p.Name, p.Brand, p.Category)
			if p.HasDiscount() {
				fmt.Fprintf(out, "Price: $%s (was $%s, -%d%%)\n", formatMoney(p.EffectivePrice()), formatMoney(p.Price), p.DiscountPercent())
			} else {
				fmt.Fprintf(out, "Price: $%s\n", formatMoney(p.Price))
			}
			fmt.Fprintf(out, "Rating: %s %.1f (%d reviews)\n", starString(domain.Stars(p.Rating)), p.Rating, p.ReviewCount)
			if p.InStock() {
				fmt.Fprintf(out, "In stock: %d\n", p.Stock)
			} else {
				fmt.Fprintln(out, "Out of stock")
			}
			if p.Description != "" {
				fmt.Fprintf(out, "\n%s\n", p.Description)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeView(w io.Writer, v catalog.View) error {
	p := v.Pagination
	if len(v.Items) == 0 {
		fmt.Fprintf(w, "No products found (%d match, page %d of %d)\n", p.TotalItems, p.Page, p.TotalPages)
	} else {
		first := (p.Page-1)*p.PageSize + 1
		fmt.Fprintf(w, "Showing %d-%d of %d products (page %d of %d)\n",
			first, first+len(v.Items)-1, p.TotalItems, p.Page, p.TotalPages)
	}
	for _, chip := range v.ActiveFilters {
		fmt.Fprintf(w, "[%s: %s] ", chip.Type, chip.Label)
	}
	if len(v.ActiveFilters) > 0 {
		fmt.Fprintln(w)
	}
	if len(v.Items) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tBRAND\tPRICE\tRATING\tSTOCK")
	for _, item := range v.Items {
		price := "$" + formatMoney(item.EffectivePrice())
		if item.HasDiscount() {
			price += fmt.Sprintf(" (-%d%%)", item.DiscountPercent())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			item.ID, item.Name, item.Category, item.Brand, price, starString(domain.Stars(item.Rating)), item.Stock)
	}
	return tw.Flush()
}

func starString(s domain.StarRating) string {
	return strings.Repeat("★", s.Full) + strings.Repeat("½", s.Half) + strings.Repeat("☆", s.Empty)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func joinSortKeys() string {
	keys := make([]string, len(domain.SortKeys))
	for i, k := range domain.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}
