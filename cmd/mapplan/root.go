package main

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/spf13/cobra"

	"object-mapper/mapper"
	"object-mapper/options"
	"object-mapper/store"
	"object-mapper/warehouse"
)

// demoTypes are the types the commands can name.
var demoTypes = []reflect.Type{
	reflect.TypeFor[store.Order](),
	reflect.TypeFor[store.OrderItem](),
	reflect.TypeFor[store.Customer](),
	reflect.TypeFor[store.Address](),
	reflect.TypeFor[store.Courier](),
	reflect.TypeFor[store.Product](),
	reflect.TypeFor[warehouse.Order](),
	reflect.TypeFor[warehouse.OrderItem](),
	reflect.TypeFor[warehouse.Customer](),
	reflect.TypeFor[warehouse.Address](),
	reflect.TypeFor[warehouse.Shipment](),
	reflect.TypeFor[warehouse.Parcel](),
	reflect.TypeFor[warehouse.Pickup](),
}

// globalFlags are shared by every command.
type globalFlags struct {
	configFile  string
	identifiers []string
	debug       bool
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "mapplan",
		Short: "Inspect mapping plans between the store and warehouse models",
		Long: `mapplan compiles mapping plans between the store (shop front end) and
warehouse (fulfilment) demo models, prints them, and maps documents with them.

A mapping file (YAML or TOML) can pin member mappings, defaults and ignores:

  mappings:
    - source: store.Order
      target: warehouse.Order
      121:
        Number: OrderNumber
      ignore: [Notes]`,
		Version:       buildVersion().GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "mapping file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().StringSliceVar(&g.identifiers, "identifier", []string{"ProductID"},
		"member names identifying collection elements")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "log plan compilation to stderr")

	cmd.AddCommand(planCmd(g), mapCmd(g), checkCmd(g), typesCmd(g), versionCmd())

	return cmd
}

// newMapper creates a mapper for the demo types and loads the mapping file.
func (g *globalFlags) newMapper(cmd *cobra.Command) (*mapper.Mapper, error) {
	level := slog.LevelWarn
	if g.debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	m := mapper.New(
		options.WithLogger(logger),
		options.WithIdentifierNames(g.identifiers...),
	)
	m.RegisterType(demoTypes...)

	if err := m.RegisterTransform("OrderTotal", orderTotal); err != nil {
		return nil, err
	}

	if g.configFile == "" {
		return m, nil
	}

	diags, err := m.LoadConfigFile(g.configFile)
	if diags != nil {
		for _, d := range diags.All() {
			logger.Warn("mapping file", "diagnostic", d.String())
		}
	}

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", g.configFile, err)
	}

	logger.Debug("mapping file loaded", "file", g.configFile)

	return m, nil
}

// typePair resolves the source and target type names.
func typePair(m *mapper.Mapper, source, target string) (reflect.Type, reflect.Type, error) {
	src := m.ResolveType(source)
	if src == nil {
		return nil, nil, fmt.Errorf("unknown source type %q (see mapplan types)", source)
	}

	tgt := m.ResolveType(target)
	if tgt == nil {
		return nil, nil, fmt.Errorf("unknown target type %q (see mapplan types)", target)
	}

	return src, tgt, nil
}

// orderTotal sums the order lines, for mapping files naming it as a transform.
func orderTotal(o store.Order) int64 {
	var total int64
	for _, item := range o.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}

	return total
}
