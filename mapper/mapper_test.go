package mapper_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"object-mapper/mapper"
	"object-mapper/options"
	"object-mapper/store"
	"object-mapper/warehouse"
)

func configureOrders(m *mapper.Mapper) error {
	orders := mapper.Configure[store.Order, warehouse.Order](m).
		MapFrom("Number").To("OrderNumber").
		Map(func(o store.Order) int64 { return o.TotalCents }).To("TotalAmount").
		MapValue("USD").To("Currency")

	addresses := mapper.Configure[store.Address, warehouse.Address](m).
		MapFrom("Zip").To("PostalCode")

	return errors.Join(orders.Err(), addresses.Err())
}

var _ = Describe("Mapper", func() {
	var m *mapper.Mapper

	BeforeEach(func() {
		m = mapper.New(options.WithIdentifierNames("ProductID"))
		Expect(configureOrders(m)).To(Succeed())
	})

	Describe("Map", func() {
		It("creates a new object graph", func() {
			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())

			Expect(out.ID).To(Equal(uint(7)))
			Expect(out.OrderNumber).To(Equal("SO-7"))
			Expect(out.Status).To(Equal("PAID"))
			Expect(out.TotalAmount).To(Equal(int64(1250)))
			Expect(out.Currency).To(Equal("USD"))
			Expect(out.Tags).To(Equal([]string{"gift"}))
			Expect(out.OrderedAt).To(Equal(sampleOrder().OrderedAt))
		})

		It("maps nested objects and collections", func() {
			out, err := mapper.Map[*warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())

			Expect(out.Customer.FirstName).To(Equal("Ann"))
			Expect(out.Customer.Phone).To(Equal("555-0100"))
			Expect(out.Customer.Address).To(Equal(warehouse.Address{
				Street: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US",
			}))

			Expect(out.Items).To(HaveLen(2))
			Expect(out.Items[1].ProductID).To(Equal(uint(2)))
			Expect(out.Items[1].Name).To(Equal("ink"))
			Expect(out.Items[1].UnitPrice).To(Equal(int64(750)))
		})

		It("does not share collections with the source", func() {
			src := sampleOrder()

			out, err := mapper.Map[warehouse.Order](m, src)
			Expect(err).NotTo(HaveOccurred())

			src.Tags[0] = "changed"
			Expect(out.Tags).To(Equal([]string{"gift"}))
		})

		It("returns the zero value for a nil source", func() {
			out, err := mapper.Map[*warehouse.Order](m, (*store.Order)(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeNil())
		})

		It("preserves reference cycles", func() {
			root := &category{Name: "root"}
			child := &category{Name: "child", Parent: root}
			root.Children = []*category{child, child}

			out, err := mapper.Map[*categoryDTO](m, root)
			Expect(err).NotTo(HaveOccurred())

			Expect(out.Children).To(HaveLen(2))
			Expect(out.Children[0]).To(BeIdenticalTo(out.Children[1]))
			Expect(out.Children[0].Parent).To(BeIdenticalTo(out))
		})

		It("stops when the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := mapper.MapContext[warehouse.Order](ctx, m, mapper.CreateNew, sampleOrder(), nil)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("MapOnto", func() {
		It("merges into the existing target", func() {
			existing := &warehouse.Order{
				Notes: "fragile",
				Items: []warehouse.OrderItem{{ProductID: 1, Picked: true}},
				Tags:  []string{"vip"},
			}

			out, err := mapper.MapOnto(m, sampleOrder(), existing)
			Expect(err).NotTo(HaveOccurred())

			Expect(out).To(BeIdenticalTo(existing))
			Expect(out.Notes).To(Equal("fragile"))
			Expect(out.Tags).To(Equal([]string{"vip", "gift"}))

			Expect(out.Items).To(HaveLen(2))
			Expect(out.Items[0].Picked).To(BeTrue(), "matched items are updated in place")
			Expect(out.Items[0].Name).To(Equal("pen"))
			Expect(out.Items[1].Name).To(Equal("ink"))
		})

		It("keeps members whose source value is missing", func() {
			src := sampleOrder()
			src.Customer.Phone = nil

			existing := &warehouse.Order{Customer: warehouse.Customer{Phone: "555-0199"}}

			out, err := mapper.MapOnto(m, src, existing)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Customer.Phone).To(Equal("555-0199"))
			Expect(out.Customer.FirstName).To(Equal("Ann"))
		})
	})

	Describe("MapOver", func() {
		It("makes collections match the source", func() {
			existing := &warehouse.Order{
				Items: []warehouse.OrderItem{{ProductID: 9}, {ProductID: 1, Name: "old"}},
				Tags:  []string{"vip"},
			}

			src := sampleOrder()
			src.Items = src.Items[:1]

			out, err := mapper.MapOver(m, src, existing)
			Expect(err).NotTo(HaveOccurred())

			Expect(out).To(BeIdenticalTo(existing))
			Expect(out.Tags).To(Equal([]string{"gift"}))
			Expect(out.Items).To(HaveLen(1))
			Expect(out.Items[0].ProductID).To(Equal(uint(1)))
			Expect(out.Items[0].Name).To(Equal("pen"))
		})

		It("clears members whose source value is missing", func() {
			src := sampleOrder()
			src.Customer.Phone = nil

			existing := &warehouse.Order{Customer: warehouse.Customer{Phone: "555-0199"}}

			out, err := mapper.MapOver(m, src, existing)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Customer.Phone).To(BeEmpty())
		})
	})

	Describe("interface targets", func() {
		It("skips members whose interface type cannot be constructed", func() {
			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Shipment).To(BeNil())
		})

		It("reports a root interface target that cannot be constructed", func() {
			_, err := mapper.Map[warehouse.Shipment](m, &store.Courier{Service: "ups"})
			Expect(err).To(MatchError(mapper.ErrTargetNotConstructable))
		})

		It("creates the derived type", func() {
			Expect(mapper.Configure[store.Courier, warehouse.Shipment](m).
				DeriveAs(reflect.TypeFor[*warehouse.Parcel]()).
				Err()).To(Succeed())

			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())

			Expect(out.Shipment).To(Equal(&warehouse.Parcel{Service: "ups", Tracking: "1Z"}))
			Expect(out.Shipment.Carrier()).To(Equal("ups"))
		})
	})

	Describe("Configure", func() {
		It("reports conflicting data sources", func() {
			err := mapper.Configure[store.Order, warehouse.Order](m).
				MapValue("EUR").To("Currency").
				Err()

			Expect(err).To(MatchError(mapper.ErrConfigurationConflict))
		})

		It("keeps data sources of other rule sets apart", func() {
			fresh := mapper.New()
			orders := mapper.Configure[store.Order, warehouse.Order](fresh)

			Expect(orders.ForRuleSets(mapper.Merge).MapValue("EUR").To("Currency").Err()).To(Succeed())
			Expect(orders.ForRuleSets(mapper.Overwrite).MapValue("GBP").To("Currency").Err()).To(Succeed())

			created, err := mapper.Map[warehouse.Order](fresh, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Currency).To(BeEmpty())

			merged, err := mapper.MapOnto(fresh, sampleOrder(), &warehouse.Order{})
			Expect(err).NotTo(HaveOccurred())
			Expect(merged.Currency).To(Equal("EUR"))

			replaced, err := mapper.MapOver(fresh, sampleOrder(), &warehouse.Order{Currency: "JPY"})
			Expect(err).NotTo(HaveOccurred())
			Expect(replaced.Currency).To(Equal("GBP"))
		})

		It("ignores members", func() {
			Expect(mapper.Configure[store.Order, warehouse.Order](m).Ignore("Tags").Err()).To(Succeed())

			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Tags).To(BeEmpty())
		})

		It("ignores members conditionally", func() {
			Expect(mapper.Configure[store.Order, warehouse.Order](m).
				IgnoreIf("Tags", func(o store.Order) bool { return o.Status == store.StatusCancelled }).
				Err()).To(Succeed())

			src := sampleOrder()

			out, err := mapper.Map[warehouse.Order](m, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Tags).To(Equal([]string{"gift"}))

			src.Status = store.StatusCancelled

			out, err = mapper.Map[warehouse.Order](m, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Tags).To(BeEmpty())
		})

		It("uses conditional data sources and defaults", func() {
			Expect(mapper.Configure[store.Order, warehouse.Order](m).
				MapValue("on hold").If(func(o store.Order) bool { return o.Status == store.StatusPending }).To("Notes").
				Err()).To(Succeed())

			Expect(mapper.Configure[store.Customer, warehouse.Customer](m).
				MapFrom("Phone").Or("n/a").To("Phone").
				Err()).To(Succeed())

			src := sampleOrder()
			src.Status = store.StatusPending
			src.Customer.Phone = nil

			out, err := mapper.Map[warehouse.Order](m, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Notes).To(Equal("on hold"))
			Expect(out.Customer.Phone).To(Equal("n/a"))
		})

		It("creates targets with factories", func() {
			Expect(mapper.Configure[store.OrderItem, warehouse.OrderItem](m).
				CreateUsing(func(i store.OrderItem) *warehouse.OrderItem {
					return &warehouse.OrderItem{TotalPrice: i.UnitPrice * int64(i.Quantity)}
				}).
				Err()).To(Succeed())

			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Items[0].TotalPrice).To(Equal(int64(500)))
			Expect(out.Items[0].Name).To(Equal("pen"), "factory results are populated")
		})

		It("runs callbacks in order", func() {
			var (
				mu    sync.Mutex
				calls []string
			)

			record := func(s string) func() {
				return func() {
					mu.Lock()
					defer mu.Unlock()

					calls = append(calls, s)
				}
			}

			Expect(mapper.Configure[store.Order, warehouse.Order](m).
				Before(mapper.ObjectCreation, "", record("before creation")).
				After(mapper.ObjectCreation, "", record("after creation")).
				Before(mapper.MemberPopulation, "Status", record("before status")).
				After(mapper.MemberPopulation, "Status", func(_ store.Order, o *warehouse.Order) {
					record("after status " + o.Status)()
				}).
				Err()).To(Succeed())

			_, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())

			Expect(calls).To(Equal([]string{"before creation", "after creation", "before status", "after status PAID"}))
		})

		It("returns callback errors unchanged", func() {
			errStop := errors.New("stop")

			Expect(mapper.Configure[store.Order, warehouse.Order](m).
				Before(mapper.ObjectCreation, "", func() error { return errStop }).
				Err()).To(Succeed())

			_, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).To(BeIdenticalTo(errStop))
		})

		It("rejects functions that are not callbacks", func() {
			err := mapper.Configure[store.Order, warehouse.Order](m).
				After(mapper.ObjectCreation, "", func() int { return 1 }).
				Err()

			Expect(err).To(MatchError(mapper.ErrInvalidConfiguration))
		})
	})

	Describe("plans", func() {
		It("compiles each plan once and recompiles after Reset", func() {
			_, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())

			first := m.Stats()
			Expect(first.Plans).To(BeNumerically(">", 0))

			_, err = mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Stats()).To(Equal(first))

			m.Reset()
			Expect(m.Stats().Plans).To(BeZero())

			_, err = mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Stats().Compilations).To(BeNumerically(">", first.Compilations))
		})

		It("describes a plan", func() {
			Expect(mapper.Configure[store.Order, warehouse.Order](m).Ignore("Notes").Err()).To(Succeed())

			text, err := mapper.PlanFor[store.Order, warehouse.Order](m, mapper.CreateNew)
			Expect(err).NotTo(HaveOccurred())

			Expect(text).To(ContainSubstring("store.Order -> warehouse.Order (new)"))
			Expect(text).To(ContainSubstring("// Notes is ignored"))
			Expect(text).To(ContainSubstring("// No data source for TotalPrice"))
		})

		It("lists unmapped members", func() {
			d, err := m.Describe(context.Background(), mapper.Merge,
				reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Order]())
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Unmapped()).To(ContainElements("warehouse.Order.Notes", "warehouse.OrderItem.Picked"))
			Expect(d.Unmapped()).NotTo(ContainElement("warehouse.Order.Currency"))
		})
	})

	Describe("LoadConfigFile", func() {
		var dir string

		BeforeEach(func() {
			m = mapper.New(options.WithIdentifierNames("ProductID"))
			m.RegisterType(
				reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Order](),
				reflect.TypeFor[store.Courier](), reflect.TypeFor[warehouse.Shipment](),
				reflect.TypeFor[warehouse.Parcel](),
			)
			Expect(m.RegisterTransform("OrderTotal", func(o store.Order) int64 { return o.TotalCents })).To(Succeed())

			dir = GinkgoT().TempDir()
		})

		It("registers the rules of a YAML file", func() {
			path := filepath.Join(dir, "mapping.yaml")
			Expect(os.WriteFile(path, []byte(`
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      Number: OrderNumber
    fields:
      - target: TotalAmount
        transform: OrderTotal
      - target: Currency
        default: EUR
    ignore: [Notes]
  - source: store.Courier
    target: warehouse.Shipment
    derive:
      - declared: warehouse.Shipment
        derived: warehouse.Parcel
`), 0o644)).To(Succeed())

			_, err := m.LoadConfigFile(path)
			Expect(err).NotTo(HaveOccurred())

			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())

			Expect(out.OrderNumber).To(Equal("SO-7"))
			Expect(out.TotalAmount).To(Equal(int64(1250)))
			Expect(out.Currency).To(Equal("EUR"))
			Expect(out.Shipment).To(BeAssignableToTypeOf(&warehouse.Parcel{}))
		})

		It("registers the rules of a TOML file", func() {
			path := filepath.Join(dir, "mapping.toml")
			Expect(os.WriteFile(path, []byte(`
[[mappings]]
source = "store.Order"
target = "warehouse.Order"
rule_sets = "new"

[[mappings.fields]]
target = "OrderNumber"
source = "Number"
`), 0o644)).To(Succeed())

			_, err := m.LoadConfigFile(path)
			Expect(err).NotTo(HaveOccurred())

			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(out.OrderNumber).To(Equal("SO-7"))

			merged, err := mapper.MapOnto(m, sampleOrder(), &warehouse.Order{})
			Expect(err).NotTo(HaveOccurred())
			Expect(merged.OrderNumber).To(BeEmpty(), "the mapping applies to new objects only")
		})

		It("checks a file without registering it", func() {
			path := filepath.Join(dir, "mapping.yaml")
			Expect(os.WriteFile(path, []byte(`
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      Number: OrderNumber
`), 0o644)).To(Succeed())

			diags, err := m.CheckConfigFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(diags.IsValid()).To(BeTrue())

			out, err := mapper.Map[warehouse.Order](m, sampleOrder())
			Expect(err).NotTo(HaveOccurred())
			Expect(out.OrderNumber).To(BeEmpty())

			diags = m.CheckConfig(&mapper.ConfigFile{Mappings: []mapper.TypeMapping{{Source: "store.Order", Target: "warehouse.Ordr"}}})
			Expect(diags.HasErrors()).To(BeTrue())
		})

		It("rejects files with unknown members", func() {
			path := filepath.Join(dir, "broken.yaml")
			Expect(os.WriteFile(path, []byte(`
mappings:
  - source: store.Order
    target: warehouse.Order
    ignore: [Nope]
`), 0o644)).To(Succeed())

			diags, err := m.LoadConfigFile(path)
			Expect(err).To(MatchError(mapper.ErrInvalidConfiguration))
			Expect(diags.HasErrors()).To(BeTrue())
		})
	})
})
