package service

import (
	"context"
	"fmt"
	"time"

	"github.com/motodesk/motodesk/internal/clock"
	"github.com/motodesk/motodesk/internal/config"
	contractordomain "github.com/motodesk/motodesk/internal/contractor/domain"
	"github.com/motodesk/motodesk/internal/invoicing/adapters"
	"github.com/motodesk/motodesk/internal/invoicing/domain"
	orderdomain "github.com/motodesk/motodesk/internal/order/domain"
	"github.com/motodesk/motodesk/internal/order/exclusion"
	productdomain "github.com/motodesk/motodesk/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	log *zap.Logger

	orders      orderdomain.Source
	exclusions  exclusion.Registry
	products    productdomain.Catalog
	contractors contractordomain.Directory
	providers   *adapters.Registry
	clock       clock.Clock
	cfg         config.InvoicingConfig
}

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	Orders      orderdomain.Source
	Exclusions  exclusion.Registry
	Products    productdomain.Catalog
	Contractors contractordomain.Directory
	Providers   *adapters.Registry
	Clock       clock.Clock
	Config      config.Config
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log: p.Log.Named("invoicing.service"),

		orders:      p.Orders,
		exclusions:  p.Exclusions,
		products:    p.Products,
		contractors: p.Contractors,
		providers:   p.Providers,
		clock:       p.Clock,
		cfg:         p.Config.Invoicing,
	}
}

func (s *Service) CreateBulkInvoices(ctx context.Context, dateFrom, dateTo time.Time) ([]string, error) {
	var (
		orders   []orderdomain.Order
		excluded []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.OrdersByDateRange(gctx, dateFrom, dateTo)
		return err
	})
	g.Go(func() error {
		var err error
		excluded, err = s.exclusions.ExcludedOrderIDs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	remaining := filterExcluded(orders, excluded)
	if len(remaining) == 0 {
		s.log.Info("no invoiceable orders in range",
			zap.Time("date_from", dateFrom),
			zap.Time("date_to", dateTo),
			zap.Int("fetched", len(orders)),
			zap.Int("excluded", len(orders)-len(remaining)))
		return nil, domain.ErrNoValidOrders
	}

	groups := groupByNIP(remaining)

	productsByNumber, contractorsByNIP, err := s.fetchReferenceData(ctx, remaining, groups.keys)
	if err != nil {
		return nil, err
	}

	adapter, err := s.providers.Resolve(s.cfg.Provider)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.clock.Now(ctx))
	paymentDue := today.AddDate(0, 0, s.paymentDueDays())

	var invoiceIDs []string
	for _, nip := range groups.keys {
		contractor, ok := contractorsByNIP[nip]
		if !ok {
			s.log.Warn("skipping group: no billing profile for NIP",
				zap.String("nip", nip),
				zap.Int("orders", len(groups.byNIP[nip])))
			continue
		}

		items := buildItems(groups.byNIP[nip], productsByNumber, s.log)
		if len(items) == 0 {
			s.log.Warn("skipping group: no billable items", zap.String("nip", nip))
			continue
		}

		invoice := &domain.Invoice{
			IssueDate:     today,
			SaleDate:      today,
			PaymentDue:    paymentDue,
			PlaceOfIssue:  s.cfg.PlaceOfIssue,
			PaymentMethod: s.cfg.PaymentMethod,
			Contractor:    contractor,
			Items:         items,
		}

		// Submission is sequential per contractor: provider rate limits
		// stay bounded and a failure never leaves submitted groups in an
		// ambiguous state.
		id, err := adapter.Submit(ctx, invoice)
		if err != nil {
			s.log.Error("bulk submission aborted",
				zap.String("nip", nip),
				zap.String("provider", adapter.Name()),
				zap.Int("submitted_before_failure", len(invoiceIDs)),
				zap.Error(err))
			return nil, err
		}
		s.log.Info("invoice submitted",
			zap.String("nip", nip),
			zap.String("invoice_id", id),
			zap.Int("items", len(items)))
		invoiceIDs = append(invoiceIDs, id)
	}

	return invoiceIDs, nil
}

func (s *Service) CreateInvoice(ctx context.Context, input domain.CreateInvoiceInput) (string, error) {
	var (
		orders     []orderdomain.Order
		contractor *contractordomain.Contractor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.OrdersByDates(gctx, input.Dates)
		return err
	})
	g.Go(func() error {
		var err error
		contractor, err = s.contractors.ByID(gctx, input.ContractorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	// The caller asserted a specific contractor, so a missing profile is
	// an error here, unlike the bulk path.
	if contractor == nil {
		return "", domain.ErrContractorNotFound
	}

	selected := filterToIDs(orders, input.OrderIDs)
	if len(selected) == 0 {
		return "", domain.ErrNoOrdersFound
	}

	productsByNumber, err := s.resolveProducts(ctx, selected)
	if err != nil {
		return "", err
	}

	items := buildItems(selected, productsByNumber, s.log)

	invoice := &domain.Invoice{
		Number:        input.Number,
		IssueDate:     dateOnly(input.IssueDate),
		SaleDate:      dateOnly(input.SaleDate),
		PaymentDue:    dateOnly(input.IssueDate).AddDate(0, 0, s.paymentDueDays()),
		PlaceOfIssue:  s.cfg.PlaceOfIssue,
		PaymentMethod: s.cfg.PaymentMethod,
		Contractor:    *contractor,
		Items:         items,
	}

	adapter, err := s.providers.Resolve(s.cfg.Provider)
	if err != nil {
		return "", err
	}
	id, err := adapter.Submit(ctx, invoice)
	if err != nil {
		return "", err
	}
	s.log.Info("invoice submitted",
		zap.String("nip", contractor.NIP),
		zap.String("invoice_id", id),
		zap.Int("items", len(items)))
	return id, nil
}

// fetchReferenceData resolves products and contractors in one bulk call
// each, issued concurrently.
func (s *Service) fetchReferenceData(
	ctx context.Context,
	orders []orderdomain.Order,
	nips []string,
) (map[string]productdomain.Product, map[string]contractordomain.Contractor, error) {
	var (
		productsByNumber map[string]productdomain.Product
		contractorsByNIP map[string]contractordomain.Contractor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		productsByNumber, err = s.resolveProducts(gctx, orders)
		return err
	})
	g.Go(func() error {
		contractors, err := s.contractors.ByNIPs(gctx, nips)
		if err != nil {
			return err
		}
		contractorsByNIP = make(map[string]contractordomain.Contractor, len(contractors))
		for _, c := range contractors {
			contractorsByNIP[c.NIP] = c
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return productsByNumber, contractorsByNIP, nil
}

func (s *Service) resolveProducts(ctx context.Context, orders []orderdomain.Order) (map[string]productdomain.Product, error) {
	numbers := distinctPartNumbers(orders)
	products, err := s.products.ByNumbers(ctx, numbers)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]productdomain.Product, len(products))
	for _, p := range products {
		byNumber[p.Number] = p
	}
	return byNumber, nil
}

func (s *Service) paymentDueDays() int {
	if s.cfg.PaymentDueDays > 0 {
		return s.cfg.PaymentDueDays
	}
	return 14
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func filterExcluded(orders []orderdomain.Order, excludedIDs []string) []orderdomain.Order {
	excluded := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}
	var out []orderdomain.Order
	for _, o := range orders {
		if _, skip := excluded[o.ID]; skip {
			continue
		}
		out = append(out, o)
	}
	return out
}

func filterToIDs(orders []orderdomain.Order, ids []string) []orderdomain.Order {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []orderdomain.Order
	for _, o := range orders {
		if _, ok := wanted[o.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}

type orderGroups struct {
	// keys preserves first-seen order so submission order is
	// deterministic.
	keys  []string
	byNIP map[string][]orderdomain.Order
}

// groupByNIP groups orders by the embedded contractor number. Exact
// string match, no normalization: the source pre-normalizes NIPs.
func groupByNIP(orders []orderdomain.Order) orderGroups {
	g := orderGroups{byNIP: make(map[string][]orderdomain.Order)}
	for _, o := range orders {
		nip := o.Contractor.Number
		if _, seen := g.byNIP[nip]; !seen {
			g.keys = append(g.keys, nip)
		}
		g.byNIP[nip] = append(g.byNIP[nip], o)
	}
	return g
}

func distinctPartNumbers(orders []orderdomain.Order) []string {
	seen := make(map[string]struct{})
	var numbers []string
	for _, o := range orders {
		for _, item := range o.Items {
			if _, ok := seen[item.PartNumber]; ok {
				continue
			}
			seen[item.PartNumber] = struct{}{}
			numbers = append(numbers, item.PartNumber)
		}
	}
	return numbers
}

// buildItems turns order items into invoice lines. Lines with a
// non-positive total are free or credit lines and are never billed
// through this path. A part number missing from the catalog degrades to
// the raw number as the display name.
func buildItems(orders []orderdomain.Order, productsByNumber map[string]productdomain.Product, log *zap.Logger) []domain.InvoiceItem {
	var items []domain.InvoiceItem
	for _, o := range orders {
		for _, item := range o.Items {
			if !item.Total().IsPositive() {
				log.Debug("dropping non-positive line",
					zap.String("order_id", o.ID),
					zap.String("part_number", item.PartNumber))
				continue
			}
			items = append(items, domain.InvoiceItem{
				Name:      itemName(item.PartNumber, productsByNumber),
				Quantity:  item.Quantity,
				UnitPrice: domain.RoundMoney(item.UnitPrice),
				VatRate:   item.VatRate,
				VatType:   domain.VatTypePercentage,
			})
		}
	}
	return items
}

func itemName(partNumber string, productsByNumber map[string]productdomain.Product) string {
	if p, ok := productsByNumber[partNumber]; ok {
		return fmt.Sprintf("%s (%s)", p.Name, partNumber)
	}
	return partNumber
}
