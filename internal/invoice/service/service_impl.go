package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicely/internal/clock"
	"github.com/smallbiznis/invoicely/internal/config"
	"github.com/smallbiznis/invoicely/internal/invoice/domain"
	"github.com/smallbiznis/invoicely/internal/invoice/sequence"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
	"github.com/smallbiznis/invoicely/internal/lock"
	"github.com/smallbiznis/invoicely/internal/observability/metrics"
	organizationdomain "github.com/smallbiznis/invoicely/internal/organization/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	"github.com/smallbiznis/invoicely/pkg/db"
	"github.com/smallbiznis/invoicely/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultMaxAttempts = 3

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Config           config.Config
	Repo             domain.Repository
	ProfileRepo      profiledomain.Repository
	OrganizationRepo organizationdomain.Repository
	Sequence         sequence.Generator

	Locker      *lock.Locker       `optional:"true"`
	Metrics     *metrics.Metrics   `optional:"true"`
	HTTPMetrics *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	repo        domain.Repository
	profileRepo profiledomain.Repository
	orgRepo     organizationdomain.Repository
	sequence    sequence.Generator

	locker      *lock.Locker
	metrics     *metrics.Metrics
	httpMetrics *telemetry.Metrics

	prefix          string
	granularity     sequence.Granularity
	maxAttempts     int
	defaultCurrency string
	formNumber      string
	revision        string
}

func New(p Params) (domain.Service, error) {
	granularity, err := sequence.ParseGranularity(p.Config.Invoice.NumberPeriod)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSpace(p.Config.Invoice.Prefix)
	if prefix == "" {
		prefix = "INV"
	}
	maxAttempts := p.Config.Invoice.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	currency := strings.ToUpper(strings.TrimSpace(p.Config.Invoice.DefaultCurrency))
	if currency == "" {
		currency = "CAD"
	}

	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,

		repo:        p.Repo,
		profileRepo: p.ProfileRepo,
		orgRepo:     p.OrganizationRepo,
		sequence:    p.Sequence,

		locker:      p.Locker,
		metrics:     p.Metrics,
		httpMetrics: p.HTTPMetrics,

		prefix:          prefix,
		granularity:     granularity,
		maxAttempts:     maxAttempts,
		defaultCurrency: currency,
		formNumber:      p.Config.PDF.FormNumber,
		revision:        p.Config.PDF.Revision,
	}, nil
}

// createDraft is a validated create request.
type createDraft struct {
	req   domain.CreateInvoiceRequest
	items []domain.ItemInput
	taxes []domain.TaxInput
}

func (s *Service) Create(ctx context.Context, profileID snowflake.ID, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	if profileID == 0 {
		return domain.Invoice{}, profiledomain.ErrInvalidID
	}
	draft, err := s.validateCreate(req)
	if err != nil {
		return domain.Invoice{}, err
	}

	var created domain.Invoice
	err = s.locker.WithLock(ctx, lockKey(profileID), func(ctx context.Context) error {
		var err error
		created, err = s.createWithRetry(ctx, profileID, draft)
		return err
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return domain.Invoice{}, domain.ErrProfileBusy
	}
	if err != nil {
		if !ledgererr.IsValidation(err) && !ledgererr.IsNotFound(err) {
			s.log.Error("create invoice failed",
				zap.String("profile_id", profileID.String()),
				zap.Error(err),
			)
		}
		return domain.Invoice{}, ledgererr.Persistence("create invoice", err)
	}

	s.metrics.RecordInvoiceCreated(ctx, string(created.Status), created.Currency)
	s.httpMetrics.ObserveInvoiceAmount(created.Currency, created.Total.InexactFloat64())
	s.log.Info("invoice created",
		zap.String("profile_id", profileID.String()),
		zap.String("invoice_id", created.ID.String()),
		zap.String("invoice_number", created.InvoiceNumber),
	)
	return created, nil
}

func (s *Service) createWithRetry(ctx context.Context, profileID snowflake.ID, draft createDraft) (domain.Invoice, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		invoice, err := s.createOnce(ctx, profileID, draft)
		if err == nil {
			return invoice, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, err
		}
		s.metrics.RecordNumberCollision(ctx, attempt)
		s.log.Warn("invoice number collision, retrying",
			zap.String("profile_id", profileID.String()),
			zap.Int("attempt", attempt),
		)
	}
	return domain.Invoice{}, domain.ErrDuplicateInvoiceNumber
}

func (s *Service) createOnce(ctx context.Context, profileID snowflake.ID, draft createDraft) (domain.Invoice, error) {
	var invoice domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.profileRepo.FindByID(ctx, tx, profileID)
		if err != nil {
			return err
		}
		if profile == nil {
			return profiledomain.ErrNotFound
		}

		org, err := s.orgRepo.FindByID(ctx, tx, profileID, draft.req.OrganizationID)
		if err != nil {
			return err
		}
		if org == nil {
			return organizationdomain.ErrNotFound
		}

		now := s.clock.Now()
		invoice = domain.Invoice{
			ID:                    s.genID.Generate(),
			ProfileID:             profileID,
			OrganizationID:        org.ID,
			InvoiceName:           strings.TrimSpace(draft.req.InvoiceName),
			ContactPerson:         strings.TrimSpace(draft.req.ContactPerson),
			Status:                draft.req.Status,
			Currency:              draft.req.Currency,
			ExchangeRate:          *draft.req.ExchangeRate,
			DueDate:               draft.req.DueDate,
			InvoiceSubmissionDate: draft.req.InvoiceSubmissionDate,
			PDFPath:               strings.TrimSpace(draft.req.PDFPath),
			Metadata:              datatypes.JSONMap(draft.req.Metadata),
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		invoice.Items = s.buildItems(invoice.ID, draft.items, org.HourlyRate, now)
		invoice.Subtotal = domain.Subtotal(invoice.Items)
		invoice.Taxes = s.buildTaxes(invoice.ID, draft.taxes, invoice.Subtotal, now)
		invoice.Total = domain.Total(invoice.Subtotal, invoice.Taxes)

		number, err := s.sequence.Next(ctx, tx, s.prefix, sequence.PeriodKey(now, s.granularity))
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		if err := s.repo.InsertInvoice(ctx, tx, &invoice); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, invoice.Items); err != nil {
			return err
		}
		return s.repo.InsertTaxes(ctx, tx, invoice.Taxes)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, profileID, invoiceID snowflake.ID, patch domain.InvoicePatch) (domain.Invoice, error) {
	if profileID == 0 {
		return domain.Invoice{}, profiledomain.ErrInvalidID
	}
	if invoiceID == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}
	if patch.OrganizationID != nil && *patch.OrganizationID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOrganization
	}
	if err := validatePatch(patch); err != nil {
		return domain.Invoice{}, err
	}

	var items []domain.ItemInput
	if patch.Items != nil {
		normalized, err := normalizeItems(*patch.Items, s.today())
		if err != nil {
			return domain.Invoice{}, err
		}
		items = normalized
	}
	var taxes []domain.TaxInput
	if patch.Taxes != nil {
		normalized, err := normalizeTaxes(*patch.Taxes)
		if err != nil {
			return domain.Invoice{}, err
		}
		taxes = normalized
	}

	var updated domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, profileID, invoiceID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		orgID := existing.OrganizationID
		if patch.OrganizationID != nil {
			orgID = *patch.OrganizationID
		}
		org, err := s.orgRepo.FindByID(ctx, tx, profileID, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return organizationdomain.ErrNotFound
		}
		existing.OrganizationID = org.ID

		patch.Apply(existing)
		ensureMetadata(existing)

		now := s.clock.Now()
		existing.UpdatedAt = now

		if patch.Items != nil {
			if err := s.repo.DeleteItems(ctx, tx, existing.ID); err != nil {
				return err
			}
			existing.Items = s.buildItems(existing.ID, items, org.HourlyRate, now)
			if err := s.repo.InsertItems(ctx, tx, existing.Items); err != nil {
				return err
			}
		} else {
			existing.Items, err = s.repo.ListItems(ctx, tx, []snowflake.ID{existing.ID})
			if err != nil {
				return err
			}
		}
		existing.Subtotal = domain.Subtotal(existing.Items)

		if patch.Taxes != nil {
			if err := s.repo.DeleteTaxes(ctx, tx, existing.ID); err != nil {
				return err
			}
			existing.Taxes = s.buildTaxes(existing.ID, taxes, existing.Subtotal, now)
			if err := s.repo.InsertTaxes(ctx, tx, existing.Taxes); err != nil {
				return err
			}
		} else {
			existing.Taxes, err = s.repo.ListTaxes(ctx, tx, []snowflake.ID{existing.ID})
			if err != nil {
				return err
			}
			if patch.Items != nil {
				if err := s.repriceStoredTaxes(ctx, tx, existing.Taxes, existing.Subtotal, now); err != nil {
					return err
				}
			}
		}
		existing.Total = domain.Total(existing.Subtotal, existing.Taxes)

		if err := s.repo.UpdateInvoice(ctx, tx, existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		if !ledgererr.IsValidation(err) && !ledgererr.IsNotFound(err) {
			s.log.Error("update invoice failed",
				zap.String("profile_id", profileID.String()),
				zap.String("invoice_id", invoiceID.String()),
				zap.Error(err),
			)
		}
		return domain.Invoice{}, ledgererr.Persistence("update invoice", err)
	}

	s.metrics.RecordInvoiceUpdated(ctx, string(updated.Status))
	s.log.Info("invoice updated",
		zap.String("profile_id", profileID.String()),
		zap.String("invoice_id", updated.ID.String()),
	)
	return updated, nil
}

// repriceStoredTaxes persists new amounts for rated taxes after the subtotal
// moved. Unrated taxes keep their amount.
func (s *Service) repriceStoredTaxes(ctx context.Context, tx *gorm.DB, taxes []domain.TaxDetail, subtotal decimal.Decimal, now time.Time) error {
	domain.Reprice(taxes, subtotal)
	rated := make([]domain.TaxDetail, 0, len(taxes))
	for i := range taxes {
		if taxes[i].Rate.Valid {
			taxes[i].UpdatedAt = now
			rated = append(rated, taxes[i])
		}
	}
	return s.repo.UpdateTaxAmounts(ctx, tx, rated)
}

func (s *Service) Delete(ctx context.Context, profileID, invoiceID snowflake.ID) (bool, error) {
	if profileID == 0 {
		return false, profiledomain.ErrInvalidID
	}
	if invoiceID == 0 {
		return false, domain.ErrInvalidID
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		affected, err = s.repo.Delete(ctx, tx, profileID, invoiceID)
		return err
	})
	if err != nil {
		s.log.Error("delete invoice failed", zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		return false, ledgererr.Persistence("delete invoice", err)
	}

	s.metrics.RecordInvoicesDeleted(ctx, "invoice", affected)
	return affected > 0, nil
}

func (s *Service) DeleteAllByProfile(ctx context.Context, profileID snowflake.ID) (int64, error) {
	if profileID == 0 {
		return 0, profiledomain.ErrInvalidID
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.profileRepo.FindByID(ctx, tx, profileID)
		if err != nil {
			return err
		}
		if profile == nil {
			return profiledomain.ErrNotFound
		}
		affected, err = s.repo.DeleteByProfile(ctx, tx, profileID)
		return err
	})
	if err != nil {
		return 0, ledgererr.Persistence("delete profile invoices", err)
	}

	s.metrics.RecordInvoicesDeleted(ctx, "profile", affected)
	s.log.Info("profile invoices deleted",
		zap.String("profile_id", profileID.String()),
		zap.Int64("count", affected),
	)
	return affected, nil
}

func (s *Service) DeleteAllByOrganization(ctx context.Context, profileID, organizationID snowflake.ID) (int64, error) {
	if profileID == 0 {
		return 0, profiledomain.ErrInvalidID
	}
	if organizationID == 0 {
		return 0, domain.ErrInvalidOrganization
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := s.orgRepo.FindByID(ctx, tx, profileID, organizationID)
		if err != nil {
			return err
		}
		if org == nil {
			return organizationdomain.ErrNotFound
		}
		affected, err = s.repo.DeleteByOrganization(ctx, tx, profileID, organizationID)
		return err
	})
	if err != nil {
		return 0, ledgererr.Persistence("delete organization invoices", err)
	}

	s.metrics.RecordInvoicesDeleted(ctx, "organization", affected)
	s.log.Info("organization invoices deleted",
		zap.String("profile_id", profileID.String()),
		zap.String("organization_id", organizationID.String()),
		zap.Int64("count", affected),
	)
	return affected, nil
}

func (s *Service) GetByID(ctx context.Context, profileID, invoiceID snowflake.ID) (domain.Invoice, error) {
	if profileID == 0 {
		return domain.Invoice{}, profiledomain.ErrInvalidID
	}
	if invoiceID == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}
	if err := s.ensureProfile(ctx, profileID); err != nil {
		return domain.Invoice{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, profileID, invoiceID)
	if err != nil {
		return domain.Invoice{}, ledgererr.Persistence("load invoice", err)
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	invoices, err := s.attachLines(ctx, []*domain.Invoice{item})
	if err != nil {
		return domain.Invoice{}, err
	}
	return invoices[0], nil
}

func (s *Service) List(ctx context.Context, profileID snowflake.ID) ([]domain.Invoice, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrInvalidID
	}
	if err := s.ensureProfile(ctx, profileID); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{ProfileID: profileID})
	if err != nil {
		return nil, ledgererr.Persistence("list invoices", err)
	}
	return s.attachLines(ctx, items)
}

func (s *Service) ListByOrganization(ctx context.Context, profileID, organizationID snowflake.ID) ([]domain.Invoice, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrInvalidID
	}
	if organizationID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	org, err := s.orgRepo.FindByID(ctx, s.db, profileID, organizationID)
	if err != nil {
		return nil, ledgererr.Persistence("load organization", err)
	}
	if org == nil {
		return nil, organizationdomain.ErrNotFound
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{ProfileID: profileID, OrganizationID: organizationID})
	if err != nil {
		return nil, ledgererr.Persistence("list invoices", err)
	}
	return s.attachLines(ctx, items)
}

func (s *Service) ensureProfile(ctx context.Context, profileID snowflake.ID) error {
	profile, err := s.profileRepo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return ledgererr.Persistence("load profile", err)
	}
	if profile == nil {
		return profiledomain.ErrNotFound
	}
	return nil
}

// attachLines loads items and taxes for every invoice with one query each.
func (s *Service) attachLines(ctx context.Context, invoices []*domain.Invoice) ([]domain.Invoice, error) {
	ids := make([]snowflake.ID, 0, len(invoices))
	for _, inv := range invoices {
		if inv != nil {
			ids = append(ids, inv.ID)
		}
	}

	items, err := s.repo.ListItems(ctx, s.db, ids)
	if err != nil {
		return nil, ledgererr.Persistence("list invoice items", err)
	}
	taxes, err := s.repo.ListTaxes(ctx, s.db, ids)
	if err != nil {
		return nil, ledgererr.Persistence("list invoice taxes", err)
	}

	itemsByInvoice := make(map[snowflake.ID][]domain.InvoiceItem, len(ids))
	for _, item := range items {
		itemsByInvoice[item.InvoiceID] = append(itemsByInvoice[item.InvoiceID], item)
	}
	taxesByInvoice := make(map[snowflake.ID][]domain.TaxDetail, len(ids))
	for _, tax := range taxes {
		taxesByInvoice[tax.InvoiceID] = append(taxesByInvoice[tax.InvoiceID], tax)
	}

	out := make([]domain.Invoice, 0, len(ids))
	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		inv.Items = itemsByInvoice[inv.ID]
		if inv.Items == nil {
			inv.Items = []domain.InvoiceItem{}
		}
		inv.Taxes = taxesByInvoice[inv.ID]
		if inv.Taxes == nil {
			inv.Taxes = []domain.TaxDetail{}
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (s *Service) buildItems(invoiceID snowflake.ID, inputs []domain.ItemInput, rate decimal.Decimal, now time.Time) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoiceID,
			Date:        in.Date,
			Description: in.Description,
			Hours:       in.Hours,
			Rate:        rate,
			Amount:      domain.ItemAmount(in.Hours, rate),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return items
}

func (s *Service) buildTaxes(invoiceID snowflake.ID, inputs []domain.TaxInput, subtotal decimal.Decimal, now time.Time) []domain.TaxDetail {
	taxes := make([]domain.TaxDetail, 0, len(inputs))
	for _, in := range inputs {
		tax := domain.TaxDetail{
			ID:        s.genID.Generate(),
			InvoiceID: invoiceID,
			TaxType:   in.TaxType,
			Region:    in.Region,
			CreatedAt: now,
			UpdatedAt: now,
		}
		switch {
		case in.Rate != nil:
			tax.Rate = decimal.NewNullDecimal(*in.Rate)
			tax.Amount = domain.TaxAmount(subtotal, *in.Rate)
		case in.Amount != nil:
			tax.Amount = *in.Amount
		default:
			tax.Amount = decimal.Zero
		}
		taxes = append(taxes, tax)
	}
	return taxes
}

func (s *Service) today() string {
	return s.clock.Now().Format(domain.DateLayout)
}

func lockKey(profileID snowflake.ID) string {
	return "invoicely:invoice:create:profile:" + profileID.String()
}
