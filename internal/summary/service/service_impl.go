package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicely/internal/clock"
	"github.com/smallbiznis/invoicely/internal/ledgererr"
	"github.com/smallbiznis/invoicely/internal/observability/metrics"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
	"github.com/smallbiznis/invoicely/internal/summary/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Repo        domain.Repository
	ProfileRepo profiledomain.Repository
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	repo        domain.Repository
	profileRepo profiledomain.Repository
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("summary.service"),
		clock:       p.Clock,
		repo:        p.Repo,
		profileRepo: p.ProfileRepo,
		metrics:     p.Metrics,
	}
}

func (s *Service) GetFinancialSummary(ctx context.Context, profileID snowflake.ID, startDate, endDate string) (domain.FinancialSummary, error) {
	summary, err := s.getFinancialSummary(ctx, profileID, startDate, endDate)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.RecordSummary(ctx, outcome)
	}
	return summary, err
}

func (s *Service) getFinancialSummary(ctx context.Context, profileID snowflake.ID, startDate, endDate string) (domain.FinancialSummary, error) {
	if profileID == 0 {
		return domain.FinancialSummary{}, profiledomain.ErrInvalidID
	}

	start, end, err := s.resolveRange(startDate, endDate)
	if err != nil {
		return domain.FinancialSummary{}, err
	}

	profile, err := s.profileRepo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return domain.FinancialSummary{}, ledgererr.Persistence("load profile", err)
	}
	if profile == nil {
		return domain.FinancialSummary{}, profiledomain.ErrNotFound
	}

	from, to := start, end.AddDate(0, 0, 1)
	invoices, err := s.repo.ListInvoices(ctx, s.db, profileID, from, to)
	if err != nil {
		s.log.Error("list summary invoices failed", zap.Error(err))
		return domain.FinancialSummary{}, ledgererr.Persistence("list invoices", err)
	}
	taxes, err := s.repo.ListTaxes(ctx, s.db, profileID, from, to)
	if err != nil {
		s.log.Error("list summary taxes failed", zap.Error(err))
		return domain.FinancialSummary{}, ledgererr.Persistence("list taxes", err)
	}

	return domain.FinancialSummary{
		Income: incomeSummary(invoices),
		Tax:    taxSummary(invoices, taxes),
		Period: domain.Period{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
		},
	}, nil
}

// resolveRange parses both bounds as UTC days. Empty bounds default to the
// start of the current year and today.
func (s *Service) resolveRange(startDate, endDate string) (time.Time, time.Time, error) {
	now := s.clock.Now().UTC()

	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if raw := strings.TrimSpace(startDate); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, domain.ErrInvalidStartDate
		}
		start = parsed
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if raw := strings.TrimSpace(endDate); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, domain.ErrInvalidEndDate
		}
		end = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
	return start, end, nil
}
