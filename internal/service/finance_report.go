package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CollectionReader fetches fee collections of a scope.
type CollectionReader interface {
	List(ctx context.Context, scope models.ReportScope) ([]models.CollectionRecord, error)
}

// FinanceReportService builds finance reports.
type FinanceReportService struct {
	repo CollectionReader
	reportGenerator
}

// NewFinanceReportService constructs the service.
func NewFinanceReportService(repo CollectionReader, opts ReportOptions) *FinanceReportService {
	return &FinanceReportService{repo: repo, reportGenerator: newReportGenerator(opts)}
}

// Generate returns the finance report of the scope. The boolean reports a cache hit.
func (s *FinanceReportService) Generate(ctx context.Context, scope models.ReportScope) (*models.FinanceReport, bool, error) {
	report, hit, err := generate(ctx, s.reportGenerator, models.ReportTypeFinance, scope, func(ctx context.Context) (*models.FinanceReport, error) {
		start := time.Now()
		records, err := s.repo.List(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("fetch collections: %w", err)
		}
		s.observeQuery("report_finance", start)
		report := AggregateFinance(records, s.now())
		return &report, nil
	})
	if err != nil {
		return nil, false, err
	}
	if hit {
		refreshDaysOverdue(report, s.now())
	}
	return report, hit, nil
}

// refreshDaysOverdue recomputes the age of each defaulter's oldest pending due date, which a cached
// payload would otherwise freeze at generation time.
func refreshDaysOverdue(report *models.FinanceReport, now time.Time) {
	oldest := make(map[string]time.Time)
	for _, row := range report.Records {
		if row.Status != models.PaymentPending || row.DueDate == nil {
			continue
		}
		if current, seen := oldest[row.StudentID]; !seen || row.DueDate.Before(current) {
			oldest[row.StudentID] = *row.DueDate
		}
	}
	for i := range report.Defaulters {
		if due, ok := oldest[report.Defaulters[i].StudentID]; ok {
			report.Defaulters[i].DaysOverdue = daysBetween(due, now)
		}
	}
}

type classCollection struct {
	collected decimal.Decimal
	pending   decimal.Decimal
}

// AggregateFinance summarises collections as of now. Only APPROVED rows count as collected and only
// PENDING rows count as dues; rows with an unknown status are skipped.
func AggregateFinance(records []models.CollectionRecord, now time.Time) models.FinanceReport {
	report := models.FinanceReport{
		Records:             make([]models.CollectionRecord, 0, len(records)),
		FeeTypeDistribution: make([]models.FeeTypeShare, 0),
		ClassSummary:        make([]models.ClassCollectionSummary, 0),
		Defaulters:          make([]models.Defaulter, 0),
	}
	summary := &report.Summary
	summary.TotalCollection = decimal.Zero
	summary.TotalDues = decimal.Zero
	summary.TotalExpense = decimal.Zero

	feeTypes := make(map[models.FeeType]*models.FeeTypeShare)
	classes := make(map[string]*classCollection)
	defaulters := make(map[string]*models.Defaulter)
	oldestDue := make(map[string]time.Time)

	for _, row := range records {
		if !row.Status.Valid() {
			report.SkippedRecords++
			continue
		}
		report.Records = append(report.Records, row)

		className := models.GroupName(row.ClassName)
		class, ok := classes[className]
		if !ok {
			class = &classCollection{collected: decimal.Zero, pending: decimal.Zero}
			classes[className] = class
		}

		switch row.Status {
		case models.PaymentApproved:
			summary.TotalCollection = summary.TotalCollection.Add(row.Amount)
			summary.ApprovedCount++
			class.collected = class.collected.Add(row.Amount)

			share, ok := feeTypes[row.FeeType]
			if !ok {
				share = &models.FeeTypeShare{FeeType: row.FeeType, Amount: decimal.Zero}
				feeTypes[row.FeeType] = share
			}
			share.Amount = share.Amount.Add(row.Amount)
			share.Count++
		case models.PaymentPending:
			summary.TotalDues = summary.TotalDues.Add(row.Amount)
			summary.PendingCount++
			class.pending = class.pending.Add(row.Amount)

			d, ok := defaulters[row.StudentID]
			if !ok {
				d = &models.Defaulter{
					StudentID:   row.StudentID,
					StudentCode: row.StudentCode,
					StudentName: row.StudentName,
					ClassName:   className,
					DueAmount:   decimal.Zero,
				}
				if row.StudentPhone != nil {
					d.Phone = *row.StudentPhone
				}
				defaulters[row.StudentID] = d
			}
			d.DueAmount = d.DueAmount.Add(row.Amount)
			d.PendingCount++
			if row.DueDate != nil {
				if current, seen := oldestDue[row.StudentID]; !seen || row.DueDate.Before(current) {
					oldestDue[row.StudentID] = *row.DueDate
				}
			}
		}
	}
	summary.NetProfit = summary.TotalCollection.Sub(summary.TotalExpense)

	for _, share := range feeTypes {
		share.Percentage = decimalPercentage(share.Amount, summary.TotalCollection)
		report.FeeTypeDistribution = append(report.FeeTypeDistribution, *share)
	}
	sort.Slice(report.FeeTypeDistribution, func(i, j int) bool {
		a, b := report.FeeTypeDistribution[i], report.FeeTypeDistribution[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return a.FeeType < b.FeeType
	})

	for name, class := range classes {
		report.ClassSummary = append(report.ClassSummary, models.ClassCollectionSummary{
			ClassName:            name,
			TotalCollection:      class.collected,
			PendingDues:          class.pending,
			CollectionPercentage: decimalPercentage(class.collected, class.collected.Add(class.pending)),
		})
	}
	sort.Slice(report.ClassSummary, func(i, j int) bool {
		return report.ClassSummary[i].ClassName < report.ClassSummary[j].ClassName
	})

	for id, d := range defaulters {
		if due, ok := oldestDue[id]; ok {
			formatted := due.Format(models.DateLayout)
			d.OldestDueDate = &formatted
			d.DaysOverdue = daysBetween(due, now)
		}
		report.Defaulters = append(report.Defaulters, *d)
	}
	sort.Slice(report.Defaulters, func(i, j int) bool {
		a, b := report.Defaulters[i], report.Defaulters[j]
		if cmp := a.DueAmount.Cmp(b.DueAmount); cmp != 0 {
			return cmp > 0
		}
		return a.StudentID < b.StudentID
	})

	return report
}

func decimalPercentage(part, total decimal.Decimal) int {
	if total.IsZero() {
		return 0
	}
	return int(part.Mul(hundred).Div(total).Round(0).IntPart())
}

// daysBetween returns the whole days elapsed from since to now, never negative.
func daysBetween(since, now time.Time) int {
	days := int(math.Floor(now.Sub(since).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
