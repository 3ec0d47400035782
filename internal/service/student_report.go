package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

// StudentReader fetches the students of a scope.
type StudentReader interface {
	List(ctx context.Context, scope models.ReportScope) ([]models.StudentRecord, error)
}

// StudentReportService builds student reports.
type StudentReportService struct {
	repo StudentReader
	reportGenerator
}

// NewStudentReportService constructs the service.
func NewStudentReportService(repo StudentReader, opts ReportOptions) *StudentReportService {
	return &StudentReportService{repo: repo, reportGenerator: newReportGenerator(opts)}
}

// Generate returns the student report of the scope. The boolean reports a cache hit.
func (s *StudentReportService) Generate(ctx context.Context, scope models.ReportScope) (*models.StudentReport, bool, error) {
	return generate(ctx, s.reportGenerator, models.ReportTypeStudents, scope, func(ctx context.Context) (*models.StudentReport, error) {
		start := time.Now()
		students, err := s.repo.List(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("fetch students: %w", err)
		}
		s.observeQuery("report_students", start)
		report := AggregateStudents(students, s.now())
		return &report, nil
	})
}

// AggregateStudents summarises the roster. Ages are whole calendar years as of now and students
// without a readable date of birth are left out of the average.
func AggregateStudents(students []models.StudentRecord, now time.Time) models.StudentReport {
	report := models.StudentReport{
		Students:          students,
		ClassDistribution: make([]models.ClassCount, 0),
		GenderByClass:     make([]models.ClassGender, 0),
		GuardianContacts:  make([]models.GuardianContactRow, 0),
	}
	if report.Students == nil {
		report.Students = make([]models.StudentRecord, 0)
	}

	var ageSum, aged int
	byClass := make(map[string]*models.ClassGender)
	for _, st := range students {
		personal := st.Personal.Data()
		report.Summary.Total++

		className := models.GroupName(st.ClassName)
		group, ok := byClass[className]
		if !ok {
			group = &models.ClassGender{ClassName: className}
			byClass[className] = group
		}
		switch models.ParseGender(string(personal.Gender)) {
		case models.GenderMale:
			report.Summary.Male++
			group.Male++
		case models.GenderFemale:
			report.Summary.Female++
			group.Female++
		default:
			group.Unknown++
		}

		switch st.Status {
		case models.StudentStatusActive:
			report.Summary.Active++
		case models.StudentStatusInactive:
			report.Summary.Inactive++
		}

		if dob, ok := personal.BirthDate(); ok {
			ageSum += now.Year() - dob.Year()
			aged++
		}

		report.GuardianContacts = append(report.GuardianContacts, guardianContacts(st)...)
	}
	if aged > 0 {
		report.Summary.AverageAge = int(math.Round(float64(ageSum) / float64(aged)))
	}

	for _, group := range byClass {
		report.ClassDistribution = append(report.ClassDistribution, models.ClassCount{
			ClassName: group.ClassName,
			Count:     group.Male + group.Female + group.Unknown,
		})
		report.GenderByClass = append(report.GenderByClass, *group)
	}
	sort.Slice(report.ClassDistribution, func(i, j int) bool {
		return report.ClassDistribution[i].ClassName < report.ClassDistribution[j].ClassName
	})
	sort.Slice(report.GenderByClass, func(i, j int) bool {
		return report.GenderByClass[i].ClassName < report.GenderByClass[j].ClassName
	})

	return report
}

// guardianContacts lists every named guardian of a student. Parents share the household contact.
func guardianContacts(st models.StudentRecord) []models.GuardianContactRow {
	guardian := st.Guardian.Data()
	address := st.Address.Data().Format()
	base := models.GuardianContactRow{
		StudentID:   st.StudentID,
		StudentName: st.Name(),
		Address:     address,
	}

	rows := make([]models.GuardianContactRow, 0, 3)
	if guardian.FatherName != "" {
		row := base
		row.GuardianName = guardian.FatherName
		row.Relationship = models.RelationshipFather
		row.Phone = guardian.Contact.SMSNo
		row.Email = guardian.Contact.Email
		rows = append(rows, row)
	}
	if guardian.MotherName != "" {
		row := base
		row.GuardianName = guardian.MotherName
		row.Relationship = models.RelationshipMother
		row.Phone = guardian.Contact.SMSNo
		row.Email = guardian.Contact.Email
		rows = append(rows, row)
	}
	if local := guardian.Local; local != nil && local.Name != "" {
		row := base
		row.GuardianName = local.Name
		row.Relationship = models.RelationshipLocal
		if local.Relation != "" {
			row.Relationship = models.RelationshipLocal + " (" + local.Relation + ")"
		}
		row.Phone = local.Phone
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		// Unnamed guardian: keep the household contact reachable.
		row := base
		row.Relationship = models.RelationshipFather
		row.Phone = guardian.Contact.SMSNo
		row.Email = guardian.Contact.Email
		rows = append(rows, row)
	}
	return rows
}
