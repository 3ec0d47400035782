package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

func TestStudentRepositoryListDecodesSubDocuments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "session_id", "class_id", "batch_id", "section_id", "status", "personal", "guardian", "address", "created_at", "updated_at", "session_name", "class_name", "batch_name", "section_name"}).
		AddRow("s1", "STU-1", "sess-1", "class-1", nil, nil, "ACTIVE",
			[]byte(`{"nameEn":"Rahim","gender":"male","dob":"2010-02-03"}`),
			[]byte(`{"fatherName":"Abdul","contact":{"smsNo":"01700000000"}}`),
			[]byte(`{"street":"12 Lake Rd","district":"Dhaka"}`),
			now, now, "2024", "Class 8", nil, nil).
		AddRow("s2", "STU-2", "sess-1", "class-1", "batch-1", nil, "INACTIVE", []byte(`{}`), []byte(`{}`), []byte(`{}`), now, now, "2024", "Class 8", "Morning", nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students s LEFT JOIN academic_sessions ses ON ses.id = s.session_id")).
		WithArgs("class-1", "ACTIVE").
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.ReportScope{ClassID: "class-1", Status: models.StudentStatusActive})
	require.NoError(t, err)
	require.Len(t, students, 2)

	personal := students[0].Personal.Data()
	assert.Equal(t, models.GenderMale, personal.Gender)
	assert.Equal(t, "2010-02-03", personal.DOB)
	assert.Equal(t, "Abdul", students[0].Guardian.Data().FatherName)
	assert.Equal(t, "12 Lake Rd, Dhaka", students[0].Address.Data().Format())
	assert.Equal(t, models.GenderUnknown, students[1].Personal.Data().Gender)
	require.NotNil(t, students[1].BatchName)
	assert.Equal(t, "Morning", *students[1].BatchName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
