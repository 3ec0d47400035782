package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseGender(t *testing.T) {
	cases := map[string]Gender{
		"male":   GenderMale,
		" M ":    GenderMale,
		"Female": GenderFemale,
		"f":      GenderFemale,
		"":       GenderUnknown,
		"x":      GenderOther,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseGender(raw), raw)
	}
}

func TestPersonalInfoNormalize(t *testing.T) {
	p := PersonalInfo{NameEn: " Rahim ", DOB: "2010-05-04T00:00:00Z", Gender: "male"}.Normalize()
	assert.Equal(t, "Rahim", p.NameEn)
	assert.Equal(t, "2010-05-04", p.DOB)
	assert.Equal(t, GenderMale, p.Gender)

	bad := PersonalInfo{DOB: "not a date"}.Normalize()
	assert.Empty(t, bad.DOB)
	_, ok := bad.BirthDate()
	assert.False(t, ok)
}

func TestAddressFormat(t *testing.T) {
	a := AddressInfo{Street: "12 Lake Rd", Area: " ", District: "Dhaka", PostalCode: "1207"}
	assert.Equal(t, "12 Lake Rd, Dhaka, 1207", a.Format())
	assert.Empty(t, AddressInfo{}.Format())
}

func TestStudentSubDocumentsScan(t *testing.T) {
	var personal datatypes.JSONType[PersonalInfo]
	require.NoError(t, personal.Scan([]byte(`{"nameEn":"Karim","gender":"FEMALE","dob":"2012-01-01"}`)))
	assert.Equal(t, "Karim", personal.Data().NameEn)

	var guardian datatypes.JSONType[GuardianInfo]
	require.NoError(t, guardian.Scan(`{"fatherName":"A","contact":{"smsNo":"017"},"localGuardian":{"name":"U","relation":"Uncle"}}`))
	assert.Equal(t, "017", guardian.Data().Contact.SMSNo)
	require.NotNil(t, guardian.Data().Local)
	assert.Equal(t, "Uncle", guardian.Data().Local.Relation)

	s := Student{StudentID: "STU-1", Personal: personal}
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"nameEn":"Karim"`)
}

func TestReportScopeKeyIsDeterministic(t *testing.T) {
	a := ReportScope{ClassID: "c1", FeeType: FeeTypeTuition}
	b := ReportScope{FeeType: FeeTypeTuition, ClassID: "c1"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), ReportScope{ClassID: "c2"}.Key())
	assert.NotContains(t, ReportScope{ClassID: "a:b"}.Key(), ":")
}

func TestReportScopeKeyEscapesSeparators(t *testing.T) {
	forged := ReportScope{SessionID: "a|class=b"}
	split := ReportScope{SessionID: "a", ClassID: "b|class="}
	assert.NotEqual(t, forged.Key(), split.Key())
	assert.Contains(t, forged.Key(), "session=a%7Cclass%3Db|")
}
