package bulkimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "registerno", normalizeKey("Register No"))
	assert.Equal(t, "registerno", normalizeKey("  REGISTER\tNO "))
	assert.Equal(t, "email", normalizeKey("Email"))
	assert.Equal(t, "fullname", normalizeKey("Full Name"))
	assert.Equal(t, "", normalizeKey("   "))
}

func TestResolveStudentAliases(t *testing.T) {
	raw := map[string]string{
		"Full Name":   "Arun Kumar",
		"EMAIL":       " arun@tce.edu ",
		"Register No": "21CS042",
		"Dept":        "CSE",
		"Year":        "3rd",
	}
	got := resolve(raw, studentFields)
	assert.Equal(t, "Arun Kumar", got["name"])
	assert.Equal(t, "arun@tce.edu", got["email"])
	assert.Equal(t, "21CS042", got["registerNo"])
	assert.Equal(t, "CSE", got["department"])
	assert.Equal(t, "3rd", got["year"])
	assert.Empty(t, got["password"])
}

func TestResolvePrefersEarlierAlias(t *testing.T) {
	raw := map[string]string{
		"name":     "Primary",
		"fullname": "Secondary",
	}
	got := resolve(raw, studentFields)
	assert.Equal(t, "Primary", got["name"])
}

func TestResolveFallsThroughEmptyAlias(t *testing.T) {
	raw := map[string]string{
		"name":     "  ",
		"fullname": "Secondary",
	}
	got := resolve(raw, studentFields)
	assert.Equal(t, "Secondary", got["name"])
}

func TestResolveIgnoresUnknownHeaders(t *testing.T) {
	raw := map[string]string{
		"email":        "x@tce.edu",
		"phone number": "9999999999",
	}
	got := resolve(raw, studentFields)
	assert.Equal(t, map[string]string{"email": "x@tce.edu"}, got)
}

func TestProctorFieldsHaveNoRegisterNo(t *testing.T) {
	raw := map[string]string{
		"name":        "Dr. Priya",
		"email":       "priya@tce.edu",
		"register no": "STAFF01",
	}
	got := resolve(raw, proctorFields)
	assert.Equal(t, "Dr. Priya", got["name"])
	assert.NotContains(t, got, "registerNo")
}
