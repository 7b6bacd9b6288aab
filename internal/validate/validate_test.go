package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/assetdesk/internal/apperr"
)

type sampleRequest struct {
	Tag         string  `json:"assetTag" validate:"required"`
	ModelID     int64   `json:"modelID" validate:"required,gt=0"`
	Status      string  `json:"assetStatus" validate:"omitempty,asset_status"`
	Workstation string  `json:"workStationID" validate:"omitempty,workstation_code"`
	Assign      string  `json:"assignStatus" validate:"omitempty,assign_status"`
	Department  string  `json:"department" validate:"omitempty,department"`
	IDs         []int64 `json:"assetIds" validate:"omitempty,min=1"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func TestStructRequiredFieldsUseJSONNames(t *testing.T) {
	fields := fieldsOf(t, Struct(sampleRequest{}))
	assert.Equal(t, "assetTag is required", fields["assetTag"])
	assert.Equal(t, "modelID is required", fields["modelID"])
	assert.Len(t, fields, 2)

	assert.NoError(t, Struct(sampleRequest{Tag: "LAP-100", ModelID: 5}))
}

func TestWorkstationCode(t *testing.T) {
	for _, ok := range []string{"WSM12", "wsm007", "WSM1"} {
		assert.True(t, WorkstationCode(ok), ok)
	}
	for _, bad := range []string{"WS12", "WSM", "WSM-12", "wsmx", "", " WSM1", "WSM1a"} {
		assert.False(t, WorkstationCode(bad), bad)
	}

	fields := fieldsOf(t, Struct(sampleRequest{Tag: "x", ModelID: 1, Workstation: "WSM-12"}))
	assert.Contains(t, fields["workStationID"], "WSM")

	assert.Equal(t, "WSM007", NormalizeWorkstationID(" wsm007 "))
}

func TestStatusAndDepartmentTags(t *testing.T) {
	fields := fieldsOf(t, Struct(sampleRequest{
		Tag: "x", ModelID: 1,
		Status:     "Retired",
		Assign:     "Borrowed",
		Department: "Legal",
	}))
	assert.Contains(t, fields, "assetStatus")
	assert.Contains(t, fields, "assignStatus")
	assert.Contains(t, fields, "department")

	assert.NoError(t, Struct(sampleRequest{
		Tag: "x", ModelID: 1, Status: "Defective", Assign: "WFH", Department: "Finance",
	}))
}

func TestBorrow(t *testing.T) {
	emp := int64(3)
	start, end, same, bad := "2024-03-01", "2024-03-15", "2024-03-01", "03/15/2024"

	verr := &apperr.ValidationError{}
	Borrow(verr, false, nil, nil, nil)
	assert.True(t, verr.Empty())

	verr = &apperr.ValidationError{}
	Borrow(verr, true, &emp, &start, &end)
	assert.True(t, verr.Empty())

	verr = &apperr.ValidationError{}
	Borrow(verr, true, nil, nil, nil)
	assert.Len(t, verr.Fields, 3)

	verr = &apperr.ValidationError{}
	Borrow(verr, true, &emp, &start, &same)
	assert.Equal(t, "borrowEndDate must be after borrowStartDate", verr.Fields["borrowEndDate"])

	verr = &apperr.ValidationError{}
	Borrow(verr, true, &emp, &start, &bad)
	assert.Contains(t, verr.Fields["borrowEndDate"], "YYYY-MM-DD")
}

func TestMerge(t *testing.T) {
	assert.NoError(t, Merge(nil, &apperr.ValidationError{}))

	extra := apperr.Invalid("borrowEndDate", "borrowEndDate must be after borrowStartDate")
	merged := fieldsOf(t, Merge(Struct(sampleRequest{ModelID: 1}), extra))
	assert.Contains(t, merged, "assetTag")
	assert.Contains(t, merged, "borrowEndDate")

	fields := fieldsOf(t, Merge(nil, extra))
	assert.Len(t, fields, 1)
}
