package mail

import (
	"Admission/internal/api/dto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesEscapeStudentInput(t *testing.T) {
	student := dto.ConsultationStudent{
		FullName:    "<script>alert(1)</script>",
		Email:       "hoa@example.com",
		PhoneNumber: "0912345678",
		MajorName:   "CNTT",
	}

	msg, err := ConsultationConfirmed(student, "https://tuyensinh.example.com")
	require.NoError(t, err)
	assert.Equal(t, "hoa@example.com", msg.To)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "0912345678")

	msg, err = AdvisorAlert("advisor@example.com", student)
	require.NoError(t, err)
	assert.Equal(t, "advisor@example.com", msg.To)
	assert.Contains(t, msg.HTML, "CNTT")
}
