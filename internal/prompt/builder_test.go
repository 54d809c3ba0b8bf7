package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/domain"
	"freightx/internal/portref"
	"freightx/internal/prompt"
)

type staticPorts []portref.Port

func (s staticPorts) Ports() []portref.Port { return s }

var testPorts = staticPorts{
	{Code: "CNSHA", Name: "Shanghai"},
	{Code: "INMAA", Name: "Chennai ICD"},
	{Code: "SGSIN", Name: "Singapore"},
}

func TestBuilder_Build_EmbedsEmailAndReference(t *testing.T) {
	b, err := prompt.NewBuilder(testPorts)
	require.NoError(t, err)

	out, err := b.Build(domain.Email{
		ID:      "EMAIL_001",
		Subject: "LCL rate request",
		Body:    "Shanghai to Chennai, 500 kg, {{ not a template }}",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Email subject: LCL rate request")
	assert.Contains(t, out, "Shanghai to Chennai, 500 kg, {{ not a template }}")
	assert.Contains(t, out, "CNSHA=Shanghai\nINMAA=Chennai ICD\nSGSIN=Singapore")
	assert.Contains(t, out, "pl_sea_import_lcl")
	assert.Contains(t, out, "pl_sea_export_lcl")
	assert.Contains(t, out, "FOB, CIF, CFR, EXW, DDP, DAP, FCA, CPT, CIP, DPU")
	assert.Contains(t, out, "0.453592")
	assert.Contains(t, out, `"is_dangerous": false`)
}

func TestBuilder_Build_Deterministic(t *testing.T) {
	b, err := prompt.NewBuilder(testPorts)
	require.NoError(t, err)

	email := domain.Email{ID: "E1", Subject: "s", Body: "b"}
	first, err := b.Build(email)
	require.NoError(t, err)
	second, err := b.Build(email)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuilder_WithMaxPorts(t *testing.T) {
	b, err := prompt.NewBuilder(testPorts, prompt.WithMaxPorts(1))
	require.NoError(t, err)

	out, err := b.Build(domain.Email{ID: "E1"})
	require.NoError(t, err)

	assert.Contains(t, out, "CNSHA=Shanghai")
	assert.NotContains(t, out, "SGSIN=Singapore")
}

func TestBuilder_WithTemplate(t *testing.T) {
	b, err := prompt.NewBuilder(testPorts, prompt.WithTemplate("{{ subject }}|{{ default_incoterm }}"))
	require.NoError(t, err)

	out, err := b.Build(domain.Email{Subject: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello|FOB", out)
}

func TestNewBuilder_InvalidOptions(t *testing.T) {
	_, err := prompt.NewBuilder(testPorts, prompt.WithMaxPorts(-1))
	assert.Error(t, err)

	_, err = prompt.NewBuilder(testPorts, prompt.WithTemplate("  "))
	assert.Error(t, err)
}

func TestPortContext(t *testing.T) {
	assert.Equal(t, "", prompt.PortContext(nil, 0))
	assert.Equal(t, "CNSHA=Shanghai\nINMAA=Chennai ICD", prompt.PortContext(testPorts, 2))
}
