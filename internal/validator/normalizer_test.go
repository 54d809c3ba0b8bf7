package validator_test

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/domain"
	"freightx/internal/parser"
	"freightx/internal/portref"
	"freightx/internal/validator"
)

func testTable(t *testing.T) *portref.Table {
	t.Helper()
	table, err := portref.New([]portref.Entry{
		{Code: "CNSHA", Name: "Shanghai"},
		{Code: "INMAA", Name: "Chennai"},
		{Code: "INMAA", Name: "Chennai ICD"},
		{Code: "SGSIN", Name: "Singapore"},
		{Code: "INNSA", Name: "Nhava Sheva"},
		{Code: "INNSA", Name: "JNPT"},
		{Code: "USHOU", Name: "Houston"},
		{Code: "DEHAM", Name: "Hamburg"},
	}, portref.DefaultOverrides)
	require.NoError(t, err)
	return table
}

func candidate(t *testing.T, raw string) *parser.Candidate {
	t.Helper()
	c, err := parser.Parse(raw)
	require.NoError(t, err)
	return c
}

func productLine(pl domain.ProductLine) *domain.ProductLine { return &pl }

func TestNormalize_ValidCandidate(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	email := domain.Email{
		ID:      "EMAIL_001",
		Subject: "LCL rate request",
		Body:    "Please quote LCL Shanghai to Chennai, 500 kg, 2 cbm, CIF terms.",
	}
	c := candidate(t, `{"product_line":"pl_sea_import_lcl","origin_port_code":"CNSHA","origin_port_name":"shanghai",
		"destination_port_code":"INMAA","destination_port_name":"Chennai","incoterm":"CIF",
		"cargo_weight_kg":500,"cargo_cbm":2,"is_dangerous":false}`)

	got, anomalies := n.Normalize(c, email)

	want := domain.ShipmentRecord{
		EmailID:             "EMAIL_001",
		ProductLine:         productLine(domain.ProductLineSeaImportLCL),
		OriginPortCode:      domain.StringPtr("CNSHA"),
		OriginPortName:      domain.StringPtr("Shanghai"),
		DestinationPortCode: domain.StringPtr("INMAA"),
		DestinationPortName: domain.StringPtr("Chennai ICD"),
		Incoterm:            "CIF",
		CargoWeightKg:       domain.Float64Ptr(500),
		CargoCBM:            domain.Float64Ptr(2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, anomalies)
}

func TestNormalize_NilCandidateUsesEmailText(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	email := domain.Email{
		ID:   "EMAIL_002",
		Body: "Need LCL rates from Nhava Sheva to Houston. 1.5 MT, 3.25 CBM. Cargo is hazardous, UN1263.",
	}

	got, _ := n.Normalize(nil, email)

	want := domain.ShipmentRecord{
		EmailID:             "EMAIL_002",
		ProductLine:         productLine(domain.ProductLineSeaExportLCL),
		OriginPortCode:      domain.StringPtr("INNSA"),
		OriginPortName:      domain.StringPtr("Nhava Sheva"),
		DestinationPortCode: domain.StringPtr("USHOU"),
		DestinationPortName: domain.StringPtr("Houston"),
		Incoterm:            "FOB",
		CargoWeightKg:       domain.Float64Ptr(1500),
		CargoCBM:            domain.Float64Ptr(3.25),
		IsDangerous:         true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_UnknownCodeNullsThePair(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	email := domain.Email{ID: "E3", Body: "Nhava Sheva to Hamburg, rates please"}
	c := candidate(t, `{"origin_port_code":"ZZZZZ","origin_port_name":"JNPT","destination_port_code":"DEHAM"}`)

	got, anomalies := n.Normalize(c, email)

	assert.Nil(t, got.OriginPortCode)
	assert.Nil(t, got.OriginPortName)
	require.NotNil(t, got.DestinationPortCode)
	assert.Equal(t, "DEHAM", *got.DestinationPortCode)
	assert.Nil(t, got.ProductLine)
	assert.Contains(t, anomalies, validator.Anomaly{
		Field: "origin_port_code", Value: "ZZZZZ", Reason: "not in port reference",
	})
}

func TestNormalize_MissingCodeFallsBackToName(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	email := domain.Email{ID: "E3", Body: "rates please"}
	c := candidate(t, `{"origin_port_code":null,"origin_port_name":"JNPT","destination_port_code":"DEHAM"}`)

	got, anomalies := n.Normalize(c, email)

	require.NotNil(t, got.OriginPortCode)
	assert.Equal(t, "INNSA", *got.OriginPortCode)
	assert.Equal(t, "Nhava Sheva", *got.OriginPortName)
	assert.Equal(t, domain.ProductLineSeaExportLCL, *got.ProductLine)
	for _, a := range anomalies {
		assert.NotEqual(t, "origin_port_code", a.Field)
	}
}

func TestNormalize_UnresolvablePortsAreNull(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	email := domain.Email{ID: "E4", Body: "Atlantis to Lemuria, 10 kg"}
	c := candidate(t, `{"origin_port_code":"QQ","origin_port_name":"Atlantis"}`)

	got, _ := n.Normalize(c, email)

	assert.Nil(t, got.OriginPortCode)
	assert.Nil(t, got.OriginPortName)
	assert.Nil(t, got.DestinationPortCode)
	assert.Nil(t, got.DestinationPortName)
	assert.Nil(t, got.ProductLine)
	assert.Equal(t, domain.Float64Ptr(10), got.CargoWeightKg)
}

func TestNormalize_ViaPortIsNotAnEndpoint(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	email := domain.Email{ID: "E5", Body: "Shanghai to Chennai via Singapore. 2 cbm."}
	c := candidate(t, `{"origin_port_code":"SGSIN","destination_port_code":"INMAA"}`)

	got, anomalies := n.Normalize(c, email)

	require.NotNil(t, got.OriginPortCode)
	assert.Equal(t, "CNSHA", *got.OriginPortCode)
	assert.Equal(t, "INMAA", *got.DestinationPortCode)
	assert.Contains(t, anomalies, validator.Anomaly{
		Field: "origin_port_code", Value: "SGSIN", Reason: "via port replaced by route origin",
	})
}

func TestNormalize_Incoterm(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))

	tests := []struct {
		name  string
		email domain.Email
		llm   string
		want  string
	}{
		{"body wins over model", domain.Email{Body: "DAP Chennai please"}, `{"incoterm":"CIF"}`, "DAP"},
		{"no term in email defaults", domain.Email{Body: "Shanghai to Chennai"}, `{"incoterm":"CIF"}`, "FOB"},
		{"alternatives default", domain.Email{Body: "quote FOB or CIF"}, `{"incoterm":"CIF"}`, "FOB"},
		{"subject used when body silent", domain.Email{Subject: "EXW rate", Body: "see below"}, `{}`, "EXW"},
		{"model used without text", domain.Email{}, `{"incoterm":"cif"}`, "CIF"},
		{"unknown model term without text", domain.Email{}, `{"incoterm":"XYZ"}`, "FOB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := n.Normalize(candidate(t, tt.llm), tt.email)
			assert.Equal(t, tt.want, got.Incoterm)
		})
	}
}

func TestNormalize_Weight(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))

	tests := []struct {
		name  string
		body  string
		llm   string
		want  *float64
		field string
	}{
		{"model value kept", "approx 800 kg", `{"cargo_weight_kg":800}`, domain.Float64Ptr(800), ""},
		{"unconverted pounds corrected", "gross 1100 lbs", `{"cargo_weight_kg":1100}`, domain.Float64Ptr(498.95), "cargo_weight_kg"},
		{"converted pounds kept", "gross 1100 lbs", `{"cargo_weight_kg":498.95}`, domain.Float64Ptr(498.95), ""},
		{"unit string parsed", "", `{"cargo_weight_kg":"2 MT"}`, domain.Float64Ptr(2000), ""},
		{"null falls back to text", "weight 1,980 KGS", `{"cargo_weight_kg":null}`, domain.Float64Ptr(1980), ""},
		{"explicit unknown in text", "weight TBD, 2 cbm", `{"cargo_weight_kg":500}`, nil, "cargo_weight_kg"},
		{"negative rejected", "", `{"cargo_weight_kg":-5}`, nil, "cargo_weight_kg"},
		{"garbage falls back", "500 kgs", `{"cargo_weight_kg":"heavy"}`, domain.Float64Ptr(500), "cargo_weight_kg"},
		{"model TBD string", "", `{"cargo_weight_kg":"TBD"}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, anomalies := n.Normalize(candidate(t, tt.llm), domain.Email{ID: "W", Body: tt.body})
			assert.Equal(t, tt.want, got.CargoWeightKg)
			if tt.field == "" {
				for _, a := range anomalies {
					assert.NotEqual(t, "cargo_weight_kg", a.Field)
				}
				return
			}
			var fields []string
			for _, a := range anomalies {
				fields = append(fields, a.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestNormalize_NonFiniteQuantitiesAreNull(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	c := parser.NewCandidate(map[string]json.RawMessage{
		"cargo_weight_kg": json.RawMessage(`"NaN"`),
		"cargo_cbm":       json.RawMessage(`"Inf"`),
	})

	got, anomalies := n.Normalize(c, domain.Email{ID: "E8", Body: "general cargo"})

	assert.Nil(t, got.CargoWeightKg)
	assert.Nil(t, got.CargoCBM)
	assert.Contains(t, anomalies, validator.Anomaly{Field: "cargo_weight_kg", Value: "NaN", Reason: "unparseable quantity"})
	assert.Contains(t, anomalies, validator.Anomaly{Field: "cargo_cbm", Value: "Inf", Reason: "unparseable quantity"})

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}

func TestNormalize_OutOfRangeQuantityIsNotReadAsText(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))

	for _, raw := range []string{`1e400`, `"1e400"`, `"-Infinity"`} {
		t.Run(raw, func(t *testing.T) {
			c := parser.NewCandidate(map[string]json.RawMessage{"cargo_weight_kg": json.RawMessage(raw)})

			got, anomalies := n.Normalize(c, domain.Email{ID: "E9", Body: "general cargo"})

			assert.Nil(t, got.CargoWeightKg)
			require.NotEmpty(t, anomalies)
			assert.Contains(t, anomalies, validator.Anomaly{
				Field: "cargo_weight_kg", Value: strings.Trim(raw, `"`), Reason: "unparseable quantity",
			})
		})
	}
}

func TestNormalize_VolumeUsesFirstShipment(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	email := domain.Email{
		ID:   "E6",
		Body: "1) Shanghai to Chennai, 2.5 cbm\n2) Shanghai to Nhava Sheva, 7 cbm",
	}

	got, _ := n.Normalize(candidate(t, `{}`), email)

	assert.Equal(t, domain.Float64Ptr(2.5), got.CargoCBM)
	require.NotNil(t, got.DestinationPortCode)
	assert.Equal(t, "INMAA", *got.DestinationPortCode)
}

func TestNormalize_Dangerous(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))

	tests := []struct {
		name  string
		email domain.Email
		llm   string
		want  bool
	}{
		{"negation overrides model", domain.Email{Body: "non-DG general cargo"}, `{"is_dangerous":true}`, false},
		{"keyword overrides model", domain.Email{Body: "Class 3 flammable liquids"}, `{"is_dangerous":false}`, true},
		{"no keyword is false", domain.Email{Body: "garments"}, `{"is_dangerous":"yes"}`, false},
		{"subject keyword", domain.Email{Subject: "DG shipment", Body: "see details"}, `{}`, true},
		{"model used without text", domain.Email{}, `{"is_dangerous":"true"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := n.Normalize(candidate(t, tt.llm), tt.email)
			assert.Equal(t, tt.want, got.IsDangerous)
		})
	}
}

func TestNormalize_ProductLineIgnoresModel(t *testing.T) {
	n := validator.NewNormalizer(testTable(t))
	c := candidate(t, `{"product_line":"pl_sea_import_lcl","origin_port_code":"CNSHA","destination_port_code":"DEHAM"}`)

	got, anomalies := n.Normalize(c, domain.Email{ID: "E7", Body: "quote"})

	assert.Nil(t, got.ProductLine)
	assert.Contains(t, anomalies, validator.Anomaly{
		Field: "product_line", Value: "pl_sea_import_lcl", Reason: "overridden by port codes",
	})
}

func TestDegraded(t *testing.T) {
	want := domain.ShipmentRecord{EmailID: "EMAIL_009", Incoterm: "FOB"}
	if diff := cmp.Diff(want, validator.Degraded("EMAIL_009")); diff != "" {
		t.Errorf("Degraded() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnomaly_Error(t *testing.T) {
	a := validator.Anomaly{Field: "cargo_cbm", Value: "-1", Reason: "negative quantity"}
	assert.Equal(t, `cargo_cbm: negative quantity ("-1")`, a.Error())
	assert.Equal(t, "incoterm: defaulted", validator.Anomaly{Field: "incoterm", Reason: "defaulted"}.Error())
}
