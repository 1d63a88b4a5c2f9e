package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/silosight/internal/silo"
)

func fullRecord() silo.Record {
	temp := 25.5
	humidity := 40.0
	return silo.Record{
		Date:                    "2024-03-15",
		SiloID:                  "SILO-001",
		CurrentVolumePercentage: 85,
		DailyVolumeChange:       -45,
		MaterialType:            silo.MaterialCoarseSand,
		TransferOperations: []silo.TransferOperation{
			{Type: silo.TransferInflow, Volume: 150, DurationHours: 2.25, Timestamp: "2024-03-15T08:30:00Z"},
			{Type: silo.TransferOutflow, Volume: 30, DurationHours: 0.5, Timestamp: "2024-03-15T14:15:00Z"},
		},
		SensorStatus: []silo.SensorStatus{
			{SensorID: "LVL-001", Status: silo.SensorOperational, LastCalibrationDate: "2024-02-28"},
			{SensorID: "TMP-001", Status: silo.SensorMalfunction},
		},
		Temperature: &temp,
		Humidity:    &humidity,
		Notes:       "Pressure fluctuation observed.",
	}
}

func TestFormatContainsEveryPresentField(t *testing.T) {
	doc := Format(fullRecord())

	for _, want := range []string{
		"SILO-001",
		"2024-03-15",
		"85%",
		"-45 tons",
		"Coarse Sand",
		"inflow: 150 tons over 2.25 hours at 2024-03-15T08:30:00Z",
		"outflow: 30 tons over 0.5 hours at 2024-03-15T14:15:00Z",
		"LVL-001: operational (Last calibrated: 2024-02-28)",
		"TMP-001: malfunction",
		"Temperature: 25.5°C",
		"Humidity: 40%",
		"Notes: Pressure fluctuation observed.",
	} {
		assert.Contains(t, doc.Content, want)
	}
}

func TestFormatOmitsAbsentOptionalFields(t *testing.T) {
	rec := fullRecord()
	rec.Temperature = nil
	rec.Humidity = nil
	rec.Notes = ""

	doc := Format(rec)

	assert.NotContains(t, doc.Content, "Temperature:")
	assert.NotContains(t, doc.Content, "Humidity:")
	assert.NotContains(t, doc.Content, "Notes:")
}

func TestFormatOmitsCalibrationWhenAbsent(t *testing.T) {
	rec := fullRecord()
	rec.SensorStatus = []silo.SensorStatus{{SensorID: "S1", Status: silo.SensorOperational}}

	doc := Format(rec)
	assert.NotContains(t, doc.Content, "Last calibrated")
}

func TestFormatMetadata(t *testing.T) {
	doc := Format(fullRecord())

	assert.Equal(t, "2024-03-15", doc.Metadata["date"])
	assert.Equal(t, "SILO-001", doc.Metadata["siloId"])
	assert.Equal(t, silo.MaterialCoarseSand, doc.Metadata["materialType"])
}

func TestFormatIsDeterministic(t *testing.T) {
	a := Format(fullRecord())
	b := Format(fullRecord())
	assert.Equal(t, a.Content, b.Content)
}

func TestFormatHasNoTrailingWhitespace(t *testing.T) {
	doc := Format(fullRecord())
	require.NotEmpty(t, doc.Content)
	assert.Equal(t, strings.TrimSpace(doc.Content), doc.Content)
}
