package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agenthands/silosight/internal/silo"
)

// Document is the flat-text rendering of a record plus the metadata that
// survives into the vector index. Documents are transient: they are rebuilt
// from records on every pipeline invocation and never persisted themselves.
type Document struct {
	Content  string
	Metadata map[string]any
}

// Format renders every field of the record into a labeled text block.
// Optional fields that are absent produce no line at all; the omission is part
// of the contract because it affects embedding similarity downstream.
func Format(rec silo.Record) Document {
	var b strings.Builder

	fmt.Fprintf(&b, "Silo %s Status Report for %s:\n", rec.SiloID, rec.Date)
	fmt.Fprintf(&b, "Current Volume: %s%%\n", num(rec.CurrentVolumePercentage))
	fmt.Fprintf(&b, "Daily Volume Change: %s tons\n", num(rec.DailyVolumeChange))
	fmt.Fprintf(&b, "Material Type: %s\n", rec.MaterialType)

	b.WriteString("\nTransfer Operations:\n")
	for _, op := range rec.TransferOperations {
		fmt.Fprintf(&b, "- %s: %s tons over %s hours at %s\n",
			op.Type, num(op.Volume), num(op.DurationHours), op.Timestamp)
	}

	b.WriteString("\nSensor Status:\n")
	for _, sensor := range rec.SensorStatus {
		fmt.Fprintf(&b, "- %s: %s", sensor.SensorID, sensor.Status)
		if sensor.LastCalibrationDate != "" {
			fmt.Fprintf(&b, " (Last calibrated: %s)", sensor.LastCalibrationDate)
		}
		b.WriteString("\n")
	}

	if rec.Temperature != nil {
		fmt.Fprintf(&b, "\nTemperature: %s°C\n", num(*rec.Temperature))
	}
	if rec.Humidity != nil {
		fmt.Fprintf(&b, "Humidity: %s%%\n", num(*rec.Humidity))
	}
	if rec.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", rec.Notes)
	}

	return Document{
		Content: strings.TrimSpace(b.String()),
		Metadata: map[string]any{
			"date":         rec.Date,
			"siloId":       rec.SiloID,
			"materialType": rec.MaterialType,
		},
	}
}

// num renders a float without a trailing ".0" for whole values.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
