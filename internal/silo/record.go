package silo

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Material types handled by the storage site.
const (
	MaterialFineSand   = "Fine Sand"
	MaterialCoarseSand = "Coarse Sand"
	MaterialMixedSand  = "Mixed Sand"
)

// Transfer operation types.
const (
	TransferInflow  = "inflow"
	TransferOutflow = "outflow"
)

// Sensor statuses.
const (
	SensorOperational = "operational"
	SensorMalfunction = "malfunction"
	SensorMaintenance = "maintenance"
)

// TransferOperation is a single material movement in or out of a silo.
type TransferOperation struct {
	Type          string  `json:"type"`
	Volume        float64 `json:"volume"`
	DurationHours float64 `json:"durationHours"`
	Timestamp     string  `json:"timestamp"`
}

// SensorStatus reports the state of one sensor on a silo.
type SensorStatus struct {
	SensorID            string `json:"sensorId"`
	Status              string `json:"status"`
	LastCalibrationDate string `json:"lastCalibrationDate,omitempty"`
}

// Record is one silo's operational snapshot for a single day.
type Record struct {
	Date                    string              `json:"date"`
	SiloID                  string              `json:"siloId"`
	CurrentVolumePercentage float64             `json:"currentVolumePercentage"`
	DailyVolumeChange       float64             `json:"dailyVolumeChange"`
	MaterialType            string              `json:"materialType"`
	TransferOperations      []TransferOperation `json:"transferOperations"`
	SensorStatus            []SensorStatus      `json:"sensorStatus"`
	Temperature             *float64            `json:"temperature,omitempty"`
	Humidity                *float64            `json:"humidity,omitempty"`
	Notes                   string              `json:"notes,omitempty"`
}

// samplePayload matches the fixture file envelope.
type samplePayload struct {
	SiloData []Record `json:"siloData"`
}

// LoadSample reads the bundled sample records from path.
func LoadSample(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample data file '%s': %w", path, err)
	}

	var payload samplePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse sample data: %w", err)
	}

	return payload.SiloData, nil
}

func validTimestamp(s string) bool {
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
