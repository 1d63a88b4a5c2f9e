package silo

import "fmt"

// ValidationError reports a single invariant violation in an incoming record.
// Validation happens at the API boundary before any indexing work starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Message)
}

var materialTypes = map[string]bool{
	MaterialFineSand:   true,
	MaterialCoarseSand: true,
	MaterialMixedSand:  true,
}

var transferTypes = map[string]bool{
	TransferInflow:  true,
	TransferOutflow: true,
}

var sensorStatuses = map[string]bool{
	SensorOperational: true,
	SensorMalfunction: true,
	SensorMaintenance: true,
}

// Validate checks every invariant on the record. The first violation found is
// returned as a *ValidationError.
func (r Record) Validate() error {
	if r.SiloID == "" {
		return &ValidationError{Field: "siloId", Message: "required"}
	}
	if r.Date == "" {
		return &ValidationError{Field: "date", Message: "required"}
	}
	if !validDate(r.Date) {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("'%s' is not a YYYY-MM-DD date", r.Date)}
	}
	if r.CurrentVolumePercentage < 0 || r.CurrentVolumePercentage > 100 {
		return &ValidationError{
			Field:   "currentVolumePercentage",
			Message: fmt.Sprintf("%v is outside [0,100]", r.CurrentVolumePercentage),
		}
	}
	if !materialTypes[r.MaterialType] {
		return &ValidationError{Field: "materialType", Message: fmt.Sprintf("unknown material type '%s'", r.MaterialType)}
	}

	for i, op := range r.TransferOperations {
		field := fmt.Sprintf("transferOperations[%d]", i)
		if !transferTypes[op.Type] {
			return &ValidationError{Field: field + ".type", Message: fmt.Sprintf("unknown transfer type '%s'", op.Type)}
		}
		if op.Volume < 0 {
			return &ValidationError{Field: field + ".volume", Message: "must not be negative"}
		}
		if op.DurationHours < 0 {
			return &ValidationError{Field: field + ".durationHours", Message: "must not be negative"}
		}
		if !validTimestamp(op.Timestamp) {
			return &ValidationError{Field: field + ".timestamp", Message: fmt.Sprintf("'%s' is not an RFC 3339 timestamp", op.Timestamp)}
		}
	}

	for i, sensor := range r.SensorStatus {
		field := fmt.Sprintf("sensorStatus[%d]", i)
		if sensor.SensorID == "" {
			return &ValidationError{Field: field + ".sensorId", Message: "required"}
		}
		if !sensorStatuses[sensor.Status] {
			return &ValidationError{Field: field + ".status", Message: fmt.Sprintf("unknown sensor status '%s'", sensor.Status)}
		}
		if sensor.LastCalibrationDate != "" && !validTimestamp(sensor.LastCalibrationDate) && !validDate(sensor.LastCalibrationDate) {
			return &ValidationError{Field: field + ".lastCalibrationDate", Message: fmt.Sprintf("'%s' is not a valid date", sensor.LastCalibrationDate)}
		}
	}

	if r.Humidity != nil && (*r.Humidity < 0 || *r.Humidity > 100) {
		return &ValidationError{Field: "humidity", Message: fmt.Sprintf("%v is outside [0,100]", *r.Humidity)}
	}

	return nil
}

// ValidateAll validates a batch and rejects on the first bad record, so no
// partial indexing of invalid input can happen downstream.
func ValidateAll(records []Record) error {
	if len(records) == 0 {
		return &ValidationError{Field: "siloData", Message: "at least one record is required"}
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("record %d (silo '%s'): %w", i, rec.SiloID, err)
		}
	}
	return nil
}
