package model

import "time"

// Project groups cable results under one engineering project.
type Project struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	PlantType        string    `json:"plant_type,omitempty"`
	Standard         string    `json:"standard,omitempty"`
	VoltageLevels    []float64 `json:"voltage_levels,omitempty"`
	ServiceCondition string    `json:"service_condition,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
