package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskGeocodeWarm = "geocoding.warm"

// GeocodeWarmPayload limits a warm-up run to the Limit cities with the most
// sold listings. Zero means all of them.
type GeocodeWarmPayload struct {
	Limit int `json:"limit,omitempty"`
}

func NewGeocodeWarmTask(payload GeocodeWarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeocodeWarm, data), nil
}

func ParseGeocodeWarmPayload(task *asynq.Task) (GeocodeWarmPayload, error) {
	var payload GeocodeWarmPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GeocodeWarmPayload{}, err
	}
	return payload, nil
}
