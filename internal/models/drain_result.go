package models

import "time"

type DrainResult struct {
	Synced     int       `json:"synced"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (d DrainResult) Total() int {
	return d.Synced + d.Failed
}
