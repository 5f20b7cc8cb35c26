package cache

import "github.com/google/uuid"

func jobStatusKey(jobID uuid.UUID) string {
	return "linkstash:job:" + jobID.String() + ":status"
}
