package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeResumeRender = "resume:render"
)

// ResumeRenderPayload 描述渲染一份简历所需的最小信息。
type ResumeRenderPayload struct {
	ResumeID      uint   `json:"resume_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewResumeRenderTask 构造一个新的简历渲染任务。
func NewResumeRenderTask(id uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ResumeRenderPayload{
		ResumeID:      id,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumeRender, payload), nil
}
