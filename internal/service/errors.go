package service

import (
	"errors"
	"fmt"
)

// FailureKind 工作流失败的封闭类别。调用方和测试据此区分失败来源，
// 不需要匹配错误消息字符串。
type FailureKind string

const (
	FailureUpload      FailureKind = "upload_failed"
	FailureAnalysis    FailureKind = "analysis_failed"
	FailurePersistence FailureKind = "persistence_failed"
	FailureStatsUpdate FailureKind = "stats_update_failed"
)

// WorkflowError 带类别的工作流错误，保留原始 cause
type WorkflowError struct {
	Kind      FailureKind
	AttemptID string
	Err       error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s (attempt %s): %v", e.Kind, e.AttemptID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func newWorkflowError(kind FailureKind, attemptID string, cause error) *WorkflowError {
	return &WorkflowError{Kind: kind, AttemptID: attemptID, Err: cause}
}

func isKind(err error, kind FailureKind) bool {
	var we *WorkflowError
	return errors.As(err, &we) && we.Kind == kind
}

func IsUploadFailure(err error) bool      { return isKind(err, FailureUpload) }
func IsAnalysisFailure(err error) bool    { return isKind(err, FailureAnalysis) }
func IsPersistenceFailure(err error) bool { return isKind(err, FailurePersistence) }
func IsStatsUpdateFailure(err error) bool { return isKind(err, FailureStatsUpdate) }
