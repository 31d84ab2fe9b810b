package engine

import (
	"context"

	"github.com/rushteam/cetmatch/core"
)

// Unavailable 是初始化失败时使用的 Matcher：每次查询都立即返回初始化错误，
// 让进程仍能提供健康检查并清楚地报告失败原因。
type Unavailable struct {
	Cause error
}

// NewUnavailable 包装初始化错误；非领域错误按 CONFIGURATION 处理。
func NewUnavailable(cause error) *Unavailable {
	if !core.IsDomainError(cause) {
		cause = core.NewConfigurationError(core.ModuleEngine, "engine: initialization failed", cause)
	}
	return &Unavailable{Cause: cause}
}

func (u *Unavailable) Match(context.Context, core.Query) ([]string, error) {
	return nil, u.Cause
}

func (u *Unavailable) Explain(context.Context, core.Query) (*Outcome, error) {
	return nil, u.Cause
}
