package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有对外暴露的错误都使用此类型
//   - 提供错误代码（Code）、模块（Module）和消息（Message）
//   - Cause 保留底层错误，支持 errors.Is / errors.As 透传
//
// 错误分类：
//   - CONFIGURATION：编码器/分类器缺失或无法加载
//   - DATA：数据集缺少必需列、数据源不可读
//   - EMPTY_POOL：候选池为空，没有任何可用的降级
//   - MATCHING_FAILURE：编码、分类等阶段内部失败
//   - INVALID_INPUT：查询参数不合法
//   - CONFLICT / UNAUTHORIZED：注册邮箱重复、登录凭证无效
type DomainError struct {
	Code    string // 错误代码（如 "EMPTY_POOL", "DATA"）
	Message string // 错误消息
	Module  string // 模块名称（如 "engine", "dataset"）
	Cause   error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, cause error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// 错误代码常量
const (
	ErrorCodeConfiguration   = "CONFIGURATION"    // 编码器/分类器不可用
	ErrorCodeData            = "DATA"             // 数据缺失或格式错误
	ErrorCodeEmptyPool       = "EMPTY_POOL"       // 候选池为空
	ErrorCodeMatchingFailure = "MATCHING_FAILURE" // 匹配阶段内部失败
	ErrorCodeInvalidInput    = "INVALID_INPUT"    // 输入无效
	ErrorCodeNotFound        = "NOT_FOUND"        // 资源不存在
	ErrorCodeConflict        = "CONFLICT"         // 资源已存在
	ErrorCodeUnauthorized    = "UNAUTHORIZED"     // 凭证无效
)

// 模块名称常量
const (
	ModuleEngine  = "engine"
	ModuleDataset = "dataset"
	ModuleFeature = "feature"
	ModuleModel   = "model"
	ModuleStore   = "store"
	ModuleConfig  = "config"
	ModuleAuth    = "auth"
)

// ErrEmptyPool 表示候选池中没有任何记录
var ErrEmptyPool = NewDomainError(ModuleEngine, ErrorCodeEmptyPool, "engine: candidate pool is empty")

// NewConfigurationError 创建 CONFIGURATION 错误
func NewConfigurationError(module, message string, cause error) *DomainError {
	return WrapDomainError(module, ErrorCodeConfiguration, message, cause)
}

// NewDataError 创建 DATA 错误
func NewDataError(message string, cause error) *DomainError {
	return WrapDomainError(ModuleDataset, ErrorCodeData, message, cause)
}

// NewMatchingFailure 创建 MATCHING_FAILURE 错误，cause 为触发失败的阶段错误
func NewMatchingFailure(stage string, cause error) *DomainError {
	return WrapDomainError(ModuleEngine, ErrorCodeMatchingFailure, "engine: stage "+stage+" failed", cause)
}

// NewInvalidInputError 创建 INVALID_INPUT 错误
func NewInvalidInputError(message string, cause error) *DomainError {
	return WrapDomainError(ModuleEngine, ErrorCodeInvalidInput, message, cause)
}

func hasCode(err error, code string) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Code == code
}

// IsConfigurationError 检查错误是否为 CONFIGURATION
func IsConfigurationError(err error) bool { return hasCode(err, ErrorCodeConfiguration) }

// IsDataError 检查错误是否为 DATA
func IsDataError(err error) bool { return hasCode(err, ErrorCodeData) }

// IsEmptyPool 检查错误是否为 EMPTY_POOL
func IsEmptyPool(err error) bool { return hasCode(err, ErrorCodeEmptyPool) }

// IsMatchingFailure 检查错误是否为 MATCHING_FAILURE
func IsMatchingFailure(err error) bool { return hasCode(err, ErrorCodeMatchingFailure) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsConflict 检查错误是否为 CONFLICT
func IsConflict(err error) bool { return hasCode(err, ErrorCodeConflict) }

// IsUnauthorized 检查错误是否为 UNAUTHORIZED
func IsUnauthorized(err error) bool { return hasCode(err, ErrorCodeUnauthorized) }
