package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/model"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/cetmatch/config/builders"
// 以触发内置分类器（lr、forest、rule、rpc）的 init 注册。

// ClassifierBuilder 根据 params 构建分类器。
type ClassifierBuilder func(params map[string]any) (model.Classifier, error)

var (
	defaultBuilders   = make(map[string]ClassifierBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种分类器的构建逻辑。
// 建议在 init 中调用，例如：func init() { config.Register("lr", BuildLR) }
func Register(typeName string, builder ClassifierBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的分类器类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// BuildClassifier 按配置构建分类器，未注册类型或构建失败都返回 CONFIGURATION 错误。
func BuildClassifier(cfg ClassifierConfig) (model.Classifier, error) {
	defaultBuildersMu.RLock()
	builder, ok := defaultBuilders[cfg.Type]
	defaultBuildersMu.RUnlock()
	if !ok {
		return nil, core.NewConfigurationError(core.ModuleModel,
			fmt.Sprintf("unsupported classifier type %q (supported: %v)", cfg.Type, SupportedTypes()), nil)
	}

	params := cfg.Params
	if params == nil {
		params = map[string]any{}
	}
	clf, err := builder(params)
	if err != nil {
		return nil, core.NewConfigurationError(core.ModuleModel, "build classifier "+cfg.Type, err)
	}
	return clf, nil
}
