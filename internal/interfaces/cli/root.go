// Package cli docgen 命令行：从答案文件或交互问答生成七份项目文档。
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/infrastructure/llm"
	"docgen-ai-api/internal/infrastructure/persistence/memory"
	einoobs "docgen-ai-api/internal/observability/eino"
	"docgen-ai-api/internal/workflow/chain"
	workflowprompt "docgen-ai-api/internal/workflow/prompt"
	"docgen-ai-api/pkg/logger"
)

// GeneratorBuilder 按配置构造生成器，测试中替换为假模型
type GeneratorBuilder func(cfg *config.Config) (*docgen.Generator, error)

// DefaultGeneratorBuilder 真实模型 + 进程内存储；--log-level debug 时输出每次模型调用的 token 用量
func DefaultGeneratorBuilder(cfg *config.Config) (*docgen.Generator, error) {
	einoobs.Init(cfg.Observability)

	factory := llm.NewEinoFactory(cfg)
	dc := chain.NewDocumentChain(factory, workflowprompt.NewRegistry(), cfg.Generation.AttemptTimeout)

	store := memory.NewStore()
	storage := docgen.NewStorage(store, store.Projects(), store.Documents(), nil, 0)
	return docgen.NewGenerator(dc, storage, docgen.OptionsFromConfig(cfg, factory))
}

type rootOptions struct {
	configDir string
	logLevel  string
	build     GeneratorBuilder
}

// NewRootCommand 组装全部子命令
func NewRootCommand(build GeneratorBuilder) *cobra.Command {
	opts := &rootOptions{build: build}

	root := &cobra.Command{
		Use:   "docgen",
		Short: "Generate project documentation from a questionnaire",
		Long: `docgen turns a short project questionnaire into seven markdown documents:
project requirements, backend structure, tech stack, frontend guidelines,
file structure, app flow and system prompts.

Examples:
  docgen validate --answers answers.yaml
  docgen generate --answers answers.yaml --out ./docs
  docgen interactive --out ./docs
  docgen token --user alice`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.InitWithWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
		},
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "configs", "Directory containing config.yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newGenerateCommand(opts),
		newInteractiveCommand(opts),
		newValidateCommand(),
		newTokenCommand(opts),
	)
	return root
}

// loadConfig 命令行的 --log-level 覆盖配置文件中的日志级别
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configDir)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Observability.Logging.Level = o.logLevel
	}
	return cfg, nil
}

// Execute 运行命令行
func Execute() {
	if err := NewRootCommand(DefaultGeneratorBuilder).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
