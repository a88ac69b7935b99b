package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/domain/entity"
)

type generateOptions struct {
	answers string
	outDir  string
	stdout  bool
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate all documents from an answers file",
		Long: `Generate the seven project documents from a questionnaire answers file.

Each document is written to <out>/<document>.md together with a combined
<project-name>-documentation.md. Failed documents are reported and skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := loadAnswers(opts.answers)
			if err != nil {
				return err
			}
			if !printValidation(cmd.ErrOrStderr(), q) {
				return errInvalidAnswers
			}
			return runGenerate(cmd.Context(), root, q, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.answers, "answers", "a", "", "Path to answers file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "docs", "Output directory")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print the combined markdown instead of writing files")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

// runGenerate 生成并输出，进度写到 status，markdown 写到 out
func runGenerate(ctx context.Context, root *rootOptions, q entity.QuestionnaireResponse, opts generateOptions, out, status io.Writer) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	generator, err := root.build(cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	fmt.Fprintln(status, styleTitle.Render("Generating documentation for "+q.ProjectName))
	start := time.Now()
	result, err := generator.GenerateAll(ctx, q,
		docgen.WithProgress(func(p entity.GenerationProgress) { printProgress(status, p) }),
		docgen.WithSlowNotice(func(dt entity.DocumentType, elapsed time.Duration) {
			fmt.Fprintln(status, styleWarning.Render(fmt.Sprintf("  %s is taking longer than usual (%s)", dt.Label(), elapsed.Round(time.Second))))
		}),
	)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	for _, f := range result.Failures {
		fmt.Fprintf(status, "%s %s: %v\n", styleError.Render("✗"), f.DocumentType.Label(), f.Err)
	}
	if len(result.Failures) == entity.TotalDocuments {
		return fmt.Errorf("all documents failed")
	}

	if opts.stdout {
		_, err := io.WriteString(out, docgen.ExportMarkdown(result.Documents))
		return err
	}

	written, err := writeDocuments(opts.outDir, q.ProjectName, result.Documents)
	if err != nil {
		return err
	}
	fmt.Fprintf(status, "%s %d files written to %s in %s\n",
		styleSuccess.Render("✓"), written, opts.outDir, time.Since(start).Round(time.Millisecond))
	return nil
}

func printProgress(w io.Writer, p entity.GenerationProgress) {
	switch p.Status {
	case entity.GenerationGenerating:
		if p.CurrentDocument == nil {
			return
		}
		fmt.Fprintf(w, "%s %s\n",
			styleMuted.Render(fmt.Sprintf("[%d/%d]", p.CurrentStep, p.TotalSteps)),
			p.CurrentDocument.Label())
	case entity.GenerationCompleted:
		fmt.Fprintln(w, styleSuccess.Render("Generation complete"))
	}
}

// writeDocuments 逐篇写文件并写合并文件，空文档跳过，返回写入文件数
func writeDocuments(dir, projectName string, docs entity.GeneratedDocuments) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	n := 0
	for _, dt := range entity.DocumentTypes() {
		content := docs.Get(dt)
		if content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, documentFilename(dt)), []byte(content), 0o644); err != nil {
			return n, fmt.Errorf("failed to write %s: %w", dt, err)
		}
		n++
	}

	combined := filepath.Join(dir, docgen.ExportFilename(projectName))
	if err := os.WriteFile(combined, []byte(docgen.ExportMarkdown(docs)), 0o644); err != nil {
		return n, fmt.Errorf("failed to write %s: %w", combined, err)
	}
	return n + 1, nil
}

// documentFilename "Tech Stack" -> tech-stack.md
func documentFilename(dt entity.DocumentType) string {
	return strings.ReplaceAll(strings.ToLower(dt.Label()), " ", "-") + ".md"
}
