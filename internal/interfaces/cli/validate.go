package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"docgen-ai-api/internal/application/questionnaire"
	"docgen-ai-api/internal/domain/entity"
)

// errInvalidAnswers 校验失败，明细已打印
var errInvalidAnswers = fmt.Errorf("questionnaire is invalid")

// loadAnswers 读取 YAML 答案文件，JSON 同样可读
func loadAnswers(path string) (entity.QuestionnaireResponse, error) {
	var q entity.QuestionnaireResponse
	data, err := os.ReadFile(path)
	if err != nil {
		return q, fmt.Errorf("failed to read answers: %w", err)
	}
	if err := yaml.Unmarshal(data, &q); err != nil {
		return q, fmt.Errorf("failed to parse answers %s: %w", path, err)
	}
	return q, nil
}

// printValidation 按字段顺序打印错误，全部通过返回 true
func printValidation(w io.Writer, q entity.QuestionnaireResponse) bool {
	errs := questionnaire.Validate(q)
	if len(errs) == 0 {
		fmt.Fprintln(w, styleSuccess.Render("✓ questionnaire is valid"))
		return true
	}
	fmt.Fprintln(w, styleError.Render("✗ questionnaire is invalid"))
	for _, f := range entity.QuestionnaireFields() {
		if msg, ok := errs[f]; ok {
			fmt.Fprintf(w, "  %s %s\n", styleMuted.Render(f.Label()+":"), msg)
		}
	}
	return false
}

func newValidateCommand() *cobra.Command {
	var answers string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a questionnaire answers file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := loadAnswers(answers)
			if err != nil {
				return err
			}
			if !printValidation(cmd.OutOrStdout(), q) {
				return errInvalidAnswers
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&answers, "answers", "a", "", "Path to answers file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
