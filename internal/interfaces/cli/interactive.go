package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"docgen-ai-api/internal/application/questionnaire"
	"docgen-ai-api/internal/domain/entity"
)

// 交互命令：空行保留当前答案，":back" 返回上一步
const cmdBack = ":back"

var errInputClosed = errors.New("input closed before questionnaire was submitted")

func newInteractiveCommand(root *rootOptions) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Answer the questionnaire step by step, then generate",
		Long: `Walk through the five questionnaire steps on the terminal.

Press enter on an empty line to keep the current answer, or type :back
to return to the previous step. Documents are generated after the last step.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := collect(cmd.InOrStdin(), cmd.ErrOrStderr(), questionnaire.NewCollector())
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), root, q, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "docs", "Output directory")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print the combined markdown instead of writing files")
	return cmd
}

// collect 逐行读取答案驱动 Collector，直到提交成功
func collect(in io.Reader, w io.Writer, c *questionnaire.Collector) (entity.QuestionnaireResponse, error) {
	scanner := bufio.NewScanner(in)
	for {
		field := c.CurrentField()
		step := c.Step()
		fmt.Fprintf(w, "%s %s\n",
			styleTitle.Render(fmt.Sprintf("Step %d/%d", step, questionnaire.LastStep)),
			field.Label())
		if cur := c.Response().Get(field); cur != "" {
			fmt.Fprintln(w, styleMuted.Render("  current: "+cur))
		}
		fmt.Fprint(w, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return entity.QuestionnaireResponse{}, err
			}
			return entity.QuestionnaireResponse{}, errInputClosed
		}
		line := strings.TrimSpace(scanner.Text())

		if line == cmdBack {
			c.GoToPreviousStep()
			continue
		}
		if line != "" {
			if err := c.UpdateField(field, line); err != nil {
				return entity.QuestionnaireResponse{}, err
			}
		}

		if c.GoToNextStep() {
			continue
		}
		if msg, bad := c.Errors()[field]; bad {
			fmt.Fprintln(w, styleError.Render("  "+msg))
			continue
		}

		// 最后一步通过，整体提交
		q, ok := c.Submit()
		if ok {
			return q, nil
		}
		errs := c.Errors()
		for _, f := range entity.QuestionnaireFields() {
			if msg, bad := errs[f]; bad {
				fmt.Fprintf(w, "  %s %s\n", styleError.Render(f.Label()+":"), msg)
			}
		}
	}
}
