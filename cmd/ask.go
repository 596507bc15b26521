package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/chat"
	"github.com/Godzilla108108/agritech/internal/fetch"
)

var flagPlain bool

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask the farming assistant one question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup("")
		if err != nil {
			return err
		}
		defer e.log.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.TimeoutDuration())
		defer cancel()
		src := newSources(ctx, e.cfg, e.log, nil)
		if src.chat == nil {
			return fmt.Errorf("assistant unavailable: %w", src.chatErr)
		}

		msg, err := chat.Answer(ctx, src.chat, strings.Join(args, " "))
		if err != nil {
			e.log.Warn("assistant request failed", zap.String("kind", fetch.Kind(err)), zap.Error(err))
			fmt.Fprintln(cmd.OutOrStdout(), msg.Text)
			return nil
		}

		out := msg.Text
		if !flagPlain {
			if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)); err == nil {
				if rendered, err := r.Render(out); err == nil {
					out = rendered
				}
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&flagPlain, "plain", false, "print markdown without rendering")
}
