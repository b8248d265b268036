package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aurida/helpline/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive support conversation in the terminal",
	Long:  `Opens a conversation against the configured engine and reads user messages from stdin until the conversation ends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		lang, _ := cmd.Flags().GetString("lang")
		resume, _ := cmd.Flags().GetString("resume")

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		render := newReplyRenderer(interactive)

		if interactive {
			printBanner()
		}

		ctx := cmd.Context()
		state, reply, err := a.service.Start(ctx, resume, languageFromFlag(lang))
		if err != nil {
			return err
		}
		conversationID := state.ConversationID

		if interactive {
			fmt.Printf("Conversation: %s (ctrl-d to quit)\n\n", conversationID)
		}
		if reply != "" {
			fmt.Print(render(reply))
		}

		scanner := bufio.NewScanner(os.Stdin)
		for !state.Flags.ConversationEnded {
			if interactive {
				fmt.Print("> ")
			}
			if !scanner.Scan() {
				break
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			state, reply, err = a.service.ProcessMessage(ctx, conversationID, text)
			if err != nil {
				return err
			}
			if reply != "" {
				fmt.Print(render(reply))
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		return nil
	},
}

// newReplyRenderer renders assistant replies as markdown on a terminal and
// as plain text when piped.
func newReplyRenderer(interactive bool) func(string) string {
	if !interactive {
		return func(text string) string {
			return text + "\n"
		}
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return func(text string) string {
			return text + "\n"
		}
	}
	return func(text string) string {
		out, err := r.Render(text)
		if err != nil {
			return text + "\n"
		}
		return out
	}
}

func languageFromFlag(s string) domain.Language {
	return domain.Language(strings.ToLower(strings.TrimSpace(s)))
}

func printBanner() {
	p := termenv.ColorProfile()
	title := termenv.String("  helpline").Foreground(p.Color("#38bdf8")).Bold()
	sub := termenv.String("  ISP support conversation engine").Foreground(p.Color("#64748b"))
	fmt.Println()
	fmt.Println(title)
	fmt.Println(sub)
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("lang", "l", "", "Conversation language (lt or en), defaults to the configured language")
	chatCmd.Flags().String("resume", "", "Resume an existing conversation by id")
}
