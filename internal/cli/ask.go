package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"library-assistant-be/internal/dto"
	"library-assistant-be/internal/service"
	"library-assistant-be/pkg/rag/stream"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	askUser    int
	askSession string
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the assistant one question",
	Long: `Ask the assistant one question and stream the answer.

Mention a count to change how many books are considered, for example
"recommend 3 cozy mysteries".

Examples:
  librarian ask "fast-paced sci-fi books about revenge"
  librarian ask "something like Red Rising" --user 4`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Hold a multi-turn conversation",
	Long: `Read messages from stdin, one per line, and keep the conversation
history between them. Follow-up questions reuse the books found earlier.
An empty line or EOF ends the session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	askCmd.Flags().IntVarP(&askUser, "user", "u", 0, "answer as this user id (personalized)")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session id for context reuse")

	chatCmd.Flags().IntVarP(&askUser, "user", "u", 0, "answer as this user id (personalized)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	req := &dto.ChatRequest{
		SessionId: askSession,
		Messages:  []dto.ChatMessageDTO{{Role: "user", Content: args[0]}},
	}
	_, err := turn(ctx, newPrinter(cmd.OutOrStdout()), req)
	return err
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := newPrinter(cmd.OutOrStdout())
	session := uuid.NewString()
	var history []dto.ChatMessageDTO

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		p.title.Fprint(p.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return nil
		}

		history = append(history, dto.ChatMessageDTO{Role: "user", Content: line})
		answer, err := turn(ctx, p, &dto.ChatRequest{SessionId: session, Messages: history})
		if err != nil {
			return err
		}
		history = append(history, dto.ChatMessageDTO{Role: "assistant", Content: answer})
		fmt.Fprintln(p.out)
	}
}

// turn streams one reply to p and returns its prose for the history.
func turn(ctx context.Context, p *printer, req *dto.ChatRequest) (string, error) {
	var prose strings.Builder
	_, err := container.ChatService.Stream(ctx, req, userFlag(askUser), service.TransportCLI, func(e stream.Event) error {
		if e.Kind == stream.KindText {
			prose.WriteString(e.Text)
		}
		return p.emit(e)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(prose.String()), nil
}
