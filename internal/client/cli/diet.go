package cli

import (
	"context"
	"fmt"

	"github.com/dharitri-health/portal-cli/internal/client/repositories/chat"
)

// Diet asks the diet consultant a question. If a report is selected its
// analysis text is sent along as context, so the advice can refer to the
// user's actual results.
func (a *App) Diet(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	question, err := GetSimpleText(a.reader, "Enter your diet question", a.out)
	if err != nil {
		return err
	}

	reportText := ""
	if r, ok := a.cache.Selected(); ok {
		reportText = r.AnalysisResult
		fmt.Fprintf(a.out, "(using report %d as context)\n", r.ID)
	}

	answer, err := a.diet.Ask(ctx, question, reportText)
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return err
	}

	fmt.Fprintln(a.out, answer)
	return nil
}

// Chat sends a free-form question to the portal chatbot.
func (a *App) Chat(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	query, err := GetSimpleText(a.reader, "Ask the portal assistant", a.out)
	if err != nil {
		return err
	}

	response, err := a.diet.Chat(ctx, query)
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return err
	}

	fmt.Fprintln(a.out, response)
	return nil
}

const historyLimit = 20

// History prints the stored conversation, newest first.
func (a *App) History(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	messages, err := a.diet.History(ctx, historyLimit)
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return err
	}

	if len(messages) == 0 {
		fmt.Fprintln(a.out, "No conversations yet.")
		return nil
	}
	for _, m := range messages {
		label := "chat"
		if m.Kind == chat.KindDiet {
			label = "diet"
		}
		fmt.Fprintf(a.out, "[%s] %s\n  Q: %s\n  A: %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"), label, m.Question, m.Answer)
	}
	return nil
}
