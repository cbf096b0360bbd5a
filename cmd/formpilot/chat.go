package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formpilot/agent"
	"github.com/tbxark/formpilot/catalog"
	"github.com/tbxark/formpilot/config"
	"github.com/tbxark/formpilot/types"
)

const chatSessionID = "terminal"

// chat runs the engine in the terminal. Without a PDF the well-known
// registration fields from the catalog are used.
func chat(ctx context.Context, cfg *config.Config, pdfPath string) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx = agent.WithSessionID(ctx, chatSessionID)
	documentURL, fields, err := loadFields(ctx, a, pdfPath)
	if err != nil {
		return err
	}
	intro, err := a.engine.CreateSession(ctx, chatSessionID, documentURL, fields)
	if err != nil {
		return err
	}

	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: agent.NewAgent("FormPilot", "Guides users through filling PDF forms field by field", a.engine),
	})
	transcript := agent.NewMemoryTranscriptStore(agent.KeepLastNTrimmer{N: 20})
	if _, err := transcript.Append(ctx, chatSessionID, schema.AssistantMessage(intro, nil)); err != nil {
		return err
	}

	fmt.Printf("Willkommen bei FormPilot! Schreibe \"befehle\" für alle Befehle.\n\nAssistent: %s\n", intro)
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\nDu: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("\nEingabe beendet.")
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		history, aErr := transcript.Append(ctx, chatSessionID, schema.UserMessage(input))
		if aErr != nil {
			return aErr
		}
		iter := runner.Run(ctx, history)
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			if _, aErr := transcript.Append(ctx, chatSessionID, msg); aErr != nil {
				return aErr
			}
			fmt.Printf("\nAssistent: %s\n", msg.Content)
		}

		if done, err := finishIfComplete(ctx, a, documentURL); err != nil {
			return err
		} else if done {
			return transcript.Clear(ctx, chatSessionID)
		}
	}
	return nil
}

func loadFields(ctx context.Context, a *app, pdfPath string) (string, []types.Field, error) {
	if pdfPath == "" {
		names := catalog.Default().Names()
		fields := make([]types.Field, len(names))
		for i, name := range names {
			fields[i] = types.Field{Index: i, Name: name, Type: string(catalog.Classify(name).Type)}
		}
		return "", fields, nil
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", nil, fmt.Errorf("read pdf: %w", err)
	}
	up, err := a.docs.Upload(ctx, data, filepath.Base(pdfPath))
	if err != nil {
		return "", nil, err
	}
	fields, err := a.docs.ExtractFields(ctx, up.URL)
	if err != nil {
		return "", nil, err
	}
	return up.URL, fields, nil
}

// finishIfComplete fills the document once every field was handled.
func finishIfComplete(ctx context.Context, a *app, documentURL string) (bool, error) {
	s, err := a.engine.Session(ctx, chatSessionID)
	if err != nil {
		return false, err
	}
	if !s.Complete() || len(s.Fields) == 0 || documentURL == "" {
		return false, nil
	}
	filled, err := a.docs.Fill(ctx, documentURL, s.Values)
	if err != nil {
		return false, err
	}
	fmt.Printf("\nAusgefülltes PDF: %s\n", filled.URL)
	return true, a.engine.EndSession(ctx, chatSessionID)
}
