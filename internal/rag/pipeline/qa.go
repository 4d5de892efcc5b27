package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"

	"helperbot/internal/rag/interfaces"
	"helperbot/internal/rag/schema"
	"helperbot/pkg/logger"
)

// QAPipeline produces an answer for one question: it retrieves context
// chunks, renders the prompt template with them, and asks the chat model.
//
// The template lives in an external file so the business rules it encodes
// (contact details, product list, pricing script) can change without a
// redeploy. It is parsed once at construction.
type QAPipeline struct {
	retrieval *RetrievalPipeline
	llm       interfaces.LLM
	tmpl      *template.Template
	log       *logger.Logger
}

// promptData is the template's dot.
type promptData struct {
	Context  string
	Question string
}

// NewQAPipeline creates a QAPipeline with the prompt template read from
// promptPath. A missing or unparsable template is a startup error, not a
// per-request one.
func NewQAPipeline(retrieval *RetrievalPipeline, llm interfaces.LLM, promptPath string, log *logger.Logger) (*QAPipeline, error) {
	raw, err := os.ReadFile(promptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt template: %w", err)
	}
	tmpl, err := template.New("answer").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &QAPipeline{
		retrieval: retrieval,
		llm:       llm,
		tmpl:      tmpl,
		log:       log,
	}, nil
}

// Run answers a question using retrieved context. The model's output is
// returned unmodified; no structured parsing is applied.
func (p *QAPipeline) Run(ctx context.Context, question string) (string, error) {
	docs, err := p.retrieval.Run(ctx, question)
	if err != nil {
		return "", err
	}

	prompt, err := p.renderPrompt(question, docs)
	if err != nil {
		return "", err
	}

	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	p.log.Debug("Generated answer from chat model")
	return answer, nil
}

func (p *QAPipeline) renderPrompt(question string, docs []*schema.Document) (string, error) {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(doc.Text)
	}

	var out bytes.Buffer
	if err := p.tmpl.Execute(&out, promptData{Context: sb.String(), Question: question}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return out.String(), nil
}
