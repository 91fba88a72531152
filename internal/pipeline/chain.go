package pipeline

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/seithi/internal/domain"
)

// Stage is one acquisition strategy of a fallback chain. Run returns normalized articles.
type Stage struct {
	Name string
	Run  func(ctx context.Context) ([]domain.Article, error)
}

// Outcome is what a stage produced.
type Outcome struct {
	Stage    string
	Articles []domain.Article
}

// Sufficient reports whether the chain may stop at this outcome.
func (o Outcome) Sufficient() bool { return len(o.Articles) > 0 }

// Recorder receives pipeline events for instrumentation.
type Recorder interface {
	Stage(chain, stage string, articles int)
	SourceYield(source string, articles int, err error)
	Placeholder(kind string)
}

type nopRecorder struct{}

func (nopRecorder) Stage(string, string, int)      {}
func (nopRecorder) SourceYield(string, int, error) {}
func (nopRecorder) Placeholder(string)             {}

// fold runs stages in order and stops at the first sufficient outcome. Stage errors and panics
// count as zero articles.
func (s *Service) fold(ctx context.Context, chain string, stages []Stage) Outcome {
	for _, st := range stages {
		articles, err := runStage(ctx, st)
		s.metrics.Stage(chain, st.Name, len(articles))
		if err != nil {
			s.log.WarnObj("fallback stage failed", "stage_error", map[string]any{
				"chain": chain,
				"stage": st.Name,
				"error": err.Error(),
			})
		}

		out := Outcome{Stage: st.Name, Articles: articles}
		if out.Sufficient() {
			s.log.DebugObj("fallback stage satisfied", "stage", map[string]any{
				"chain":    chain,
				"stage":    st.Name,
				"articles": len(articles),
			})
			return out
		}
	}
	return Outcome{}
}

func runStage(ctx context.Context, st Stage) (articles []domain.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			articles, err = nil, fmt.Errorf("stage %s panicked: %v", st.Name, r)
		}
	}()
	return st.Run(ctx)
}
