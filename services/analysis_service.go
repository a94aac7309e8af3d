package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/itish2003/searchdoc/formatting"
	"github.com/itish2003/searchdoc/metrics"
	"github.com/itish2003/searchdoc/models"
)

const defaultQuestionPrefix = "Provide a comprehensive summary of the information related to: "

// AnalysisService runs the whole query → search → answer → render pipeline.
type AnalysisService interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error)
}

// Analyzer wires the search and LLM collaborators to the formatting core.
type Analyzer struct {
	search   SearchService
	llm      LLMService
	renderer *formatting.DocumentRenderer
	log      *zap.Logger
}

// NewAnalyzer creates a new analysis service. A nil renderer falls back to PDF.
func NewAnalyzer(search SearchService, llm LLMService, renderer *formatting.DocumentRenderer, log *zap.Logger) *Analyzer {
	if renderer == nil {
		renderer = formatting.NewDocumentRenderer(formatting.NewPDFEncoder())
	}
	return &Analyzer{search: search, llm: llm, renderer: renderer, log: log}
}

// DefaultQuestion is asked when the request carries no question of its own.
func DefaultQuestion(query string) string {
	return defaultQuestionPrefix + query
}

// DocumentName derives a stable, filesystem-safe file name from the query.
func DocumentName(query, ext string) string {
	s := slug.Make(query)
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		return "searchdoc" + ext
	}
	return "searchdoc-" + s + ext
}

// Analyze fails with ErrEmptyQuery, a wrapped search or LLM error,
// formatting.ErrEmptyResults when no hit is usable, or a *formatting.StreamError.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalyzeRequest) (resp *models.AnalyzeResponse, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordAnalysis(status, time.Since(start).Seconds())
	}()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	log := a.log.With(zap.String("query", query))

	hits, err := a.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to perform search: %w", err)
	}

	cm, searchContext, err := formatting.BuildCitationMap(hits)
	if err != nil {
		log.Warn("no usable search results", zap.Int("hits", len(hits)))
		return nil, err
	}
	log.Debug("citation map built", zap.Int("citations", cm.Len()), zap.Int("context_chars", len(searchContext)))

	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = DefaultQuestion(query)
	}

	raw, err := a.llm.Answer(ctx, models.AnswerRequest{
		Question:  question,
		Context:   searchContext,
		Model:     req.ModelChoice,
		Citations: cm.Entries(),
	})
	if err != nil {
		return nil, err
	}

	var (
		html string
		doc  []byte
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		t := time.Now()
		html = formatting.FormatAnswerHTML(raw, cm)
		metrics.RecordRender("html", time.Since(t).Seconds())
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		var rerr error
		doc, rerr = a.renderer.Render(raw, cm)
		metrics.RecordRender(strings.TrimPrefix(a.renderer.Extension(), "."), time.Since(t).Seconds())
		return rerr
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to render document", zap.Error(err))
		return nil, err
	}

	log.Info("analysis completed",
		zap.Int("citations", cm.Len()),
		zap.Int("document_bytes", len(doc)),
		zap.Duration("elapsed", time.Since(start)))

	return &models.AnalyzeResponse{
		FormattedAnswer: html,
		Citations:       cm.Entries(),
		DocumentBuffer:  base64.StdEncoding.EncodeToString(doc),
		DocumentType:    a.renderer.ContentType(),
		DocumentName:    DocumentName(query, a.renderer.Extension()),
	}, nil
}
