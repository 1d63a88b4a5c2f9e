package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/silosight/internal/analysis"
	"github.com/agenthands/silosight/internal/config"
	"github.com/agenthands/silosight/internal/llm"
	"github.com/agenthands/silosight/internal/rag"
	"github.com/agenthands/silosight/internal/report"
	"github.com/agenthands/silosight/internal/silo"
	"github.com/agenthands/silosight/internal/vector"
)

// Server holds the request-handling dependencies. Everything is constructed
// once in New and injected; handlers share no package-level state.
type Server struct {
	Analyzer *analysis.Analyzer
	Reports  *report.Generator
	cfg      *config.Config
	index    vector.Index
}

// New wires the vector index, LLM clients, retrieval pipeline and report
// generator from config.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	index, err := newIndex(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect vector index: %w", err)
	}

	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	pipeline := rag.NewPipeline(embedder, index, rag.Options{
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
		IndexFanout:  cfg.Concurrency.IndexFanout,
		CallTimeout:  cfg.CallTimeout(),
	})

	analyzer := analysis.NewAnalyzer(pipeline, llmClient, cfg.Analysis.Intent, cfg.Retrieval.TopK, cfg.CallTimeout())

	reports, err := report.NewGenerator(cfg.Server.ReportsDir)
	if err != nil {
		return nil, err
	}

	return &Server{
		Analyzer: analyzer,
		Reports:  reports,
		cfg:      cfg,
		index:    index,
	}, nil
}

func newIndex(ctx context.Context, cfg *config.Config) (vector.Index, error) {
	switch cfg.Index.Backend {
	case "postgres":
		return vector.NewPostgresIndex(ctx, cfg.Index.PostgresDSN, cfg.Index.Table, cfg.Index.Dimensions)
	case "neo4j":
		return vector.NewNeo4jIndex(ctx, cfg.Index.Neo4jURI, cfg.Index.Neo4jUser, cfg.Index.Neo4jPassword, cfg.Index.Table, cfg.Index.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", cfg.Index.Backend)
	}
}

// Close releases the index connection.
func (s *Server) Close(ctx context.Context) error {
	return s.index.Close(ctx)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.GET("/api/sample-data", s.SampleData)
	r.POST("/api/analyze", s.Analyze)
	r.POST("/api/generate-report", s.GenerateReport)
	r.Static("/reports", s.cfg.Server.ReportsDir)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) SampleData(c *gin.Context) {
	records, err := silo.LoadSample(s.cfg.Server.SampleData)
	if err != nil {
		log.Printf("Failed to load sample data: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load sample data",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"siloData": records})
}

type AnalyzeRequest struct {
	SiloData []silo.Record `json:"siloData"`
}

func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	insights, err := s.Analyzer.Analyze(c.Request.Context(), req.SiloData)
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, insights)
}

func (s *Server) GenerateReport(c *gin.Context) {
	var req AnalyzeRequest
	// Body is optional; an empty or absent body falls back to sample data.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	records := req.SiloData
	if len(records) == 0 {
		var err error
		records, err = silo.LoadSample(s.cfg.Server.SampleData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to load sample data",
				"details": err.Error(),
			})
			return
		}
	}

	insights, err := s.Analyzer.Analyze(c.Request.Context(), records)
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	html, err := s.Reports.Render(insights)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render report",
			"details": err.Error(),
		})
		return
	}

	filename, err := s.Reports.Save(html)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save report",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"insights":  insights,
		"reportUrl": "/reports/" + filename,
		"filename":  filename,
	})
}

// writeAnalysisError maps the pipeline error taxonomy onto HTTP statuses:
// validation failures are the caller's fault, everything else is a 500 with
// the underlying cause attached.
func (s *Server) writeAnalysisError(c *gin.Context, err error) {
	log.Printf("Analysis failed: %v", err)

	var validationErr *silo.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid silo data",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to analyze silo data",
		"details": err.Error(),
	})
}
