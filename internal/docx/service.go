package docx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrFileTooLarge is returned when an upload exceeds the configured cap.
var ErrFileTooLarge = errors.New("document exceeds maximum file size")

// Service orchestrates the document-processing components: package access,
// candidate scanning, occurrence resolution and substitution. One Service is
// shared across requests; it holds no per-document state, so concurrent
// generations are independent.
type Service struct {
	maxFileSize int64
	fillAll     bool
	primary     CandidateSource
	fallback    *RegexScanner
}

// NewService creates a document service. When completer is non-nil the oracle
// scanner becomes the primary candidate source with the regex scanner as
// fallback; otherwise the regex scanner runs alone.
func NewService(maxFileSize int64, fillAll bool, completer Completer) *Service {
	s := &Service{
		maxFileSize: maxFileSize,
		fillAll:     fillAll,
		fallback:    NewRegexScanner(),
	}

	if completer != nil {
		s.primary = NewOracleScanner(completer)
	} else {
		s.primary = s.fallback
	}

	return s
}

// ParseDocument opens an uploaded .docx, flattens its text and detects
// placeholder candidates. A failing oracle degrades to the deterministic
// regex scan; the detection method in the result records which source won.
func (s *Service) ParseDocument(ctx context.Context, req ParseDocumentRequest) (*ParseDocumentResult, error) {
	if s.maxFileSize > 0 && int64(len(req.Content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(req.Content))
	}

	pkg, err := OpenPackage(req.Content)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	text, err := FlattenText(pkg)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	method := DetectionMethodRegex
	if _, isOracle := s.primary.(*OracleScanner); isOracle {
		method = DetectionMethodOracle
	}

	placeholders, err := s.primary.Scan(ctx, text)
	if err != nil {
		var derr *DetectionError
		if !errors.As(err, &derr) {
			return nil, fmt.Errorf("detect placeholders: %w", err)
		}

		log.Printf("oracle detection unusable, falling back to regex scan: %v", derr)

		placeholders, _ = s.fallback.Scan(ctx, text)
		method = DetectionMethodRegex
	}

	return &ParseDocumentResult{
		Text:              text,
		Placeholders:      placeholders,
		DetectionMethod:   method,
		TotalPlaceholders: len(placeholders),
	}, nil
}

// GenerateDocument fills the supplied values into the document and returns
// the completed archive. When the request carries no placeholder list the
// regex scan of the document text stands in, since the names in filledValues
// must be joined back to their literal tokens.
func (s *Service) GenerateDocument(ctx context.Context, req GenerateDocumentRequest) (*GenerateDocumentResult, error) {
	pkg, err := OpenPackage(req.Content)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	placeholders := req.Placeholders
	if len(placeholders) == 0 {
		text, err := FlattenText(pkg)
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}

		placeholders, _ = s.fallback.Scan(ctx, text)
	}

	out, err := ComposeDocument(pkg, placeholders, req.FilledValues, s.fillAll)
	if err != nil {
		return nil, fmt.Errorf("compose document: %w", err)
	}

	return &GenerateDocumentResult{
		Document: out,
		Filename: fmt.Sprintf("completed_document_%d.docx", time.Now().UnixMilli()),
	}, nil
}

// MaxFileSize reports the configured upload cap in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}
